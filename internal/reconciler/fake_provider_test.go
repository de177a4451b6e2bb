package reconciler

import (
	"context"
	"time"

	"github.com/turahe/kuha-go/internal/provider"
)

// fakeProvider is an in-memory MetadataProvider for exercising the
// Reconciler without a real external data source.
type fakeProvider struct {
	formats     []provider.FormatDef
	identifiers []string
	sets        map[string][]provider.SetDef
	records     map[string]map[string]string // identifier -> prefix -> xml
	changedAt   map[string]time.Time
}

func (p *fakeProvider) Formats(ctx context.Context) ([]provider.FormatDef, error) {
	return p.formats, nil
}

func (p *fakeProvider) Identifiers(ctx context.Context) ([]string, error) {
	return p.identifiers, nil
}

func (p *fakeProvider) HasChanged(ctx context.Context, identifier string, since time.Time) (bool, error) {
	changed, ok := p.changedAt[identifier]
	if !ok {
		return true, nil
	}
	return !changed.Before(since), nil
}

func (p *fakeProvider) GetSets(ctx context.Context, identifier string) ([]provider.SetDef, error) {
	return p.sets[identifier], nil
}

func (p *fakeProvider) GetRecord(ctx context.Context, identifier, prefix string) (*string, error) {
	byPrefix, ok := p.records[identifier]
	if !ok {
		return nil, nil
	}
	xml, ok := byPrefix[prefix]
	if !ok {
		return nil, nil
	}
	return &xml, nil
}
