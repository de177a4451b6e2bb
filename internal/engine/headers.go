package engine

import (
	"context"

	"github.com/turahe/kuha-go/internal/domain/entities"
	"github.com/turahe/kuha-go/internal/store"
)

// buildHeader derives the <header> fields for a Record: its set
// memberships as the minimal antichain described in spec §4.1.
func buildHeader(ctx context.Context, s *store.Store, record entities.Record) (HeaderResult, error) {
	specs, err := s.RecordSetSpecs(ctx, record.Identifier)
	if err != nil {
		return HeaderResult{}, err
	}

	return HeaderResult{
		Identifier: record.Identifier,
		Datestamp:  record.Datestamp,
		SetSpecs:   specs,
		Deleted:    record.Deleted,
	}, nil
}
