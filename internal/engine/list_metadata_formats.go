package engine

import (
	"context"
	"fmt"

	"github.com/turahe/kuha-go/internal/oaierrors"
	"github.com/turahe/kuha-go/internal/store"
)

// listMetadataFormats serves ListMetadataFormats: allowed param is
// `identifier` (spec §4.5).
func (e *Engine) listMetadataFormats(ctx context.Context, req Request) (*Response, error) {
	s, err := store.BeginReadOnlyTx(ctx, e.pool, e.redisClient)
	if err != nil {
		return nil, fmt.Errorf("engine: listMetadataFormats: %w", err)
	}
	defer s.Rollback(ctx)

	var identifier *string
	if value, ok := req.Param("identifier"); ok {
		identifier = &value

		exists, err := s.ItemExists(ctx, value, true)
		if err != nil {
			return nil, fmt.Errorf("engine: listMetadataFormats: %w", err)
		}
		if !exists {
			return nil, oaierrors.ErrIdDoesNotExist(value)
		}
	}

	formats, err := s.FormatList(ctx, identifier, true)
	if err != nil {
		return nil, fmt.Errorf("engine: listMetadataFormats: %w", err)
	}

	if len(formats) == 0 && identifier != nil {
		return nil, oaierrors.ErrNoMetadataFormats(*identifier)
	}

	result := make([]MetadataFormat, len(formats))
	for i, f := range formats {
		result[i] = MetadataFormat{Prefix: f.Prefix, Namespace: f.Namespace, Schema: f.Schema}
	}

	if err := s.Commit(ctx); err != nil {
		return nil, fmt.Errorf("engine: listMetadataFormats: %w", err)
	}
	return &Response{MetadataFormats: result}, nil
}
