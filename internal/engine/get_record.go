package engine

import (
	"context"
	"fmt"

	"github.com/turahe/kuha-go/internal/oaierrors"
	"github.com/turahe/kuha-go/internal/store"
)

// getRecord serves GetRecord. Order of checks per spec §4.5: item
// existence, then format existence, then the record query itself.
func (e *Engine) getRecord(ctx context.Context, req Request) (*Response, error) {
	identifier, _ := req.Param("identifier")
	prefix, _ := req.Param("metadataPrefix")

	s, err := store.BeginReadOnlyTx(ctx, e.pool, e.redisClient)
	if err != nil {
		return nil, fmt.Errorf("engine: getRecord: %w", err)
	}
	defer s.Rollback(ctx)

	ignoreDeleted := e.cfg.Repository.DeletedRecords.IgnoreDeleted()

	itemExists, err := s.ItemExists(ctx, identifier, ignoreDeleted)
	if err != nil {
		return nil, fmt.Errorf("engine: getRecord: %w", err)
	}
	if !itemExists {
		return nil, oaierrors.ErrIdDoesNotExist(identifier)
	}

	formatExists, err := s.FormatExists(ctx, prefix, false)
	if err != nil {
		return nil, fmt.Errorf("engine: getRecord: %w", err)
	}
	if !formatExists {
		return nil, oaierrors.ErrUnsupportedMetadataFormat(prefix)
	}

	records, err := s.RecordList(ctx, store.RecordListParams{
		Identifier:    &identifier,
		Prefix:        &prefix,
		IgnoreDeleted: ignoreDeleted,
	})
	if err != nil {
		return nil, fmt.Errorf("engine: getRecord: %w", err)
	}
	if len(records) == 0 {
		return nil, oaierrors.ErrUnavailableMetadataFormat(prefix, identifier)
	}
	record := records[0]

	header, err := buildHeader(ctx, s, record)
	if err != nil {
		return nil, fmt.Errorf("engine: getRecord: %w", err)
	}

	result := RecordResult{Header: header}
	if record.XML != nil {
		result.XML = *record.XML
	}

	if err := s.Commit(ctx); err != nil {
		return nil, fmt.Errorf("engine: getRecord: %w", err)
	}
	return &Response{Record: &result}, nil
}
