package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/turahe/kuha-go/internal/store"
)

// identify serves the Identify verb: allowed params are none (spec
// §4.5). earliestDatestamp falls back to responseTime when the
// repository holds no records yet.
func (e *Engine) identify(ctx context.Context, responseTime time.Time) (*Response, error) {
	s, err := store.BeginReadOnlyTx(ctx, e.pool, e.redisClient)
	if err != nil {
		return nil, fmt.Errorf("engine: identify: %w", err)
	}
	defer s.Rollback(ctx)

	ignoreDeleted := e.cfg.Repository.DeletedRecords.IgnoreDeleted()
	earliest, err := s.RecordEarliestDatestamp(ctx, ignoreDeleted)
	if err != nil {
		return nil, fmt.Errorf("engine: identify: %w", err)
	}

	result := IdentifyResult{
		RepositoryName:         e.cfg.Repository.Name,
		AdminEmails:            e.cfg.Repository.AdminEmails,
		DeletedRecordPolicy:    string(e.cfg.Repository.DeletedRecords),
		ProtocolVersion:        "2.0",
		RepositoryDescriptions: e.cfg.Repository.LoadedDescriptions,
	}
	if earliest != nil {
		result.EarliestDatestamp = *earliest
	} else {
		result.EarliestDatestamp = responseTime
	}

	if err := s.Commit(ctx); err != nil {
		return nil, fmt.Errorf("engine: identify: %w", err)
	}
	return &Response{Identify: &result}, nil
}
