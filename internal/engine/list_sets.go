package engine

import (
	"context"
	"fmt"

	"github.com/turahe/kuha-go/internal/oaierrors"
	"github.com/turahe/kuha-go/internal/store"
)

// listSets serves ListSets. This engine never actually continues a
// ListSets sequence, so per the design decision recorded alongside
// spec §4.5, presence of ANY resumptionToken value -- valid, expired,
// or garbage -- is rejected as InvalidResumptionToken before the set
// table is even queried.
func (e *Engine) listSets(ctx context.Context, req Request) (*Response, error) {
	if _, ok := req.Param("resumptionToken"); ok {
		return nil, oaierrors.ErrInvalidResumptionToken()
	}

	s, err := store.BeginReadOnlyTx(ctx, e.pool, e.redisClient)
	if err != nil {
		return nil, fmt.Errorf("engine: listSets: %w", err)
	}
	defer s.Rollback(ctx)

	count, err := s.SetCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("engine: listSets: %w", err)
	}
	if count == 0 {
		return nil, oaierrors.ErrNoSetHierarchy()
	}

	sets, err := s.SetList(ctx)
	if err != nil {
		return nil, fmt.Errorf("engine: listSets: %w", err)
	}

	result := make([]SetResult, len(sets))
	for i, set := range sets {
		result[i] = SetResult{Spec: set.Spec, Name: set.Name}
	}

	if err := s.Commit(ctx); err != nil {
		return nil, fmt.Errorf("engine: listSets: %w", err)
	}
	return &Response{Sets: result}, nil
}
