package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/turahe/kuha-go/internal/domain/entities"
)

// SetCreateOrUpdate validates spec's grammar, then creates the Set or
// updates its display name if it already exists.
func (s *Store) SetCreateOrUpdate(ctx context.Context, spec, name string) (*entities.Set, error) {
	if err := validateSpec(spec); err != nil {
		return nil, err
	}

	_, err := s.db.Exec(ctx,
		`INSERT INTO sets (spec, name) VALUES ($1, $2)
		 ON CONFLICT (spec) DO UPDATE SET name = EXCLUDED.name`,
		spec, name,
	)
	if err != nil {
		return nil, err
	}
	s.cache.invalidate(ctx, cacheKeySetList)
	return &entities.Set{Spec: spec, Name: name}, nil
}

// SetGet fetches a single set, or (nil, nil) if it does not exist.
func (s *Store) SetGet(ctx context.Context, spec string) (*entities.Set, error) {
	row := s.db.QueryRow(ctx, `SELECT spec, name FROM sets WHERE spec = $1`, spec)
	var set entities.Set
	if err := row.Scan(&set.Spec, &set.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &set, nil
}

// SetList returns every Set known to the repository, ordered by spec.
func (s *Store) SetList(ctx context.Context) ([]entities.Set, error) {
	return getOrCompute(ctx, s.cache, cacheKeySetList, func(ctx context.Context) ([]entities.Set, error) {
		rows, err := s.db.Query(ctx, `SELECT spec, name FROM sets ORDER BY spec`)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var sets []entities.Set
		for rows.Next() {
			var set entities.Set
			if err := rows.Scan(&set.Spec, &set.Name); err != nil {
				return nil, err
			}
			sets = append(sets, set)
		}
		return sets, rows.Err()
	})
}

// SetCount reports whether any Set exists at all -- used by the engine
// to translate a `set` filter against an empty hierarchy into
// NoSetHierarchy (spec §4.5).
func (s *Store) SetCount(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM sets`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
