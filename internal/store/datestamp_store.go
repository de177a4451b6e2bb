package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

// DatestampGet returns the singleton "database last-changed" time, or
// nil if it has never been set.
func (s *Store) DatestampGet(ctx context.Context) (*time.Time, error) {
	row := s.db.QueryRow(ctx, `SELECT t FROM datestamp ORDER BY t DESC LIMIT 1`)
	var t time.Time
	if err := row.Scan(&t); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

// DatestampUpdate writes now() as the new Datestamp. Spec §4.1
// requires it is monotonic non-decreasing and defensively dedupes
// multiple rows -- every call here collapses the table to a single
// row by deleting and reinserting inside the same statement sequence.
func (s *Store) DatestampUpdate(ctx context.Context) error {
	now := time.Now().UTC().Truncate(time.Second)

	if _, err := s.db.Exec(ctx, `DELETE FROM datestamp`); err != nil {
		return err
	}
	_, err := s.db.Exec(ctx, `INSERT INTO datestamp (t) VALUES ($1)`, now)
	if err != nil {
		return err
	}
	s.cache.invalidate(ctx, cacheKeyEarliestDatestampAll, cacheKeyEarliestDatestampAct)
	return nil
}
