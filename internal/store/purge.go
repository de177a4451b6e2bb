package store

import "context"

// PurgeDeleted hard-removes soft-deleted Records, Formats, and Items,
// in that order (records reference formats and items by foreign key),
// bumping Datestamp if any row was actually removed.
func (s *Store) PurgeDeleted(ctx context.Context) (int64, error) {
	var totalRemoved int64

	recordsTag, err := s.db.Exec(ctx, `DELETE FROM records WHERE deleted = true`)
	if err != nil {
		return 0, err
	}
	totalRemoved += recordsTag.RowsAffected()

	formatsTag, err := s.db.Exec(ctx, `DELETE FROM formats WHERE deleted = true`)
	if err != nil {
		return 0, err
	}
	totalRemoved += formatsTag.RowsAffected()

	itemsTag, err := s.db.Exec(ctx, `DELETE FROM items WHERE deleted = true`)
	if err != nil {
		return 0, err
	}
	totalRemoved += itemsTag.RowsAffected()

	if totalRemoved > 0 {
		s.cache.invalidate(ctx, formatListCacheKey(true), formatListCacheKey(false), cacheKeySetList, cacheKeyEarliestDatestampAll, cacheKeyEarliestDatestampAct)
		if err := s.DatestampUpdate(ctx); err != nil {
			return totalRemoved, err
		}
	}
	return totalRemoved, nil
}
