package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/turahe/kuha-go/internal/domain/entities"
)

// ItemCreateOrUpdate undeletes identifier if it already exists, or
// creates it otherwise.
func (s *Store) ItemCreateOrUpdate(ctx context.Context, identifier string) (*entities.Item, error) {
	_, err := s.db.Exec(ctx,
		`INSERT INTO items (identifier, deleted) VALUES ($1, false)
		 ON CONFLICT (identifier) DO UPDATE SET deleted = false`,
		identifier,
	)
	if err != nil {
		return nil, err
	}
	return &entities.Item{Identifier: identifier, Deleted: false}, nil
}

// ItemMarkDeleted soft-deletes an item and cascades a delete over all
// of its records, bumping Datestamp only if a record actually
// transitioned.
func (s *Store) ItemMarkDeleted(ctx context.Context, identifier string) error {
	if _, err := s.RecordMarkDeleted(ctx, &identifier, nil); err != nil {
		return err
	}
	_, err := s.db.Exec(ctx, `UPDATE items SET deleted = true WHERE identifier = $1`, identifier)
	return err
}

// ItemExists reports whether identifier names a known item.
func (s *Store) ItemExists(ctx context.Context, identifier string, ignoreDeleted bool) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM items WHERE identifier = $1`
	if ignoreDeleted {
		query += ` AND deleted = false`
	}
	query += `)`

	var exists bool
	if err := s.db.QueryRow(ctx, query, identifier).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// ItemGet fetches a single item, or (nil, nil) if it does not exist.
func (s *Store) ItemGet(ctx context.Context, identifier string) (*entities.Item, error) {
	row := s.db.QueryRow(ctx, `SELECT identifier, deleted FROM items WHERE identifier = $1`, identifier)
	var item entities.Item
	if err := row.Scan(&item.Identifier, &item.Deleted); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// ItemList returns every known item, optionally excluding soft-deleted
// ones. Used by the Reconciler to diff the Store's item set against a
// provider's (spec §4.6 updateItems).
func (s *Store) ItemList(ctx context.Context, ignoreDeleted bool) ([]entities.Item, error) {
	query := `SELECT identifier, deleted FROM items`
	if ignoreDeleted {
		query += ` WHERE deleted = false`
	}
	query += ` ORDER BY identifier`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []entities.Item
	for rows.Next() {
		var item entities.Item
		if err := rows.Scan(&item.Identifier, &item.Deleted); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ItemSetsClear drops every Set link for identifier.
func (s *Store) ItemSetsClear(ctx context.Context, identifier string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM item_set_links WHERE item_identifier = $1`, identifier)
	return err
}

// ItemAddToSet links identifier to spec. The Set must already exist
// (callers run Set.createOrUpdate first, per the Reconciler's
// ancestors-before-descendants ordering).
func (s *Store) ItemAddToSet(ctx context.Context, identifier, spec string) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO item_set_links (item_identifier, set_spec) VALUES ($1, $2)
		 ON CONFLICT DO NOTHING`,
		identifier, spec,
	)
	return err
}
