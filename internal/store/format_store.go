package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/turahe/kuha-go/internal/domain/entities"
)

// FormatCreateOrUpdate validates the prefix charset, then either
// creates a new Format or, if one already exists under this prefix,
// updates its namespace/schema -- cascading a mark-deleted over every
// record of this prefix first when (namespace, schema) actually
// changed, per spec §4.1.
func (s *Store) FormatCreateOrUpdate(ctx context.Context, prefix, namespace, schema string) (*entities.Format, error) {
	if err := validatePrefix(prefix); err != nil {
		return nil, err
	}

	existing, err := s.formatGet(ctx, prefix)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	if existing == nil {
		if _, err := s.db.Exec(ctx,
			`INSERT INTO formats (prefix, namespace, schema, deleted) VALUES ($1, $2, $3, false)`,
			prefix, namespace, schema,
		); err != nil {
			return nil, err
		}
		s.cache.invalidate(ctx, formatListCacheKey(true), formatListCacheKey(false))
		return &entities.Format{Prefix: prefix, Namespace: namespace, Schema: schema, Deleted: false}, nil
	}

	if existing.Namespace != namespace || existing.Schema != schema {
		if _, err := s.RecordMarkDeleted(ctx, nil, &prefix); err != nil {
			return nil, err
		}
	}

	if _, err := s.db.Exec(ctx,
		`UPDATE formats SET namespace = $2, schema = $3, deleted = false WHERE prefix = $1`,
		prefix, namespace, schema,
	); err != nil {
		return nil, err
	}
	s.cache.invalidate(ctx, formatListCacheKey(true), formatListCacheKey(false))
	return &entities.Format{Prefix: prefix, Namespace: namespace, Schema: schema, Deleted: false}, nil
}

func (s *Store) formatGet(ctx context.Context, prefix string) (*entities.Format, error) {
	row := s.db.QueryRow(ctx,
		`SELECT prefix, namespace, schema, deleted FROM formats WHERE prefix = $1`, prefix)
	var f entities.Format
	if err := row.Scan(&f.Prefix, &f.Namespace, &f.Schema, &f.Deleted); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &f, nil
}

// Well-known constants for the bootstrap metadata format every
// repository MUST expose regardless of whether a harvest has ever
// run (spec §3).
const (
	OAIDCPrefix    = "oai_dc"
	OAIDCNamespace = "http://www.openarchives.org/OAI/2.0/oai_dc/"
	OAIDCSchema    = "http://www.openarchives.org/OAI/2.0/oai_dc.xsd"
)

// EnsureOAIDC idempotently guarantees the oai_dc format exists and is
// not deleted, independent of any Reconciler run (spec §3: "created
// by the Reconciler or the oai_dc bootstrap"). Safe to call on every
// startup; FormatCreateOrUpdate already un-deletes on a repeat call
// with unchanged namespace/schema.
func (s *Store) EnsureOAIDC(ctx context.Context) error {
	_, err := s.FormatCreateOrUpdate(ctx, OAIDCPrefix, OAIDCNamespace, OAIDCSchema)
	return err
}

// FormatMarkDeleted soft-deletes a format and cascades to every record
// stored under it, bumping Datestamp if any record actually
// transitioned.
func (s *Store) FormatMarkDeleted(ctx context.Context, prefix string) error {
	if _, err := s.RecordMarkDeleted(ctx, nil, &prefix); err != nil {
		return err
	}
	if _, err := s.db.Exec(ctx, `UPDATE formats SET deleted = true WHERE prefix = $1`, prefix); err != nil {
		return err
	}
	s.cache.invalidate(ctx, formatListCacheKey(true), formatListCacheKey(false))
	return nil
}

// FormatExists reports whether prefix names a known format.
func (s *Store) FormatExists(ctx context.Context, prefix string, ignoreDeleted bool) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM formats WHERE prefix = $1`
	if ignoreDeleted {
		query += ` AND deleted = false`
	}
	query += `)`

	var exists bool
	if err := s.db.QueryRow(ctx, query, prefix).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// FormatList returns formats, optionally restricted to those having at
// least one matching record for identifier. The identifier==nil path
// is cached under a key that also encodes ignoreDeleted, so a future
// caller requesting the deleted-inclusive list never reads back an
// entry populated by an ignoreDeleted=true caller (every caller today
// passes true, e.g. ListMetadataFormats and the Reconciler's
// updateFormats).
func (s *Store) FormatList(ctx context.Context, identifier *string, ignoreDeleted bool) ([]entities.Format, error) {
	if identifier == nil {
		return getOrCompute(ctx, s.cache, formatListCacheKey(ignoreDeleted), func(ctx context.Context) ([]entities.Format, error) {
			return s.formatList(ctx, nil, ignoreDeleted)
		})
	}
	return s.formatList(ctx, identifier, ignoreDeleted)
}

func formatListCacheKey(ignoreDeleted bool) string {
	if ignoreDeleted {
		return cacheKeyFormatList + ":active"
	}
	return cacheKeyFormatList + ":all"
}

func (s *Store) formatList(ctx context.Context, identifier *string, ignoreDeleted bool) ([]entities.Format, error) {
	var query string
	var args []any

	if identifier == nil {
		query = `SELECT prefix, namespace, schema, deleted FROM formats`
		if ignoreDeleted {
			query += ` WHERE deleted = false`
		}
		query += ` ORDER BY prefix`
	} else {
		query = `SELECT DISTINCT f.prefix, f.namespace, f.schema, f.deleted
				  FROM formats f
				  JOIN records r ON r.prefix = f.prefix
				  WHERE r.identifier = $1`
		args = append(args, *identifier)
		if ignoreDeleted {
			query += ` AND f.deleted = false AND r.deleted = false`
		}
		query += ` ORDER BY f.prefix`
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var formats []entities.Format
	for rows.Next() {
		var f entities.Format
		if err := rows.Scan(&f.Prefix, &f.Namespace, &f.Schema, &f.Deleted); err != nil {
			return nil, err
		}
		formats = append(formats, f)
	}
	return formats, rows.Err()
}
