package store

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/turahe/kuha-go/internal/domain/entities"
	"github.com/turahe/kuha-go/internal/storeerr"
	"github.com/turahe/kuha-go/internal/xmlcodec"
)

// RecordCreateOrUpdate validates xml against the format named by
// prefix, then inserts or updates the (identifier, prefix) record.
// An update that leaves (deleted=false, xml unchanged) is a no-op: no
// Record.datestamp change, no Datestamp bump (spec §4.1, invariant
// §3-6).
func (s *Store) RecordCreateOrUpdate(ctx context.Context, identifier, prefix, xml string) (*entities.Record, error) {
	format, err := s.formatGet(ctx, prefix)
	if err != nil {
		return nil, err
	}
	if format == nil {
		return nil, storeerr.New(storeerr.UnknownFormat, "unknown metadata prefix: "+prefix)
	}

	itemExists, err := s.ItemExists(ctx, identifier, false)
	if err != nil {
		return nil, err
	}
	if !itemExists {
		return nil, storeerr.New(storeerr.UnknownIdentifier, "unknown identifier: "+identifier)
	}

	if err := xmlcodec.Validate(xml, format.Namespace, format.Schema); err != nil {
		return nil, storeerr.Wrap(storeerr.XMLInvalid, "record xml failed validation", err)
	}

	existing, err := s.recordGet(ctx, identifier, prefix)
	if err != nil {
		return nil, err
	}

	if existing != nil && !existing.Deleted && existing.XML != nil && *existing.XML == xml {
		return existing, nil
	}

	now := time.Now().UTC().Truncate(time.Second)
	_, err = s.db.Exec(ctx,
		`INSERT INTO records (identifier, prefix, datestamp, xml, deleted)
		 VALUES ($1, $2, $3, $4, false)
		 ON CONFLICT (identifier, prefix)
		 DO UPDATE SET datestamp = EXCLUDED.datestamp, xml = EXCLUDED.xml, deleted = false`,
		identifier, prefix, now, xml,
	)
	if err != nil {
		return nil, err
	}
	if err := s.DatestampUpdate(ctx); err != nil {
		return nil, err
	}

	return &entities.Record{Identifier: identifier, Prefix: prefix, Datestamp: now, XML: &xml, Deleted: false}, nil
}

func (s *Store) recordGet(ctx context.Context, identifier, prefix string) (*entities.Record, error) {
	row := s.db.QueryRow(ctx,
		`SELECT identifier, prefix, datestamp, xml, deleted FROM records WHERE identifier = $1 AND prefix = $2`,
		identifier, prefix,
	)
	var r entities.Record
	if err := row.Scan(&r.Identifier, &r.Prefix, &r.Datestamp, &r.XML, &r.Deleted); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &r, nil
}

// RecordMarkDeleted marks every non-deleted record matching the given
// (optional) identifier and prefix as deleted, bumping Datestamp iff
// at least one row transitioned. Returns the number of rows changed.
func (s *Store) RecordMarkDeleted(ctx context.Context, identifier, prefix *string) (int64, error) {
	now := time.Now().UTC().Truncate(time.Second)
	query := `UPDATE records SET deleted = true, xml = NULL, datestamp = $1 WHERE deleted = false`
	args := []any{now}

	if identifier != nil {
		args = append(args, *identifier)
		query += " AND identifier = $" + strconv.Itoa(len(args))
	}
	if prefix != nil {
		args = append(args, *prefix)
		query += " AND prefix = $" + strconv.Itoa(len(args))
	}

	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}

	changed := tag.RowsAffected()
	if changed > 0 {
		if err := s.DatestampUpdate(ctx); err != nil {
			return changed, err
		}
	}
	return changed, nil
}

// RecordListParams is the predicate set for RecordList (spec §4.1).
type RecordListParams struct {
	Identifier    *string
	Prefix        *string
	FromDate      *time.Time
	UntilDate     *time.Time
	Set           *string
	IgnoreDeleted bool
	Offset        *string
	Limit         int
}

// RecordList runs the list query backing ListIdentifiers/ListRecords,
// ordered by identifier ascending with offset interpreted as
// identifier >= offset. A negative limit is InvalidArgument. When Set
// is given, the query joins Item<->Set and matches Set.spec exactly --
// no hierarchical expansion at query time (spec §4.1).
func (s *Store) RecordList(ctx context.Context, p RecordListParams) ([]entities.Record, error) {
	if p.Limit < 0 {
		return nil, storeerr.New(storeerr.InvalidArgument, "limit must not be negative")
	}

	query := strings.Builder{}
	query.WriteString(`SELECT DISTINCT r.identifier, r.prefix, r.datestamp, r.xml, r.deleted FROM records r`)
	if p.Set != nil {
		query.WriteString(` JOIN item_set_links l ON l.item_identifier = r.identifier`)
	}
	query.WriteString(` WHERE 1=1`)

	var args []any
	add := func(clause string, value any) {
		args = append(args, value)
		query.WriteString(" AND " + strings.Replace(clause, "?", "$"+strconv.Itoa(len(args)), 1))
	}

	if p.Identifier != nil {
		add("r.identifier = ?", *p.Identifier)
	}
	if p.Prefix != nil {
		add("r.prefix = ?", *p.Prefix)
	}
	if p.FromDate != nil {
		add("r.datestamp >= ?", *p.FromDate)
	}
	if p.UntilDate != nil {
		add("r.datestamp <= ?", *p.UntilDate)
	}
	if p.Set != nil {
		add("l.set_spec = ?", *p.Set)
	}
	if p.IgnoreDeleted {
		query.WriteString(` AND r.deleted = false`)
	}
	if p.Offset != nil {
		add("r.identifier >= ?", *p.Offset)
	}

	query.WriteString(` ORDER BY r.identifier ASC`)
	if p.Limit > 0 {
		args = append(args, p.Limit)
		query.WriteString(" LIMIT $" + strconv.Itoa(len(args)))
	}

	rows, err := s.db.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []entities.Record
	for rows.Next() {
		var r entities.Record
		if err := rows.Scan(&r.Identifier, &r.Prefix, &r.Datestamp, &r.XML, &r.Deleted); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// RecordEarliestDatestamp returns the oldest Record.datestamp in the
// repository, or nil if there are no records.
func (s *Store) RecordEarliestDatestamp(ctx context.Context, ignoreDeleted bool) (*time.Time, error) {
	cacheKey := cacheKeyEarliestDatestampAll
	if ignoreDeleted {
		cacheKey = cacheKeyEarliestDatestampAct
	}

	return getOrCompute(ctx, s.cache, cacheKey, func(ctx context.Context) (*time.Time, error) {
		query := `SELECT min(datestamp) FROM records`
		if ignoreDeleted {
			query += ` WHERE deleted = false`
		}

		var t *time.Time
		if err := s.db.QueryRow(ctx, query).Scan(&t); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, nil
			}
			return nil, err
		}
		return t, nil
	})
}

// RecordSetSpecs collects every Set spec linked to identifier, then
// drops specs that are proper ancestors (colon-prefix) of another
// returned spec, yielding the minimal antichain that appears in
// <header><setSpec> (spec §4.1).
func (s *Store) RecordSetSpecs(ctx context.Context, identifier string) ([]string, error) {
	rows, err := s.db.Query(ctx,
		`SELECT set_spec FROM item_set_links WHERE item_identifier = $1`, identifier)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var specs []string
	for rows.Next() {
		var spec string
		if err := rows.Scan(&spec); err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return minimalAntichain(specs), nil
}

// minimalAntichain drops every spec that is a proper colon-prefix
// ancestor of another spec in the set.
func minimalAntichain(specs []string) []string {
	sort.Strings(specs)

	isAncestor := make(map[string]bool, len(specs))
	for _, a := range specs {
		for _, b := range specs {
			if a == b {
				continue
			}
			if strings.HasPrefix(b, a+":") {
				isAncestor[a] = true
			}
		}
	}

	var result []string
	for _, spec := range specs {
		if !isAncestor[spec] {
			result = append(result, spec)
		}
	}
	return result
}
