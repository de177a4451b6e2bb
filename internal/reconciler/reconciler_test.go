package reconciler

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/turahe/kuha-go/internal/provider"
	"github.com/turahe/kuha-go/internal/store"
)

// docOne and docTwo are record payloads that pass validation against
// the test format (namespace "http://ns", schema "http://schema").
const (
	docOne = `<dc xmlns="http://ns" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xsi:schemaLocation="http://ns http://schema">one</dc>`
	docTwo = `<dc xmlns="http://ns" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xsi:schemaLocation="http://ns http://schema">two</dc>`
)

// setupPool connects to DATABASE_URL and resets the schema, skipping
// when unset -- the same convention internal/store uses.
func setupPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set, skipping reconciler integration test")
	}

	pool, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	ctx := context.Background()
	statements := []string{
		`DROP TABLE IF EXISTS item_set_links, records, sets, items, formats, datestamp`,
		`CREATE TABLE formats (prefix text PRIMARY KEY, namespace text NOT NULL, schema text NOT NULL, deleted boolean NOT NULL DEFAULT false)`,
		`CREATE TABLE items (identifier text PRIMARY KEY, deleted boolean NOT NULL DEFAULT false)`,
		`CREATE TABLE records (identifier text NOT NULL REFERENCES items(identifier), prefix text NOT NULL REFERENCES formats(prefix), datestamp timestamptz NOT NULL, xml text, deleted boolean NOT NULL DEFAULT false, PRIMARY KEY (identifier, prefix))`,
		`CREATE TABLE sets (spec text PRIMARY KEY, name text NOT NULL)`,
		`CREATE TABLE item_set_links (item_identifier text NOT NULL REFERENCES items(identifier), set_spec text NOT NULL REFERENCES sets(spec), PRIMARY KEY (item_identifier, set_spec))`,
		`CREATE TABLE datestamp (t timestamptz NOT NULL)`,
	}
	for _, stmt := range statements {
		_, err := pool.Exec(ctx, stmt)
		require.NoError(t, err)
	}
	return pool
}

func TestRunHarvestsFormatsItemsAndRecords(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()

	p := &fakeProvider{
		formats:     []provider.FormatDef{{Prefix: "oai_dc", Namespace: "http://ns", Schema: "http://schema"}},
		identifiers: []string{"item-1", "item-2", "item-1"},
		sets: map[string][]provider.SetDef{
			"item-1": {{Spec: "a:b", Name: "Subset"}},
		},
		records: map[string]map[string]string{
			"item-1": {"oai_dc": docOne},
			"item-2": {"oai_dc": docTwo},
		},
	}

	r := New(pool, nil, zap.NewNop())
	require.NoError(t, r.Run(ctx, p, nil, false, false))

	s := store.New(pool, nil)
	exists, err := s.ItemExists(ctx, "item-1", true)
	require.NoError(t, err)
	require.True(t, exists)

	record, err := s.RecordList(ctx, store.RecordListParams{Limit: 10})
	require.NoError(t, err)
	require.Len(t, record, 2)

	specs, err := s.RecordSetSpecs(ctx, "item-1")
	require.NoError(t, err)
	require.Contains(t, specs, "a:b")
}

func TestRunDeletesItemsAndRecordsDroppedByProvider(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()

	p := &fakeProvider{
		formats:     []provider.FormatDef{{Prefix: "oai_dc", Namespace: "http://ns", Schema: "http://schema"}},
		identifiers: []string{"item-1"},
		records: map[string]map[string]string{
			"item-1": {"oai_dc": docOne},
		},
	}

	r := New(pool, nil, zap.NewNop())
	require.NoError(t, r.Run(ctx, p, nil, false, false))

	p.identifiers = nil
	p.records = nil
	require.NoError(t, r.Run(ctx, p, nil, false, false))

	s := store.New(pool, nil)
	exists, err := s.ItemExists(ctx, "item-1", true)
	require.NoError(t, err)
	require.False(t, exists)

	records, err := s.RecordList(ctx, store.RecordListParams{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.True(t, records[0].Deleted)
}

func TestRunDryRunLeavesStoreUnchanged(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()

	p := &fakeProvider{
		formats:     []provider.FormatDef{{Prefix: "oai_dc", Namespace: "http://ns", Schema: "http://schema"}},
		identifiers: []string{"item-1"},
		records: map[string]map[string]string{
			"item-1": {"oai_dc": "<dc>one</dc>"},
		},
	}

	r := New(pool, nil, zap.NewNop())
	require.NoError(t, r.Run(ctx, p, nil, false, true))

	s := store.New(pool, nil)
	exists, err := s.ItemExists(ctx, "item-1", true)
	require.NoError(t, err)
	require.False(t, exists)
}

func TestRunFailsWhenProviderReportsNoFormats(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()

	p := &fakeProvider{}
	r := New(pool, nil, zap.NewNop())
	err := r.Run(ctx, p, nil, false, false)
	require.Error(t, err)
}
