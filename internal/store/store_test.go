package store

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// setupStore connects to DATABASE_URL, resets the schema with the
// table set entities.go describes, and returns a Store wrapping the
// pool directly, with no open transaction. Tests that
// need a real database are skipped when DATABASE_URL is unset, the
// same convention the teacher uses for its pg_dump-dependent backup
// test.
func setupStore(t *testing.T) *Store {
	t.Helper()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set, skipping store integration test")
	}

	pool, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	resetSchema(t, pool)

	s := New(pool, nil)
	return s
}

func resetSchema(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
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
}

func TestMinimalAntichain(t *testing.T) {
	cases := []struct {
		name  string
		specs []string
		want  []string
	}{
		{"empty", nil, nil},
		{"single", []string{"a"}, []string{"a"}},
		{"ancestor dropped", []string{"a", "a:b"}, []string{"a:b"}},
		{"two independent chains", []string{"a", "a:b", "x", "x:y:z"}, []string{"a:b", "x:y:z"}},
		{"no relation kept", []string{"a", "b"}, []string{"a", "b"}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := minimalAntichain(c.specs)
			require.ElementsMatch(t, c.want, got)
		})
	}
}
