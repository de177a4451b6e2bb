package migrations

import (
	"context"

	"github.com/turahe/kuha-go/internal/db/pgx"
)

func init() {
	Migrations = append(Migrations, createOAISchema20260101000000)
}

var createOAISchema20260101000000 = &Migration{
	Name: "20260101000000_create_oai_schema",
	Up: func() error {
		statements := []string{
			`CREATE TABLE IF NOT EXISTS formats (
				"prefix" TEXT PRIMARY KEY,
				"namespace" TEXT NOT NULL,
				"schema" TEXT NOT NULL,
				"deleted" BOOLEAN NOT NULL DEFAULT false
			)`,
			`CREATE TABLE IF NOT EXISTS items (
				"identifier" TEXT PRIMARY KEY,
				"deleted" BOOLEAN NOT NULL DEFAULT false
			)`,
			`CREATE TABLE IF NOT EXISTS records (
				"identifier" TEXT NOT NULL REFERENCES items("identifier"),
				"prefix" TEXT NOT NULL REFERENCES formats("prefix"),
				"datestamp" TIMESTAMPTZ NOT NULL,
				"xml" TEXT,
				"deleted" BOOLEAN NOT NULL DEFAULT false,
				PRIMARY KEY ("identifier", "prefix")
			)`,
			`CREATE TABLE IF NOT EXISTS sets (
				"spec" TEXT PRIMARY KEY,
				"name" TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS item_set_links (
				"item_identifier" TEXT NOT NULL REFERENCES items("identifier"),
				"set_spec" TEXT NOT NULL REFERENCES sets("spec"),
				PRIMARY KEY ("item_identifier", "set_spec")
			)`,
			`CREATE TABLE IF NOT EXISTS datestamp (
				"t" TIMESTAMPTZ NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS "records_datestamp_idx" ON "records" ("datestamp")`,
			`CREATE INDEX IF NOT EXISTS "records_prefix_idx" ON "records" ("prefix")`,
			`CREATE INDEX IF NOT EXISTS "item_set_links_set_spec_idx" ON "item_set_links" ("set_spec")`,
		}
		for _, stmt := range statements {
			if _, err := pgx.GetPgxPool().Exec(context.Background(), stmt); err != nil {
				return err
			}
		}
		return nil
	},
	Down: func() error {
		_, err := pgx.GetPgxPool().Exec(context.Background(), `
			DROP TABLE IF EXISTS item_set_links, records, sets, items, formats, datestamp;
		`)
		return err
	},
}
