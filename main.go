// Package main is the entry point for the OAI-PMH data provider: the
// "serve" subcommand runs the HTTP protocol engine, "importer" runs
// one reconciliation harvest.
package main

import (
	"github.com/turahe/kuha-go/cmd"
	"github.com/turahe/kuha-go/internal/db/pgx"
	"github.com/turahe/kuha-go/pkg/logger"
)

func main() {
	defer func() {
		pgx.ClosePgxPool()
		if logger.Log != nil {
			logger.Log.Sync()
		}
	}()

	cmd.Execute()
}
