package cmd

import (
	"context"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/turahe/kuha-go/config"
	"github.com/turahe/kuha-go/internal/datecodec"
	"github.com/turahe/kuha-go/internal/db/pgx"
	"github.com/turahe/kuha-go/internal/db/rdb"
	"github.com/turahe/kuha-go/internal/provider"
	_ "github.com/turahe/kuha-go/internal/provider/filesystem"
	"github.com/turahe/kuha-go/internal/reconciler"
	"github.com/turahe/kuha-go/internal/timestampfile"
	"github.com/turahe/kuha-go/pkg/logger"
)

func init() {
	rootCmd.AddGroup(&cobra.Group{ID: "importer", Title: "Importer:"})
	rootCmd.AddCommand(importerCmd)
}

// importerCmd is the "importer [var=value]..." CLI, ported from the
// reference implementation's __init__.main (spec §4.7): exit 1 on
// configuration error or harvest failure, exit 0 otherwise, and on
// success rewrite the timestamp file with the pre-harvest time so the
// next run picks up anything modified mid-harvest.
var importerCmd = &cobra.Command{
	Use:     "importer [var=value]...",
	Short:   "Harvest metadata from the configured provider into the store",
	GroupID: "importer",
	RunE: func(cmd *cobra.Command, args []string) error {
		setUpConfig()
		if err := config.ApplyOverrides(args); err != nil {
			log.Printf("importer: invalid configuration: %v", err)
			os.Exit(1)
		}

		setUpLogger()
		setUpPostgres()
		setUpRedis()

		cfg := config.GetConfig()

		lastHarvest := timestampfile.Read(logger.Log, cfg.Importer.TimestampFile)
		if cfg.Importer.ForceUpdate {
			lastHarvest = nil
		}
		purge := cfg.Repository.DeletedRecords.IgnoreDeleted()

		p, err := provider.New(cfg.Importer.MetadataProvider, strings.Fields(cfg.Importer.MetadataProviderArgs))
		if err != nil {
			logger.Log.Error("importer: failed to initialize metadata provider", zap.Error(err))
			os.Exit(1)
		}

		newTimestamp := datecodec.Now()

		r := reconciler.New(pgx.GetPgxPool(), rdb.GetRedisClient(), logger.Log)
		if err := r.Run(context.Background(), p, lastHarvest, purge, false); err != nil {
			logger.Log.Error("importer: harvest failed", zap.Error(err))
			os.Exit(1)
		}

		timestampfile.Write(logger.Log, cfg.Importer.TimestampFile, newTimestamp)
		logger.Log.Info("importer: done")
		return nil
	},
}
