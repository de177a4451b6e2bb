package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/turahe/kuha-go/config"
	"github.com/turahe/kuha-go/internal/db/migrations"
	"github.com/turahe/kuha-go/internal/db/pgx"
	"github.com/turahe/kuha-go/internal/db/rdb"
	"github.com/turahe/kuha-go/internal/store"
	"github.com/turahe/kuha-go/pkg/logger"
)

const defaultConfigFile = "config/config.yaml"

var RootCmdName = "kuha"

var configFile string
var rootCmd = &cobra.Command{
	Use: func() string {
		return RootCmdName
	}(),
	Short: "An OAI-PMH v2.0 data provider",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Usage()
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default is %s)", defaultConfigFile))
}

// SetupAll loads config, logging, and Postgres -- the dependencies
// every subcommand needs. Redis is optional and wired in separately
// by callers that want cached Store reads.
func SetupAll() {
	setUpConfig()
	setUpLogger()
	setUpPostgres()
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("rootCmd.Execute() Error: %v", err)
		os.Exit(1)
	}
}

func setUpConfig() {
	if configFile == "" {
		configFile = defaultConfigFile
	}

	log.Default().Printf("Using config file: %s", configFile)
	config.SetConfig(configFile)
}

func setUpLogger() {
	log.Default().Printf("Using log level: %s", config.GetConfig().Log.Level)
	logger.InitLogger("zap")
}

func setUpPostgres() {
	if config.GetConfig().Postgres.Host == "" {
		logger.Log.Fatal("postgres.host is not set")
	}
	if config.GetConfig().Postgres.Schema == "" {
		logger.Log.Fatal("postgres.schema is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	logger.Log.Info("Initializing database schema", zap.String("schema", config.GetConfig().Postgres.Schema))
	if err := pgx.InitSchema(ctx, config.GetConfig().Postgres, config.GetConfig().Postgres.Schema); err != nil {
		logger.Log.Fatal("pgx.InitSchema()", zap.Error(err))
	}

	logger.Log.Info("Initializing pgxPool")
	if err := pgx.InitPgConnectionPool(config.GetConfig().Postgres); err != nil {
		logger.Log.Fatal("pgx.InitPgConnectionPool()", zap.Error(err))
	}

	logger.Log.Info("Running migrations")
	if err := migrations.Up(); err != nil {
		logger.Log.Fatal("migrations.Up()", zap.Error(err))
	}

	logger.Log.Info("Ensuring oai_dc bootstrap format")
	bootstrapCtx, bootstrapCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer bootstrapCancel()
	if err := store.New(pgx.GetPgxPool(), nil).EnsureOAIDC(bootstrapCtx); err != nil {
		logger.Log.Fatal("store.EnsureOAIDC()", zap.Error(err))
	}
}

// setUpRedis wires the optional read-through cache. A missing
// redis.host leaves Store operations running uncached.
func setUpRedis() {
	if len(config.GetConfig().Redis) == 0 || config.GetConfig().Redis[0].Host == "" {
		return
	}

	logger.Log.Info("Initializing redis")
	if err := rdb.InitRedisClient(config.GetConfig().Redis); err != nil {
		logger.Log.Error("rdb.InitRedisClient()", zap.Error(err))
		return
	}
	logger.Log.Info("redis initialized")
}
