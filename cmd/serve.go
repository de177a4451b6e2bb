package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"

	"github.com/turahe/kuha-go/config"
	"github.com/turahe/kuha-go/internal/db/pgx"
	"github.com/turahe/kuha-go/internal/db/rdb"
	"github.com/turahe/kuha-go/internal/engine"
	"github.com/turahe/kuha-go/internal/httpapi"
	"github.com/turahe/kuha-go/internal/tokencodec"
	"github.com/turahe/kuha-go/pkg/logger"
)

func init() {
	rootCmd.AddGroup(&cobra.Group{ID: "serve", Title: "Serve:"})
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:     "serve",
	Short:   "Start the OAI-PMH HTTP data provider",
	GroupID: "serve",
	RunE: func(cmd *cobra.Command, args []string) error {
		SetupAll()
		setUpRedis()

		nopLog := func(string, ...interface{}) {}
		if _, err := maxprocs.Set(maxprocs.Logger(nopLog)); err != nil {
			logger.Log.Warn("maxprocs.Set failed", zap.Error(err))
		}

		pool := pgx.GetPgxPool()
		redisClient := rdb.GetRedisClient()
		tokens := tokencodec.New(config.GetConfig().App.JWTSecret)
		eng := engine.New(pool, redisClient, config.GetConfig(), tokens)

		app := fiber.New(fiber.Config{
			ErrorHandler: httpapi.ErrorHandler,
		})
		httpapi.RegisterRoutes(app, eng, pool, redisClient, config.GetConfig().App.BaseURL)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		port := config.GetConfig().HttpServer.Port
		go func() {
			logger.Log.Info(fmt.Sprintf("Starting OAI-PMH data provider on port %d", port))
			if err := app.Listen(fmt.Sprintf(":%d", port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Log.Fatal(fmt.Sprintf("listen: %s", err))
			}
		}()

		<-ctx.Done()
		stop()
		fmt.Println("\nShutting down gracefully, press Ctrl+C again to force")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return app.ShutdownWithContext(shutdownCtx)
	},
}
