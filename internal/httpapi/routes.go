package httpapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/turahe/kuha-go/internal/engine"
)

// RegisterRoutes wires the data provider's two routes onto app: the
// /oai protocol endpoint (GET and POST, per spec §6) and /healthz.
func RegisterRoutes(app *fiber.App, eng *engine.Engine, pool *pgxpool.Pool, redisClient redis.Cmdable, baseURL string) {
	oaiHandler := NewOAIHandler(eng, baseURL)
	app.Get("/oai", oaiHandler.Dispatch)
	app.Post("/oai", oaiHandler.Dispatch)

	healthzHandler := NewHealthzHandler(pool, redisClient)
	app.Get("/healthz", healthzHandler.Healthz)
}
