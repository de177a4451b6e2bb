package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/turahe/kuha-go/config"
)

// HealthzHandler reports the liveness of the services the data
// provider depends on.
type HealthzHandler struct {
	pool        *pgxpool.Pool
	redisClient redis.Cmdable
}

func NewHealthzHandler(pool *pgxpool.Pool, redisClient redis.Cmdable) *HealthzHandler {
	return &HealthzHandler{pool: pool, redisClient: redisClient}
}

type healthCheck struct {
	Service string `json:"service"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type healthResponse struct {
	Status      string        `json:"status"`
	Timestamp   string        `json:"timestamp"`
	Environment string        `json:"environment"`
	Services    []healthCheck `json:"services"`
}

func (h *HealthzHandler) Healthz(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	overall := "healthy"
	checks := []healthCheck{h.checkPostgres(ctx)}
	if checks[0].Status != "healthy" {
		overall = "unhealthy"
	}

	if h.redisClient != nil {
		redisCheck := h.checkRedis(ctx)
		checks = append(checks, redisCheck)
		if redisCheck.Status != "healthy" {
			overall = "unhealthy"
		}
	}

	response := healthResponse{
		Status:      overall,
		Timestamp:   time.Now().Format(time.RFC3339),
		Environment: config.GetConfig().Env,
		Services:    checks,
	}

	status := http.StatusOK
	if overall != "healthy" {
		status = http.StatusServiceUnavailable
	}
	return c.Status(status).JSON(response)
}

func (h *HealthzHandler) checkPostgres(ctx context.Context) healthCheck {
	if err := h.pool.Ping(ctx); err != nil {
		return healthCheck{Service: "postgres", Status: "unhealthy", Message: err.Error()}
	}
	return healthCheck{Service: "postgres", Status: "healthy"}
}

func (h *HealthzHandler) checkRedis(ctx context.Context) healthCheck {
	if err := h.redisClient.Ping(ctx).Err(); err != nil {
		return healthCheck{Service: "redis", Status: "unhealthy", Message: err.Error()}
	}
	return healthCheck{Service: "redis", Status: "healthy"}
}
