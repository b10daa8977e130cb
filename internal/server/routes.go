package server

import (
	"lplens/internal/core/analyze"
	"lplens/internal/health"
	"lplens/internal/platform/redis"

	"github.com/gofiber/fiber/v2"
)

type Dependencies struct {
	Analyze *analyze.Handler
	Redis   *redis.Service
}

func RegisterRoutes(app *fiber.App, d Dependencies) *health.HealthHandler {
	healthHandler := health.NewHealthHandler(d.Redis)
	app.Get("/v1/health", health.HealthLimiter(), healthHandler.HandleHealth)

	api := app.Group("/v1")

	api.Get("/extract", d.Analyze.HandleGetExtract)
	api.Post("/analyze", d.Analyze.HandleCreateAnalyze)
	api.Get("/analyze/:jobId", d.Analyze.HandleGetAnalyze)

	return healthHandler
}
