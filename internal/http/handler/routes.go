package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"pasteapi/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app. /metrics is
// only mounted when gatherer is non-nil.
func RegisterRoutes(app *fiber.App, db *sql.DB, pasteSvc service.PasteService, gatherer prometheus.Gatherer) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", Liveness())
	if gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(MetricsHandler(gatherer)))
	}

	app.Get("/lexers", ListLexers())
	app.Post("/pastes", CreatePaste(pasteSvc))
	app.Get("/pastes/:paste_id", GetPaste(pasteSvc))
	app.Get("/pastes/:paste_id/raw", GetRawPaste(pasteSvc))
	app.Get("/remove/:removal_id", ResolveRemoval(pasteSvc))
	app.Delete("/remove/:removal_id", RemovePaste(pasteSvc))
}

// MetricsHandler serves gatherer in the Prometheus exposition format. Each
// scrape is recorded as an otelhttp span named "metrics".
func MetricsHandler(gatherer prometheus.Gatherer) http.Handler {
	return otelhttp.NewHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}), "metrics")
}

// HealthCheck reports healthy only when the database answers a ping.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// Liveness always answers 200 while the process is serving.
func Liveness() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}
