// internal/api/server.go
package api

import (
	"errors"
	"time"

	"risk-predictor/internal/common/config"
	"risk-predictor/internal/common/logger"
	"risk-predictor/internal/service"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
)

const requestIDHeader = "X-Request-ID"

// NewServer builds the Fiber app serving /api/predict, /api/health and
// /api/schema.
func NewServer(svc *service.Service, cfg config.ServerConfig, log logger.Logger) *fiber.App {
	h := &handlers{svc: svc, logger: log.WithFields(map[string]interface{}{"component": "api"})}

	app := fiber.New(fiber.Config{
		AppName:      "risk-predictor",
		BodyLimit:    cfg.BodyLimit,
		ReadTimeout:  config.GetDuration(cfg.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.WriteTimeout),
		ErrorHandler: h.handleError,
	})

	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "${time} ${status} ${method} ${path} ${latency}\n",
		TimeFormat: time.RFC3339,
	}))

	api := app.Group("/api")
	api.Use(cors.New(corsConfig(cfg)))
	api.Post("/predict", h.predict)
	api.Get("/health", h.health)
	api.Get("/schema", h.schema)

	return app
}

func corsConfig(cfg config.ServerConfig) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{fiber.MethodGet, fiber.MethodPost, fiber.MethodOptions},
		AllowHeaders:  []string{fiber.HeaderContentType, requestIDHeader},
		ExposeHeaders: []string{requestIDHeader},
	}
	if cfg.AllowsAnyOrigin() {
		c.AllowOrigins = []string{"*"}
	} else {
		c.AllowOrigins = cfg.CORSOrigins
	}
	return c
}

// handleError renders framework errors (unknown route, oversized body) in
// the same {"error": ...} shape as prediction errors.
func (h *handlers) handleError(c fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	msg := "Internal server error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
		msg = fe.Message
	} else {
		h.logger.Error("unhandled request error", map[string]interface{}{
			"path":  c.Path(),
			"error": err,
		})
	}
	return c.Status(status).JSON(fiber.Map{"error": msg})
}
