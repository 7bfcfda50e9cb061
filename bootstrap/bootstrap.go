package bootstrap

import (
	"github.com/amanuelrf/reliance-mobile/internal/config"
	"github.com/amanuelrf/reliance-mobile/internal/interfaces/router"
	"github.com/amanuelrf/reliance-mobile/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// New creates the Fiber app for the serverless entry point, which cannot import internal packages.
func New() (*fiber.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger.Setup(cfg.LogLevel, cfg.IsProduction())
	app, _, _, err := router.CreateApp(cfg)
	return app, err
}
