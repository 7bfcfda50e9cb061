package router

import (
	"github.com/amanuelrf/reliance-mobile/internal/application/companies"
	creditsvc "github.com/amanuelrf/reliance-mobile/internal/application/credit"
	"github.com/amanuelrf/reliance-mobile/internal/config"
	"github.com/amanuelrf/reliance-mobile/internal/constants"
	"github.com/amanuelrf/reliance-mobile/internal/infrastructure/bureau"
	"github.com/amanuelrf/reliance-mobile/internal/infrastructure/database"
	companyhandler "github.com/amanuelrf/reliance-mobile/internal/interfaces/handlers/companies"
	credithandler "github.com/amanuelrf/reliance-mobile/internal/interfaces/handlers/credit"
	healthhandler "github.com/amanuelrf/reliance-mobile/internal/interfaces/handlers/health"
	"github.com/amanuelrf/reliance-mobile/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// CreateApp builds the Fiber app. Credit and company routes are only mounted when a
// database is configured; the session store and health counters need REDIS_URL.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))

	var rdb *redis.Client
	sessionHandler := middleware.LoadSession(nil)
	if cfg.RedisURL != "" {
		var err error
		sessionHandler, rdb, err = middleware.Session(middleware.SessionConfig{
			Secret:            cfg.SessionSecret,
			RedisURL:          cfg.RedisURL,
			AllowCrossSiteDev: cfg.AllowCrossSiteDev,
			IsProduction:      cfg.IsProduction(),
		})
		if err != nil {
			return nil, nil, nil, err
		}
	} else {
		log.Warn().Msg("REDIS_URL not set; sessions and health counters disabled")
	}
	app.Use(middleware.Tracing())
	app.Use(sessionHandler)
	app.Use(middleware.HealthMarker(rdb))
	app.Use(middleware.RouteLogger())

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	bureauClient := bureau.New(cfg.Bureau)
	if !bureauClient.Configured() {
		log.Warn().Msg("FACTORS_NETWORK_BASE_URL not set; credit checks will return INSUFFICIENT_DATA")
	}

	hh := &healthhandler.Handlers{
		Rdb:            rdb,
		Bureau:         bureauClient,
		HealthAdminKey: cfg.HealthAdminKey,
	}
	app.Get("/", hh.Index)
	app.Get("/reset", hh.Reset)
	app.Get("/health/json", hh.JSON)
	app.Get("/health/errors", hh.Errors)

	if cfg.DatabaseURL == "" {
		log.Warn().Msg("DATABASE_URL not set; credit and company routes disabled")
		return app, nil, rdb, nil
	}
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := database.AutoMigrate(db); err != nil {
		return nil, nil, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, nil, err
	}
	hh.DB = sqlDB

	// Companies
	cs := &companies.Service{DB: db}
	ch := &companyhandler.Handlers{Service: cs}
	cg := app.Group("/api/v1/companies", middleware.RequireAuth())
	cg.Get("/autocomplete", middleware.AuthorizePermission(constants.ViewCompanies), ch.Autocomplete)
	cg.Post("/", middleware.AuthorizePermission(constants.ManageCompanies), ch.Create)
	cg.Get("/:id", middleware.AuthorizePermission(constants.ViewCompanies), ch.Get)
	cg.Delete("/:id", middleware.AuthorizePermission(constants.ManageCompanies), ch.Delete)

	// Credit
	crs := &creditsvc.Service{
		DB:        db,
		Gateway:   bureauClient,
		Companies: cs,
		Metrics:   creditsvc.NewMetrics(reg),
	}
	crh := &credithandler.Handlers{Service: crs}
	crg := app.Group("/api/v1/credit", middleware.RequireAuth())
	crg.Post("/check", middleware.AuthorizePermission(constants.RunCreditCheck), crh.Check)
	crg.Get("/checks", middleware.AuthorizePermission(constants.ViewCredit), crh.List)
	crg.Get("/checks/latest", middleware.AuthorizePermission(constants.ViewCredit), crh.Latest)
	crg.Delete("/checks/:id", middleware.AuthorizePermission(constants.RetractCreditCheck), crh.Retract)
	crg.Get("/history", middleware.AuthorizePermission(constants.ViewCredit), crh.History)
	crg.Get("/score", middleware.AuthorizePermission(constants.ViewCredit), crh.Score)

	return app, db, rdb, nil
}
