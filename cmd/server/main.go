package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/cabiir/FianlFitnessGym/internal/config"
	"github.com/cabiir/FianlFitnessGym/internal/database"
	"github.com/cabiir/FianlFitnessGym/internal/handlers"
	"github.com/cabiir/FianlFitnessGym/internal/logger"
	"github.com/cabiir/FianlFitnessGym/internal/middleware"
	"github.com/cabiir/FianlFitnessGym/internal/routes"
	"github.com/cabiir/FianlFitnessGym/internal/services"
)

func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		bootLog := logger.New(os.Getenv("APP_ENV"))
		bootLog.Fatal().Err(err).Msg("failed to load config")
	}
	log := logger.New(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect to Database and client store
	if cfg.DBUrl == "" {
		log.Fatal().Msg("DB_URL is required")
	}
	if err := database.ConnectDB(ctx, cfg.DBUrl, log); err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer database.CloseDB()

	clientStore, closeClientStore, err := database.OpenClientStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open client store")
	}
	defer func() {
		if err := closeClientStore(); err != nil {
			log.Error().Err(err).Msg("close client store")
		}
	}()

	// 3. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName:      "fitness-api",
		BodyLimit:    services.MaxImageSize + 1<<20,
		ErrorHandler: handlers.ErrorHandler(log),
	})

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := middleware.NewMetrics(registry)

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.RequestLogger(log))
	app.Use(metrics.Handler())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.ClientURL,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, " + handlers.HeaderClientID,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowCredentials: cfg.ClientURL != "*",
	}))

	if err := routes.RegisterRoutes(app, cfg, routes.Dependencies{
		DB:          database.DB,
		ClientStore: clientStore,
		Logger:      log,
		Metrics:     metrics,
	}); err != nil {
		log.Fatal().Err(err).Msg("failed to register routes")
	}

	// 4. Start Server
	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error().Err(err).Msg("shutdown")
		}
	}()

	log.Info().Str("port", cfg.Port).Str("env", cfg.AppEnv).Msg("server starting")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server failed to start")
	}
}
