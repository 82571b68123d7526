package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"bonus-listing-system/config"
	"bonus-listing-system/handlers"
	"bonus-listing-system/logging"
	"bonus-listing-system/middleware"
	"bonus-listing-system/services"
	"bonus-listing-system/store"
	"bonus-listing-system/utils"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("❌ failed to load config")
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openStore(cfg.Store)
	if err != nil {
		logging.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("❌ failed to open store")
	}
	closeStore := func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("store close failed")
		}
	}
	defer closeStore()

	// startup failures from here on close the store before exiting
	exit := func(err error, msg string) {
		logging.Error().Err(err).Msg(msg)
		closeStore()
		os.Exit(1)
	}

	uploader, err := newUploader(ctx, cfg)
	if err != nil {
		exit(err, "❌ failed to initialize uploader")
	}

	images := utils.ImageNormalizer{Placeholder: cfg.Images.Placeholder}
	workers := cfg.Ordering.WriteConcurrency

	aggregator := services.NewAggregator(db, images, workers)
	sequencer := services.NewSequencer(db, aggregator, workers, cfg.Ordering.AppendMode)
	migrator := services.NewMigrator(db, images, workers)

	bonusService := services.NewBonusService(db, aggregator, sequencer)
	casinoService := services.NewCasinoService(db, aggregator, migrator, images)
	reviewService := services.NewReviewService(db)
	authService := services.NewAuthService(cfg.Admin.Code, cfg.Admin.Secret(), cfg.Admin.TokenTTL, cfg.Admin.CookieSecure)
	uploadService := services.NewUploadService(uploader)
	healthService := services.NewHealthService(db)

	app := fiber.New(fiber.Config{
		BodyLimit:   cfg.Server.BodyLimit,
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.Server.AllowedOrigins, ","),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, X-Request-ID",
		ExposeHeaders:    "Content-Length, Content-Type, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400,
	}))
	app.Use(middleware.RequestContextMiddleware())

	handlers.SetupHealthRoutes(app, healthService)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	if !cfg.R2.Enabled() {
		app.Static("/uploads", cfg.Uploads.Dir)
	}

	api := app.Group("/api")
	admin := handlers.SetupAdminRoutes(api, authService, uploadService)
	handlers.SetupBonusRoutes(api, admin, bonusService)
	handlers.SetupCasinoRoutes(api, admin, casinoService)
	handlers.SetupReviewRoutes(api, admin, reviewService)

	if cfg.Ordering.RepairInterval > 0 {
		sched, err := services.StartRepairScheduler(sequencer, cfg.Ordering.RepairInterval)
		if err != nil {
			exit(err, "❌ failed to start repair scheduler")
		}
		defer func() { _ = sched.Shutdown() }()
	}

	go func() {
		if err := app.Listen(cfg.Addr()); err != nil {
			logging.Error().Err(err).Msg("server error")
			stop()
		}
	}()

	logging.Info().
		Str("addr", cfg.Addr()).
		Str("store", cfg.Store.Driver).
		Str("append_mode", cfg.Ordering.AppendMode).
		Strs("origins", cfg.Server.AllowedOrigins).
		Msg("✅ Server running")

	<-ctx.Done()
	logging.Info().Msg("Shutting down server...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logging.Error().Err(err).Msg("shutdown failed")
	}
}

func openStore(cfg config.StoreConfig) (store.Store, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return store.OpenPostgres(cfg.DSN)
	case config.DriverBadger:
		return store.OpenBadger(cfg.BadgerPath)
	case config.DriverMemory, "":
		logging.Warn().Msg("⚠️  using the in-memory store; data is lost on restart")
		return store.NewMemoryStore(), nil
	default:
		return nil, errors.New("unknown store driver " + cfg.Driver)
	}
}

// newUploader prefers R2 and falls back to the local upload dir.
func newUploader(ctx context.Context, cfg *config.Config) (utils.Uploader, error) {
	if cfg.R2.Enabled() {
		return utils.NewR2Uploader(ctx, utils.R2Config{
			AccountID:       cfg.R2.AccountID,
			AccessKeyID:     cfg.R2.AccessKeyID,
			AccessKeySecret: cfg.R2.AccessKeySecret,
			Bucket:          cfg.R2.Bucket,
			CDNBaseURL:      cfg.R2.CDNBaseURL,
		})
	}
	logging.Warn().Str("dir", cfg.Uploads.Dir).Msg("⚠️  R2 not configured, storing uploads on local disk")
	return utils.NewLocalUploader(cfg.Uploads.Dir, "/uploads")
}
