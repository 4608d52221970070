package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/samirrijal/hegaldi/internal/adapters/http"
	natsadapter "github.com/samirrijal/hegaldi/internal/adapters/nats"
	"github.com/samirrijal/hegaldi/internal/adapters/postgres"
	"github.com/samirrijal/hegaldi/internal/adapters/valkey"
	"github.com/samirrijal/hegaldi/internal/core/domain"
	"github.com/samirrijal/hegaldi/internal/core/ports"
	"github.com/samirrijal/hegaldi/internal/core/usecases"
	"github.com/samirrijal/hegaldi/internal/pkg/config"
	"github.com/samirrijal/hegaldi/internal/pkg/logging"
	"github.com/samirrijal/hegaldi/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("hegaldi-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.FromEnv("hegaldi-api")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Cache
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
		cache = nil
	} else {
		defer cache.Close()
	}

	// NATS change-feed publisher
	publisher, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
		publisher = nil
	} else {
		defer publisher.Close()
	}

	// Raw NATS connection for the WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	}

	// Repos
	spatialRepo := postgres.NewSpatialRepo(db, cfg.Spatial.DataTable)
	routeRepo := postgres.NewRouteRepo(db, cfg.Spatial.RoutesTable)

	precisions := domain.KeyPrecisions{
		PartitionKey: cfg.Geohash.PartitionKeyPrecision,
		SortKey:      cfg.Geohash.SortKeyPrecision,
		GSI:          cfg.Geohash.GSIPrecision,
	}

	// Use cases. Unavailable adapters stay nil interfaces, not typed nils.
	var cacheSvc ports.CacheService
	if cache != nil {
		cacheSvc = cache
	}
	var changeFeed ports.EventPublisher
	if publisher != nil {
		changeFeed = publisher
	}
	viewportSvc := usecases.NewViewportService(spatialRepo, cacheSvc, precisions)
	assessSvc := usecases.NewAssessService(spatialRepo, precisions)
	routeSvc := usecases.NewRouteService(routeRepo, changeFeed)

	deps := &http.Dependencies{
		Viewport:             viewportSvc,
		Assess:               assessSvc,
		Routes:               routeSvc,
		NATS:                 natsConn,
		DB:                   db,
		Cache:                cache,
		AssessTimeoutSeconds: cfg.Server.AssessTimeout,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    256 * 1024,
		AppName:      "Hegaldi API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "http://localhost:3000, http://localhost:5173",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		MaxAge:       3600,
	}))

	http.SetupRoutes(app, deps)

	// Pool gauges for Prometheus
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				db.ObservePoolStats()
			case <-ctx.Done():
				return
			}
		}
	}()

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
