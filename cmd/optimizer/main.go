package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samirrijal/hegaldi/internal/adapters/events"
	natsadapter "github.com/samirrijal/hegaldi/internal/adapters/nats"
	"github.com/samirrijal/hegaldi/internal/adapters/postgres"
	"github.com/samirrijal/hegaldi/internal/core/domain"
	"github.com/samirrijal/hegaldi/internal/core/ports"
	"github.com/samirrijal/hegaldi/internal/core/routing"
	"github.com/samirrijal/hegaldi/internal/core/usecases"
	"github.com/samirrijal/hegaldi/internal/pkg/config"
	"github.com/samirrijal/hegaldi/internal/pkg/logging"
)

func main() {
	cfg, err := config.Load("hegaldi-optimizer")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.FromEnv("hegaldi-optimizer")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// NATS change feed
	subscriber, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer subscriber.Close()

	publisher, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats publisher unavailable, broadcasts disabled", "error", err)
		publisher = nil
	} else {
		defer publisher.Close()
	}

	// Notification sink
	var sink ports.NotificationSink
	httpSink := events.NewSink(cfg.Events.HTTPDomain, cfg.Events.APIKey)
	if httpSink.Configured() {
		sink = httpSink
	} else {
		slog.Warn("events.http_domain not set, sink notifications disabled")
	}

	var broadcast ports.EventPublisher
	if publisher != nil {
		broadcast = publisher
	}

	precisions := domain.KeyPrecisions{
		PartitionKey: cfg.Geohash.PartitionKeyPrecision,
		SortKey:      cfg.Geohash.SortKeyPrecision,
		GSI:          cfg.Geohash.GSIPrecision,
	}

	optimizer := routing.NewOptimizer(routing.OptimizerConfig{
		StepMeters:        cfg.Optimizer.StepMeters,
		AngleRangeDeg:     cfg.Optimizer.AngleRangeDeg,
		Fan:               cfg.Optimizer.Fan,
		MaxDeviationRatio: cfg.Optimizer.MaxDeviationRatio,
	})

	worker := usecases.NewOptimizeWorker(
		postgres.NewSpatialRepo(db, cfg.Spatial.DataTable),
		postgres.NewRouteRepo(db, cfg.Spatial.RoutesTable),
		sink,
		broadcast,
		optimizer,
		precisions,
		usecases.OptimizeWorkerConfig{
			Deadline:     time.Duration(cfg.Optimizer.DeadlineSeconds) * time.Second,
			MaxRecordAge: time.Duration(cfg.Optimizer.MaxRecordAgeSecs) * time.Second,
		},
	)

	if err := subscriber.SubscribeRouteCreated(ctx, worker.HandleRouteCreated); err != nil {
		log.Fatalf("subscribe: %v", err)
	}

	slog.Info("optimizer worker started",
		"step_m", cfg.Optimizer.StepMeters,
		"fan", cfg.Optimizer.Fan,
		"max_deviation_ratio", cfg.Optimizer.MaxDeviationRatio,
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received", "signal", sig.String())
	cancel()
}
