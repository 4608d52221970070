package main

import (
	"context"
	"log"
	"log/slog"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/samirrijal/hegaldi/internal/adapters/postgres"
	"github.com/samirrijal/hegaldi/internal/core/domain"
	"github.com/samirrijal/hegaldi/internal/pkg/config"
	"github.com/samirrijal/hegaldi/internal/pkg/logging"
	"github.com/samirrijal/hegaldi/internal/workflows"
)

func main() {
	cfg, err := config.Load("hegaldi-wxingest")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logging.FromEnv("hegaldi-wxingest")

	ctx := context.Background()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Connect to Temporal
	c, err := client.Dial(client.Options{
		HostPort: cfg.Temporal.HostPort,
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})

	precisions := domain.KeyPrecisions{
		PartitionKey: cfg.Geohash.PartitionKeyPrecision,
		SortKey:      cfg.Geohash.SortKeyPrecision,
		GSI:          cfg.Geohash.GSIPrecision,
	}

	// Register workflow & activities
	w.RegisterWorkflow(workflows.WxIngestWorkflow)
	w.RegisterActivity(&workflows.WxIngestActivities{
		Spatial:    postgres.NewSpatialRepo(db, cfg.Spatial.DataTable),
		Precisions: precisions,
	})

	// Ensure the cron schedule exists; an already-created schedule is fine.
	_, err = c.ScheduleClient().Create(ctx, client.ScheduleOptions{
		ID: "wx-ingest-schedule",
		Spec: client.ScheduleSpec{
			CronExpressions: []string{cfg.Temporal.Cron},
		},
		Action: &client.ScheduleWorkflowAction{
			ID:        "wx-ingest",
			Workflow:  workflows.WxIngestWorkflow,
			TaskQueue: cfg.Temporal.TaskQueue,
			Args:      []interface{}{workflows.WxIngestInput{FeedURL: cfg.Temporal.FeedURL}},
		},
	})
	if err != nil {
		slog.Warn("schedule create failed (may already exist)", "error", err)
	}

	slog.Info("wxingest worker started", "task_queue", cfg.Temporal.TaskQueue, "cron", cfg.Temporal.Cron)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
