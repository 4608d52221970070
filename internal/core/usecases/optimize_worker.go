package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/samirrijal/hegaldi/internal/core/domain"
	"github.com/samirrijal/hegaldi/internal/core/ports"
	"github.com/samirrijal/hegaldi/internal/core/routing"
	"github.com/samirrijal/hegaldi/internal/pkg/metrics"
)

// notificationChannel is the sink channel completed optimizations go to.
const notificationChannel = "default/routes"

// OptimizeWorkerConfig bounds one worker run.
type OptimizeWorkerConfig struct {
	// Deadline caps a single optimization; past it the straight line wins.
	Deadline time.Duration
	// MaxRecordAge skips stale change-feed deliveries.
	MaxRecordAge time.Duration
}

// OptimizeWorker consumes created-route events, runs the optimizer, and
// persists and publishes the outcome.
type OptimizeWorker struct {
	spatial    ports.SpatialRepository
	routes     ports.RouteRepository
	sink       ports.NotificationSink
	publisher  ports.EventPublisher
	optimizer  *routing.Optimizer
	precisions domain.KeyPrecisions
	cfg        OptimizeWorkerConfig
}

// NewOptimizeWorker creates a worker. sink and publisher may be nil;
// persistence remains the system of record either way.
func NewOptimizeWorker(
	spatial ports.SpatialRepository,
	routes ports.RouteRepository,
	sink ports.NotificationSink,
	publisher ports.EventPublisher,
	optimizer *routing.Optimizer,
	precisions domain.KeyPrecisions,
	cfg OptimizeWorkerConfig,
) *OptimizeWorker {
	if cfg.Deadline <= 0 {
		cfg.Deadline = 5 * time.Minute
	}
	if cfg.MaxRecordAge <= 0 {
		cfg.MaxRecordAge = 5 * time.Minute
	}
	return &OptimizeWorker{
		spatial:    spatial,
		routes:     routes,
		sink:       sink,
		publisher:  publisher,
		optimizer:  optimizer,
		precisions: precisions,
		cfg:        cfg,
	}
}

// HandleRouteCreated processes one change-feed delivery. A nil return acks
// the event; errors trigger the broker's bounded redelivery. Stale records
// are logged and acked so they cannot wedge the queue.
func (w *OptimizeWorker) HandleRouteCreated(ctx context.Context, rec *domain.RouteRecord) error {
	log := slog.With("route_id", rec.ID)

	if len(rec.RoutePoints) < 2 {
		log.Error("route record has no endpoints, skipping")
		metrics.OptimizerRuns.WithLabelValues("skipped").Inc()
		return nil
	}
	if age := time.Since(rec.CreatedAt); age > w.cfg.MaxRecordAge {
		log.Error("route record too old, skipping", "age", age.String())
		metrics.OptimizerRuns.WithLabelValues("skipped").Inc()
		return nil
	}

	start, end := rec.RoutePoints[0], rec.RoutePoints[1]

	runCtx, cancel := context.WithTimeout(ctx, w.cfg.Deadline)
	defer cancel()

	started := time.Now()
	assessment, err := w.optimize(runCtx, start, end)
	metrics.OptimizerDuration.Observe(time.Since(started).Seconds())
	if err != nil {
		return err
	}

	if err := w.routes.UpdateAssessment(ctx, rec.ID, *assessment); err != nil {
		return fmt.Errorf("persist outcome: %w", err)
	}

	outcome := "done"
	if len(assessment.Route) == 2 && assessment.Route[0] == start && assessment.Route[1] == end {
		outcome = "fallback"
	}
	metrics.OptimizerRuns.WithLabelValues(outcome).Inc()
	log.Info("route optimised",
		"points", len(assessment.Route),
		"distance_km", assessment.RouteDistanceKm,
		"population_impact", assessment.PopulationImpact,
	)

	w.notify(ctx, rec.ID, *assessment)
	return nil
}

// optimize runs the corridor gathering and search for one job.
func (w *OptimizeWorker) optimize(ctx context.Context, start, end domain.Point) (*domain.RouteAssessment, error) {
	if !start.Valid() || !end.Valid() {
		return nil, fmt.Errorf("%w: stored coordinates out of range", domain.ErrInvalidInput)
	}

	hashes := routing.RouteHashes(start, end, w.precisions.PartitionKey,
		routing.DefaultStepMeters, routing.DefaultBufferMeters)

	points, err := w.spatial.FetchByHashPrefixes(ctx, hashes, false)
	if err != nil {
		return nil, fmt.Errorf("fetch corridor: %w", err)
	}

	corridor := routing.PointsNearRoute([]domain.Point{start, end}, points)
	path := w.optimizer.FindPath(ctx, start, end, corridor)

	// Score the optimized polyline per segment against the full fetch so
	// cells pulled close by the detour are counted too.
	near := routing.PointsNearRoute(path, points)
	assessment := routing.Assess(path, near)
	return &assessment, nil
}

// notify publishes the completion to the sink and the realtime broadcast.
// Both are best effort; the persisted update is canonical.
func (w *OptimizeWorker) notify(ctx context.Context, id string, a domain.RouteAssessment) {
	event := domain.NewRouteOptimisedEvent(id, a)

	if w.sink != nil {
		if err := w.sink.PublishRouteOptimised(ctx, notificationChannel, event); err != nil {
			slog.Warn("notification sink publish failed", "route_id", id, "error", err)
		}
	}

	if w.publisher != nil {
		if payload, err := json.Marshal(event); err == nil {
			if err := w.publisher.PublishRouteOptimisedBroadcast(ctx, id, payload); err != nil {
				slog.Warn("realtime broadcast failed", "route_id", id, "error", err)
			}
		}
	}
}
