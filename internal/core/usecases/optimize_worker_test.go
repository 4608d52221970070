package usecases_test

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/samirrijal/hegaldi/internal/core/domain"
	"github.com/samirrijal/hegaldi/internal/core/routing"
	"github.com/samirrijal/hegaldi/internal/core/usecases"
)

func newTestWorker(spatial *mockSpatialRepo, routes *mockRouteRepo, sink *mockSink) *usecases.OptimizeWorker {
	return usecases.NewOptimizeWorker(
		spatial, routes, sink, &mockPublisher{},
		routing.NewOptimizer(routing.DefaultOptimizerConfig()),
		testPrecisions(),
		usecases.OptimizeWorkerConfig{Deadline: 30 * time.Second, MaxRecordAge: 5 * time.Minute},
	)
}

func freshRecord(start, end domain.Point) *domain.RouteRecord {
	return &domain.RouteRecord{
		ID:          "01HVJOB",
		RoutePoints: []domain.Point{start, end},
		CreatedAt:   time.Now(),
	}
}

func TestWorkerDegenerateRouteFallsBack(t *testing.T) {
	// start == end: the optimizer completes immediately with the
	// two-point path and zero impact.
	p := domain.Point{Lat: 43.2630, Lon: -2.9350}

	var persisted *domain.RouteAssessment
	routes := &mockRouteRepo{
		updateFn: func(ctx context.Context, id string, a domain.RouteAssessment) error {
			persisted = &a
			return nil
		},
	}
	var notified *domain.RouteOptimisedEvent
	sink := &mockSink{
		publishFn: func(ctx context.Context, channel string, event domain.RouteOptimisedEvent) error {
			if channel != "default/routes" {
				t.Errorf("channel = %q, want default/routes", channel)
			}
			notified = &event
			return nil
		},
	}

	w := newTestWorker(&mockSpatialRepo{}, routes, sink)
	if err := w.HandleRouteCreated(context.Background(), freshRecord(p, p)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if persisted == nil {
		t.Fatal("outcome not persisted")
	}
	if len(persisted.Route) != 2 {
		t.Errorf("optimised route length = %d, want 2", len(persisted.Route))
	}
	if persisted.PopulationImpact != 0 {
		t.Errorf("populationImpact = %d, want 0", persisted.PopulationImpact)
	}
	if notified == nil {
		t.Fatal("sink not notified")
	}
	if notified.Type != "routeOptimised" {
		t.Errorf("event type = %q", notified.Type)
	}
	if notified.Data.ID != "01HVJOB" {
		t.Errorf("event id = %q", notified.Data.ID)
	}
}

func TestWorkerAvoidsPopulatedCell(t *testing.T) {
	start := domain.Point{Lat: 40.70, Lon: -74.00}
	end := domain.Point{Lat: 40.78, Lon: -73.92}
	cell := domain.GeoPoint{
		Lat: (start.Lat+end.Lat)/2 + 0.0001, Lon: (start.Lon + end.Lon) / 2,
		Type: domain.TypePopulation, Population: 10000,
	}

	spatial := &mockSpatialRepo{
		fetchFn: func(ctx context.Context, prefixes []string, sparse bool) ([]domain.GeoPoint, error) {
			return []domain.GeoPoint{cell}, nil
		},
	}

	var persisted *domain.RouteAssessment
	routes := &mockRouteRepo{
		updateFn: func(ctx context.Context, id string, a domain.RouteAssessment) error {
			persisted = &a
			return nil
		},
	}

	w := newTestWorker(spatial, routes, &mockSink{})
	if err := w.HandleRouteCreated(context.Background(), freshRecord(start, end)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if persisted == nil {
		t.Fatal("outcome not persisted")
	}

	straightNear := routing.PointsNearRoute([]domain.Point{start, end}, []domain.GeoPoint{cell})
	straightImpact := routing.PopulationImpact(straightNear)
	if persisted.PopulationImpact > straightImpact {
		t.Errorf("optimised impact %d exceeds straight-line impact %d",
			persisted.PopulationImpact, straightImpact)
	}
}

func TestWorkerSkipsStaleRecords(t *testing.T) {
	rec := freshRecord(domain.Point{Lat: 1, Lon: 1}, domain.Point{Lat: 1.01, Lon: 1.01})
	rec.CreatedAt = time.Now().Add(-10 * time.Minute)

	updated := false
	routes := &mockRouteRepo{
		updateFn: func(ctx context.Context, id string, a domain.RouteAssessment) error {
			updated = true
			return nil
		},
	}

	w := newTestWorker(&mockSpatialRepo{}, routes, &mockSink{})
	if err := w.HandleRouteCreated(context.Background(), rec); err != nil {
		t.Fatalf("stale record must ack, not error: %v", err)
	}
	if updated {
		t.Error("stale record must not be optimized")
	}
}

func TestWorkerSinkFailureIsNonFatal(t *testing.T) {
	sink := &mockSink{
		publishFn: func(ctx context.Context, channel string, event domain.RouteOptimisedEvent) error {
			return context.DeadlineExceeded
		},
	}
	w := newTestWorker(&mockSpatialRepo{}, &mockRouteRepo{}, sink)

	p := domain.Point{Lat: 2, Lon: 2}
	if err := w.HandleRouteCreated(context.Background(), freshRecord(p, p)); err != nil {
		t.Fatalf("sink failure must not fail the job: %v", err)
	}
}

func TestWorkerIdempotentReplay(t *testing.T) {
	// Replaying the same creation event converges on the same final
	// record state.
	p1 := domain.Point{Lat: 43.2630, Lon: -2.9350}
	p2 := domain.Point{Lat: 43.2700, Lon: -2.9400}

	var outcomes []domain.RouteAssessment
	routes := &mockRouteRepo{
		updateFn: func(ctx context.Context, id string, a domain.RouteAssessment) error {
			outcomes = append(outcomes, a)
			return nil
		},
	}

	w := newTestWorker(&mockSpatialRepo{}, routes, &mockSink{})
	rec := freshRecord(p1, p2)
	for i := 0; i < 2; i++ {
		if err := w.HandleRouteCreated(context.Background(), rec); err != nil {
			t.Fatalf("replay %d: %v", i, err)
		}
	}

	if len(outcomes) != 2 {
		t.Fatalf("expected 2 overwrite-equivalent updates, got %d", len(outcomes))
	}
	if !reflect.DeepEqual(outcomes[0], outcomes[1]) {
		t.Error("replayed event produced a different outcome")
	}
}

func TestWorkerPersistFailureRetries(t *testing.T) {
	routes := &mockRouteRepo{
		updateFn: func(ctx context.Context, id string, a domain.RouteAssessment) error {
			return context.DeadlineExceeded
		},
	}
	w := newTestWorker(&mockSpatialRepo{}, routes, &mockSink{})

	p := domain.Point{Lat: 3, Lon: 3}
	if err := w.HandleRouteCreated(context.Background(), freshRecord(p, p)); err == nil {
		t.Fatal("persist failure must surface so the delivery is retried")
	}
}
