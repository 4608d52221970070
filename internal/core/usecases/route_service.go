package usecases

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samirrijal/hegaldi/internal/core/domain"
	"github.com/samirrijal/hegaldi/internal/core/ports"
)

// RouteService accepts optimization jobs. Submission only persists the
// request and signals the change feed; the worker does everything else.
type RouteService struct {
	routes    ports.RouteRepository
	publisher ports.EventPublisher
}

// NewRouteService creates a new RouteService. publisher may be nil when the
// broker is unavailable; jobs are then persisted but no change-feed event is
// sent for them, so the worker does not pick them up.
func NewRouteService(routes ports.RouteRepository, publisher ports.EventPublisher) *RouteService {
	return &RouteService{routes: routes, publisher: publisher}
}

// Submit validates the endpoints and creates the route record. The record
// insert is the job trigger; a create failure is fatal to the request.
func (s *RouteService) Submit(ctx context.Context, start, end domain.Point) (*domain.RouteRecord, error) {
	if !start.Valid() || !end.Valid() {
		return nil, fmt.Errorf("%w: coordinates out of range", domain.ErrInvalidInput)
	}

	rec, err := s.routes.Create(ctx, []domain.Point{start, end})
	if err != nil {
		return nil, fmt.Errorf("create route record: %w", err)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishRouteCreated(ctx, rec); err != nil {
			// The record stays persisted; the event is not retried,
			// so the worker does not pick this record up.
			slog.Error("publish route created failed", "route_id", rec.ID, "error", err)
		}
	}

	return rec, nil
}

// Get returns a stored route record.
func (s *RouteService) Get(ctx context.Context, id string) (*domain.RouteRecord, error) {
	return s.routes.GetByID(ctx, id)
}
