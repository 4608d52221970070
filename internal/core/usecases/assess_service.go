package usecases

import (
	"context"
	"fmt"

	"github.com/samirrijal/hegaldi/internal/core/domain"
	"github.com/samirrijal/hegaldi/internal/core/ports"
	"github.com/samirrijal/hegaldi/internal/core/routing"
)

// AssessService computes the ground-impact profile of a straight-line
// flight between two coordinates.
type AssessService struct {
	spatial    ports.SpatialRepository
	precisions domain.KeyPrecisions
}

// NewAssessService creates a new AssessService.
func NewAssessService(spatial ports.SpatialRepository, precisions domain.KeyPrecisions) *AssessService {
	return &AssessService{spatial: spatial, precisions: precisions}
}

// Assess validates the endpoints, gathers the corridor's geopoints from the
// primary index, and scores the straight start-end route.
func (s *AssessService) Assess(ctx context.Context, start, end domain.Point) (*domain.RouteAssessment, error) {
	if !start.Valid() || !end.Valid() {
		return nil, fmt.Errorf("%w: coordinates out of range", domain.ErrInvalidInput)
	}

	hashes := routing.RouteHashes(start, end, s.precisions.PartitionKey,
		routing.DefaultStepMeters, routing.DefaultBufferMeters)

	points, err := s.spatial.FetchByHashPrefixes(ctx, hashes, false)
	if err != nil {
		return nil, fmt.Errorf("fetch corridor: %w", err)
	}

	route := []domain.Point{start, end}
	near := routing.PointsNearRoute(route, points)
	assessment := routing.Assess(route, near)
	return &assessment, nil
}
