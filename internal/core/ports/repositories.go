package ports

import (
	"context"

	"github.com/samirrijal/hegaldi/internal/core/domain"
)

// SpatialRepository reads and writes geopoints partitioned by geohash.
type SpatialRepository interface {
	// QueryByHashPrefix returns every item in the partition whose primary
	// key (or sparse-index key when useSparseIndex) equals prefix,
	// paginating transparently up to the page cap. Hitting the cap is not
	// an error.
	QueryByHashPrefix(ctx context.Context, prefix string, useSparseIndex bool) ([]domain.GeoPoint, error)

	// FetchByHashPrefixes fans the per-prefix queries out with a bounded
	// number in flight. Individual prefix failures are logged and elided;
	// result ordering across prefixes is unspecified.
	FetchByHashPrefixes(ctx context.Context, prefixes []string, useSparseIndex bool) ([]domain.GeoPoint, error)

	// WriteBatch persists items in atomic groups. A failed group is
	// counted and skipped, never fatal; the failed-group count is returned.
	WriteBatch(ctx context.Context, items []domain.GeoPoint) (failedGroups int, err error)
}

// RouteRepository persists route optimization jobs.
type RouteRepository interface {
	// Create persists a new record holding only the requested points and
	// returns it with a fresh ULID and TTL. Failures are fatal to the
	// caller.
	Create(ctx context.Context, routePoints []domain.Point) (*domain.RouteRecord, error)

	GetByID(ctx context.Context, id string) (*domain.RouteRecord, error)

	// UpdateAssessment writes the optimization outcome onto an existing
	// record. The update is key-scoped and overwrite-equivalent, so
	// duplicate deliveries converge on the same final state.
	UpdateAssessment(ctx context.Context, id string, a domain.RouteAssessment) error
}
