package usecases

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb"

	"github.com/samirrijal/hegaldi/internal/core/domain"
	"github.com/samirrijal/hegaldi/internal/core/ports"
	"github.com/samirrijal/hegaldi/internal/core/routing"
	"github.com/samirrijal/hegaldi/internal/pkg/metrics"
)

// viewportCacheTTLSeconds keeps hot map viewports out of the store briefly;
// the sparse index already makes these reads cheap.
const viewportCacheTTLSeconds = 60

// ViewportService answers bounding-box queries over the sparse index.
type ViewportService struct {
	spatial    ports.SpatialRepository
	cache      ports.CacheService
	precisions domain.KeyPrecisions
}

// NewViewportService creates a new ViewportService. cache may be nil.
func NewViewportService(spatial ports.SpatialRepository, cache ports.CacheService, precisions domain.KeyPrecisions) *ViewportService {
	return &ViewportService{spatial: spatial, cache: cache, precisions: precisions}
}

// Viewport returns the sparse-index items inside the box, edges included.
// The GSI cells are coarse, so every fetched item is re-checked against the
// exact bounds before it is returned.
func (s *ViewportService) Viewport(ctx context.Context, box domain.Bounds) ([]domain.GeoPoint, error) {
	if !(domain.Point{Lat: box.MinLat, Lon: box.MinLon}).Valid() ||
		!(domain.Point{Lat: box.MaxLat, Lon: box.MaxLon}).Valid() {
		return nil, fmt.Errorf("%w: bounds out of range", domain.ErrInvalidInput)
	}

	cacheKey := fmt.Sprintf("viewport:%.4f:%.4f:%.4f:%.4f", box.MinLat, box.MinLon, box.MaxLat, box.MaxLon)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var items []domain.GeoPoint
			if err := json.Unmarshal(data, &items); err == nil {
				metrics.CacheHits.WithLabelValues("viewport").Inc()
				return items, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("viewport").Inc()
	}

	hashes := routing.BoundingBoxHashes(box, s.precisions.GSI)
	fetched, err := s.spatial.FetchByHashPrefixes(ctx, hashes, true)
	if err != nil {
		return nil, fmt.Errorf("fetch viewport: %w", err)
	}

	bound := orb.Bound{
		Min: orb.Point{box.MinLon, box.MinLat},
		Max: orb.Point{box.MaxLon, box.MaxLat},
	}
	items := make([]domain.GeoPoint, 0, len(fetched))
	for _, g := range fetched {
		if bound.Contains(orb.Point{g.Lon, g.Lat}) {
			items = append(items, g)
		}
	}

	if s.cache != nil {
		if data, err := json.Marshal(items); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, viewportCacheTTLSeconds)
		}
	}

	return items, nil
}
