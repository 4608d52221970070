// Package routing holds the pure flight-planning computations: corridor
// scanning over the geohash grid, ground-impact assessment, and the
// constrained-deviation route optimizer. Nothing here touches I/O.
package routing

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"

	"github.com/samirrijal/hegaldi/internal/core/domain"
	"github.com/samirrijal/hegaldi/internal/pkg/geohash"
	"github.com/samirrijal/hegaldi/internal/pkg/geospatial"
)

const (
	// DefaultStepMeters is the sampling interval along the route when
	// collecting corridor cells.
	DefaultStepMeters = 1000.0
	// DefaultBufferMeters is the corridor half-width.
	DefaultBufferMeters = 10000.0

	// Per-type distance thresholds for corridor membership. Weather
	// observations are sparse, so they count from much farther out.
	populationThresholdMeters = 500.0
	weatherThresholdMeters    = 20000.0
)

// BoundingBoxHashes returns the geohashes at the given precision covering
// the box.
func BoundingBoxHashes(b domain.Bounds, precision int) []string {
	return geohash.Bboxes(b.MinLat, b.MinLon, b.MaxLat, b.MaxLon, precision)
}

// RouteHashes returns every geohash at the given precision whose cell may
// intersect a corridor of half-width bufferMeters around the straight
// start-end course. The course is sampled every stepMeters and a buffered
// box around each sample is unioned into the cover. Both endpoints' own
// cells are always included.
func RouteHashes(start, end domain.Point, precision int, stepMeters, bufferMeters float64) []string {
	seen := make(map[string]struct{})
	var hashes []string
	add := func(hs ...string) {
		for _, h := range hs {
			if _, ok := seen[h]; !ok {
				seen[h] = struct{}{}
				hashes = append(hashes, h)
			}
		}
	}

	add(geohash.Encode(start.Lat, start.Lon, precision))
	add(geohash.Encode(end.Lat, end.Lon, precision))

	bearing := geospatial.RhumbBearing(start.Lat, start.Lon, end.Lat, end.Lon)
	steps := int(math.Floor(geospatial.Distance(start.Lat, start.Lon, end.Lat, end.Lon) / stepMeters))

	for i := 0; i <= steps; i++ {
		lat, lon := geospatial.RhumbDestination(start.Lat, start.Lon, float64(i)*stepMeters, bearing)

		dLat := bufferMeters / 111000.0
		dLon := bufferMeters / (111000.0 * math.Cos(lat*math.Pi/180))

		box := orb.Bound{
			Min: orb.Point{lon - dLon, lat - dLat},
			Max: orb.Point{lon + dLon, lat + dLat},
		}
		add(geohash.Bboxes(box.Min.Lat(), box.Min.Lon(), box.Max.Lat(), box.Max.Lon(), precision)...)
	}

	return hashes
}

// distanceThreshold returns the corridor-membership threshold for a point
// type, or a negative value for types that are never retained.
func distanceThreshold(t domain.PointType) float64 {
	switch t {
	case domain.TypePopulation:
		return populationThresholdMeters
	case domain.TypeWeather:
		return weatherThresholdMeters
	default:
		return -1
	}
}

// PointsNearSegment retains the points whose perpendicular distance to the
// segment ab is within their type's threshold.
func PointsNearSegment(a, b domain.Point, points []domain.GeoPoint) []domain.GeoPoint {
	var near []domain.GeoPoint
	for _, p := range points {
		threshold := distanceThreshold(p.Type)
		if threshold < 0 {
			continue
		}
		d := geospatial.PerpendicularDistance(p.Lat, p.Lon, a.Lat, a.Lon, b.Lat, b.Lon)
		if d <= threshold {
			near = append(near, p)
		}
	}
	return near
}

// PointsNearRoute applies PointsNearSegment to each consecutive segment of
// the polyline and unions the results, deduplicated by coordinate.
func PointsNearRoute(route []domain.Point, points []domain.GeoPoint) []domain.GeoPoint {
	seen := make(map[string]struct{})
	var near []domain.GeoPoint
	for i := 0; i+1 < len(route); i++ {
		for _, p := range PointsNearSegment(route[i], route[i+1], points) {
			key := coordKey(p.Lat, p.Lon)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			near = append(near, p)
		}
	}
	return near
}

func coordKey(lat, lon float64) string {
	return fmt.Sprintf("%v,%v", lat, lon)
}
