package routing

import (
	"math"

	"github.com/samirrijal/hegaldi/internal/core/domain"
	"github.com/samirrijal/hegaldi/internal/pkg/geospatial"
)

// footprintFactor models the direct ground footprint of a single pass over
// a ~1 km² population cell.
const footprintFactor = 0.1

// RouteDistanceKm sums the polyline's segment distances and converts to the
// service's round-trip kilometers (twice the one-way distance), to 1 dp.
func RouteDistanceKm(route []domain.Point) float64 {
	var meters float64
	for i := 0; i+1 < len(route); i++ {
		meters += geospatial.Distance(route[i].Lat, route[i].Lon, route[i+1].Lat, route[i+1].Lon)
	}
	return round1(meters / 500)
}

// PopulationImpact is the rounded, footprint-scaled sum of the population
// counts among the corridor points.
func PopulationImpact(points []domain.GeoPoint) int64 {
	var sum float64
	for _, p := range points {
		if p.Type == domain.TypePopulation {
			sum += float64(p.Population) * footprintFactor
		}
	}
	return int64(math.Round(sum))
}

// NoiseImpact derives the 0-5 noise score from a population impact, to 1 dp.
func NoiseImpact(populationImpact int64) float64 {
	score := float64(populationImpact) / 1000
	if score > 5 {
		score = 5
	}
	if score < 0 {
		score = 0
	}
	return round1(score)
}

// WeatherImpact reduces the corridor's weather observations to visibility
// and wind risk scores in [0, 5], each to 1 dp. Both are nil when the
// corridor holds no weather points.
func WeatherImpact(points []domain.GeoPoint) (visibilityRisk, windRisk *float64) {
	var maxVis, maxWind float64
	any := false

	for _, p := range points {
		if p.Type != domain.TypeWeather {
			continue
		}
		any = true

		var v float64
		if p.VisibilityMeters != nil && *p.VisibilityMeters < 1000 {
			v = (1000 - *p.VisibilityMeters) / 200
		}
		if v > maxVis {
			maxVis = v
		}

		var w float64
		if p.WindSpeedMs != nil {
			if *p.WindSpeedMs > 20 {
				w = 5
			} else {
				w = *p.WindSpeedMs / 4
			}
		}
		if w > maxWind {
			maxWind = w
		}
	}

	if !any {
		return nil, nil
	}
	vis := round1(maxVis)
	wind := round1(maxWind)
	return &vis, &wind
}

// Assess computes the full ground-impact profile of a route from the
// corridor points already filtered to it.
func Assess(route []domain.Point, points []domain.GeoPoint) domain.RouteAssessment {
	popImpact := PopulationImpact(points)
	visRisk, windRisk := WeatherImpact(points)

	return domain.RouteAssessment{
		Route:            route,
		RouteDistanceKm:  RouteDistanceKm(route),
		PopulationImpact: popImpact,
		NoiseImpactScore: NoiseImpact(popImpact),
		VisibilityRisk:   visRisk,
		WindRisk:         windRisk,
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
