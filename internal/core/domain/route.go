package domain

import (
	"errors"
	"time"
)

// ErrInvalidInput marks requests with missing or out-of-range coordinates.
var ErrInvalidInput = errors.New("invalid input")

// RouteRecord is a persisted optimization job. Created with only the two
// requested route points; the worker fills the optimised fields exactly once.
type RouteRecord struct {
	ID          string    `json:"id"`
	RoutePoints []Point   `json:"routePoints"`
	CreatedAt   time.Time `json:"createdAt"`
	TTL         time.Time `json:"ttl"`

	OptimisedRoute           []Point  `json:"optimisedRoute,omitempty"`
	OptimisedRouteDistanceKm *float64 `json:"optimisedRouteDistanceKm,omitempty"`
	PopulationImpact         *int64   `json:"populationImpact,omitempty"`
	NoiseImpact              *float64 `json:"noiseImpact,omitempty"`
	VisibilityRisk           *float64 `json:"visibilityRisk,omitempty"`
	WindRisk                 *float64 `json:"windRisk,omitempty"`
}

// RouteAssessment is the ground-impact profile of a route polyline.
// Visibility and wind risks are nil when no weather observations fall
// inside the corridor; they are omitted from responses in that case.
type RouteAssessment struct {
	Route            []Point  `json:"route"`
	RouteDistanceKm  float64  `json:"routeDistance"`
	PopulationImpact int64    `json:"populationImpact"`
	NoiseImpactScore float64  `json:"noiseImpactScore"`
	VisibilityRisk   *float64 `json:"visibilityRisk,omitempty"`
	WindRisk         *float64 `json:"windRisk,omitempty"`
}

// RouteOptimisedData is the payload published to the notification sink when
// an optimization completes. It mirrors the assess response plus the id.
type RouteOptimisedData struct {
	ID               string   `json:"id"`
	Route            []Point  `json:"route"`
	RouteDistance    float64  `json:"routeDistance"`
	PopulationImpact int64    `json:"populationImpact"`
	NoiseImpactScore float64  `json:"noiseImpactScore"`
	VisibilityRisk   *float64 `json:"visibilityRisk,omitempty"`
	WindRisk         *float64 `json:"windRisk,omitempty"`
}

// RouteOptimisedEvent wraps the payload with its event type tag.
type RouteOptimisedEvent struct {
	Type string             `json:"type"`
	Data RouteOptimisedData `json:"data"`
}

// NewRouteOptimisedEvent builds the notification event for a completed job.
func NewRouteOptimisedEvent(id string, a RouteAssessment) RouteOptimisedEvent {
	return RouteOptimisedEvent{
		Type: "routeOptimised",
		Data: RouteOptimisedData{
			ID:               id,
			Route:            a.Route,
			RouteDistance:    a.RouteDistanceKm,
			PopulationImpact: a.PopulationImpact,
			NoiseImpactScore: a.NoiseImpactScore,
			VisibilityRisk:   a.VisibilityRisk,
			WindRisk:         a.WindRisk,
		},
	}
}
