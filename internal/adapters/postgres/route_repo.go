package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/samirrijal/hegaldi/internal/core/domain"
)

// routeTTL is the retention of an optimization record.
const routeTTL = 7 * 24 * time.Hour

// RouteRepo implements ports.RouteRepository with pgx.
type RouteRepo struct {
	db    *DB
	table string
}

// NewRouteRepo creates a new RouteRepo over the named table.
func NewRouteRepo(db *DB, table string) *RouteRepo {
	return &RouteRepo{db: db, table: table}
}

// Create persists a fresh record holding only the requested points.
// Failures surface to the caller: without the row there is no job.
func (r *RouteRepo) Create(ctx context.Context, routePoints []domain.Point) (*domain.RouteRecord, error) {
	now := time.Now().UTC()
	rec := &domain.RouteRecord{
		ID:          ulid.Make().String(),
		RoutePoints: routePoints,
		CreatedAt:   now,
		TTL:         now.Add(routeTTL),
	}

	points, err := json.Marshal(rec.RoutePoints)
	if err != nil {
		return nil, fmt.Errorf("marshal route points: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (pk, route_points, created_at, ttl)
		VALUES ($1, $2, $3, $4)
	`, r.table)

	if _, err := r.db.Pool.Exec(ctx, query, rec.ID, points, rec.CreatedAt, rec.TTL); err != nil {
		return nil, fmt.Errorf("create route record: %w", err)
	}
	return rec, nil
}

// GetByID returns a live record by ULID; expired records are not found.
func (r *RouteRepo) GetByID(ctx context.Context, id string) (*domain.RouteRecord, error) {
	query := fmt.Sprintf(`
		SELECT pk, route_points, created_at, ttl,
		       optimised_route, optimised_route_distance_km,
		       population_impact, noise_impact, visibility_risk, wind_risk
		FROM %s WHERE pk = $1 AND ttl > now()
	`, r.table)

	var (
		rec           domain.RouteRecord
		pointsJSON    []byte
		optimisedJSON []byte
	)
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&rec.ID, &pointsJSON, &rec.CreatedAt, &rec.TTL,
		&optimisedJSON, &rec.OptimisedRouteDistanceKm,
		&rec.PopulationImpact, &rec.NoiseImpact, &rec.VisibilityRisk, &rec.WindRisk,
	)
	if err != nil {
		return nil, fmt.Errorf("get route %s: %w", id, err)
	}

	if err := json.Unmarshal(pointsJSON, &rec.RoutePoints); err != nil {
		return nil, fmt.Errorf("decode route points: %w", err)
	}
	if optimisedJSON != nil {
		if err := json.Unmarshal(optimisedJSON, &rec.OptimisedRoute); err != nil {
			return nil, fmt.Errorf("decode optimised route: %w", err)
		}
	}
	return &rec, nil
}

// UpdateAssessment writes the optimization outcome onto an existing record.
// The statement is key-scoped and overwrites whole columns, so a duplicate
// delivery converges on the same final state.
func (r *RouteRepo) UpdateAssessment(ctx context.Context, id string, a domain.RouteAssessment) error {
	optimised, err := json.Marshal(a.Route)
	if err != nil {
		return fmt.Errorf("marshal optimised route: %w", err)
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET optimised_route = $2,
		    optimised_route_distance_km = $3,
		    population_impact = $4,
		    noise_impact = $5,
		    visibility_risk = $6,
		    wind_risk = $7
		WHERE pk = $1
	`, r.table)

	tag, err := r.db.Pool.Exec(ctx, query, id,
		optimised, a.RouteDistanceKm, a.PopulationImpact, a.NoiseImpactScore,
		a.VisibilityRisk, a.WindRisk,
	)
	if err != nil {
		return fmt.Errorf("update route %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update route %s: record not found", id)
	}
	return nil
}
