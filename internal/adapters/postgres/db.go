package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/samirrijal/hegaldi/internal/pkg/metrics"
)

// DB wraps pgxpool.Pool and provides a shared connection pool.
type DB struct {
	Pool *pgxpool.Pool
}

// New creates a new DB connection pool. The pool is sized for the spatial
// fan-out, which holds up to 50 prefix queries in flight.
func New(ctx context.Context, dsn string) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	cfg.MaxConns = 60

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// ObservePoolStats copies pool gauges into the metrics registry.
func (db *DB) ObservePoolStats() {
	stats := db.Pool.Stat()
	metrics.DBPoolConnsOpen.Set(float64(stats.TotalConns()))
	metrics.DBPoolConnsAcquired.Set(float64(stats.AcquiredConns()))
}

// Close releases pool resources.
func (db *DB) Close() {
	db.Pool.Close()
}
