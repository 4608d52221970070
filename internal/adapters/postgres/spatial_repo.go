package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/hegaldi/internal/core/domain"
	"github.com/samirrijal/hegaldi/internal/pkg/metrics"
)

const (
	// pageLimit and maxPages bound a single partition read. Hitting the
	// page cap truncates silently: overlapping prefixes make the corridor
	// reads eventually complete anyway.
	pageLimit = 1000
	maxPages  = 10

	// fetchConcurrency caps in-flight prefix queries during fan-out.
	fetchConcurrency = 50

	// writeGroupSize is the atomic unit of WriteBatch.
	writeGroupSize = 25
)

// SpatialRepo implements ports.SpatialRepository with pgx over a table
// shaped like a composite-key document store: (pk, sk) primary, sparse
// (gsi1pk, gsi1sk) secondary.
type SpatialRepo struct {
	db    *DB
	table string
}

// NewSpatialRepo creates a new SpatialRepo over the named table.
func NewSpatialRepo(db *DB, table string) *SpatialRepo {
	return &SpatialRepo{db: db, table: table}
}

const geoPointColumns = `pk, sk, COALESCE(gsi1pk, ''), COALESCE(gsi1sk, ''), lat, lon, type,
	COALESCE(population, 0), temperature_c, wind_speed_ms, visibility_m,
	precipitation_level, data_timestamp, record_timestamp, ttl`

func scanGeoPoint(row pgx.Rows) (domain.GeoPoint, error) {
	var g domain.GeoPoint
	err := row.Scan(
		&g.PK, &g.SK, &g.GSI1PK, &g.GSI1SK, &g.Lat, &g.Lon, &g.Type,
		&g.Population, &g.TemperatureC, &g.WindSpeedMs, &g.VisibilityMeters,
		&g.PrecipitationLevel, &g.DataTimestamp, &g.RecordTimestamp, &g.TTL,
	)
	return g, err
}

// QueryByHashPrefix returns all live items in one partition, paginating by
// sort key up to the page cap.
func (r *SpatialRepo) QueryByHashPrefix(ctx context.Context, prefix string, useSparseIndex bool) ([]domain.GeoPoint, error) {
	pkCol, skCol := "pk", "sk"
	if useSparseIndex {
		pkCol, skCol = "gsi1pk", "gsi1sk"
	}

	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE %s = $1 AND %s > $2 AND (ttl IS NULL OR ttl > now())
		ORDER BY %s
		LIMIT %d
	`, geoPointColumns, r.table, pkCol, skCol, skCol, pageLimit)

	var items []domain.GeoPoint
	lastKey := ""

	for page := 0; page < maxPages; page++ {
		rows, err := r.db.Pool.Query(ctx, query, prefix, lastKey)
		if err != nil {
			return nil, fmt.Errorf("query prefix %s: %w", prefix, err)
		}

		count := 0
		for rows.Next() {
			g, err := scanGeoPoint(rows)
			if err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan prefix %s: %w", prefix, err)
			}
			items = append(items, g)
			count++
			if useSparseIndex {
				lastKey = g.GSI1SK
			} else {
				lastKey = g.SK
			}
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("rows prefix %s: %w", prefix, err)
		}

		if count < pageLimit {
			break
		}
	}

	return items, nil
}

// FetchByHashPrefixes issues the per-prefix queries with at most
// fetchConcurrency in flight. Failed prefixes are logged, counted, and
// elided; the caller always gets the union of the successful reads.
func (r *SpatialRepo) FetchByHashPrefixes(ctx context.Context, prefixes []string, useSparseIndex bool) ([]domain.GeoPoint, error) {
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		all []domain.GeoPoint
	)
	sem := make(chan struct{}, fetchConcurrency)

	for _, prefix := range prefixes {
		wg.Add(1)
		go func(prefix string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			items, err := r.QueryByHashPrefix(ctx, prefix, useSparseIndex)
			if err != nil {
				metrics.SpatialPrefixQueryErrors.Inc()
				slog.Warn("spatial prefix read failed", "prefix", prefix, "error", err)
				return
			}

			mu.Lock()
			all = append(all, items...)
			mu.Unlock()
		}(prefix)
	}

	wg.Wait()
	metrics.SpatialPointsFetched.Add(float64(len(all)))
	return all, nil
}

// WriteBatch upserts items in groups of writeGroupSize, each group in its
// own transaction. A failed group is counted and skipped.
func (r *SpatialRepo) WriteBatch(ctx context.Context, items []domain.GeoPoint) (int, error) {
	insert := fmt.Sprintf(`
		INSERT INTO %s (pk, sk, gsi1pk, gsi1sk, lat, lon, type, population,
			temperature_c, wind_speed_ms, visibility_m, precipitation_level,
			data_timestamp, record_timestamp, ttl)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (pk, sk) DO UPDATE
		SET gsi1pk = EXCLUDED.gsi1pk, gsi1sk = EXCLUDED.gsi1sk,
		    lat = EXCLUDED.lat, lon = EXCLUDED.lon,
		    population = EXCLUDED.population,
		    temperature_c = EXCLUDED.temperature_c,
		    wind_speed_ms = EXCLUDED.wind_speed_ms,
		    visibility_m = EXCLUDED.visibility_m,
		    precipitation_level = EXCLUDED.precipitation_level,
		    data_timestamp = EXCLUDED.data_timestamp,
		    record_timestamp = EXCLUDED.record_timestamp,
		    ttl = EXCLUDED.ttl
	`, r.table)

	failedGroups := 0
	for offset := 0; offset < len(items); offset += writeGroupSize {
		end := offset + writeGroupSize
		if end > len(items) {
			end = len(items)
		}
		group := items[offset:end]

		if err := r.writeGroup(ctx, insert, group); err != nil {
			failedGroups++
			metrics.SpatialWriteBatchErrors.Inc()
			slog.Error("write group failed", "size", len(group), "error", err)
		}
	}

	return failedGroups, nil
}

func (r *SpatialRepo) writeGroup(ctx context.Context, insert string, group []domain.GeoPoint) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, g := range group {
		batch.Queue(insert,
			g.PK, g.SK, g.GSI1PK, g.GSI1SK, g.Lat, g.Lon, g.Type, g.Population,
			g.TemperatureC, g.WindSpeedMs, g.VisibilityMeters, g.PrecipitationLevel,
			g.DataTimestamp, g.RecordTimestamp, g.TTL,
		)
	}

	br := tx.SendBatch(ctx, batch)
	for range group {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("batch close: %w", err)
	}

	return tx.Commit(ctx)
}
