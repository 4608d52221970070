package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/samirrijal/hegaldi/internal/adapters/postgres"
	"github.com/samirrijal/hegaldi/internal/core/domain"
	"github.com/samirrijal/hegaldi/internal/ingest"
	"github.com/samirrijal/hegaldi/internal/pkg/config"
	"github.com/samirrijal/hegaldi/internal/pkg/logging"
)

// popload bootstraps the population grid from a "lat,lon,population" CSV.
// Cells are written once and treated as immutable afterwards.
func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: popload <population.csv>")
	}

	cfg, err := config.Load("hegaldi-popload")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logging.FromEnv("hegaldi-popload")

	ctx := context.Background()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	f, err := os.Open(os.Args[1])
	if err != nil {
		log.Fatalf("open csv: %v", err)
	}
	defer f.Close()

	precisions := domain.KeyPrecisions{
		PartitionKey: cfg.Geohash.PartitionKeyPrecision,
		SortKey:      cfg.Geohash.SortKeyPrecision,
		GSI:          cfg.Geohash.GSIPrecision,
	}

	points, stats, err := ingest.LoadPopulationCSV(f, precisions)
	if err != nil {
		log.Fatalf("load csv: %v", err)
	}

	slog.Info("population csv loaded",
		"cells", stats.Cells,
		"skipped", stats.Skipped,
		"sparse_cells", stats.SparseCells,
		"sparse_cutoff", stats.SparseCutoff,
		"total_population", stats.TotalPopulated,
	)

	repo := postgres.NewSpatialRepo(db, cfg.Spatial.DataTable)
	failed, err := repo.WriteBatch(ctx, points)
	if err != nil {
		log.Fatalf("write batch: %v", err)
	}
	if failed > 0 {
		slog.Error("some write groups failed", "failed_groups", failed)
	}

	slog.Info("population bootstrap complete", "cells", stats.Cells, "failed_groups", failed)
}
