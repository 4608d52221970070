package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/samirrijal/hegaldi/internal/core/domain"
)

// sparseQuantile selects which population cells join the sparse index:
// only those above the dataset's 95th percentile.
const sparseQuantile = 0.95

// PopulationStats summarizes one bootstrap load.
type PopulationStats struct {
	Cells          int
	Skipped        int
	SparseCells    int
	SparseCutoff   int64
	TotalPopulated int64
}

// LoadPopulationCSV streams a "lat,lon,population" CSV (header optional)
// into population geopoints. The 95th-percentile cutoff is computed over
// the whole dataset first; only cells strictly above it carry GSI keys.
func LoadPopulationCSV(r io.Reader, precisions domain.KeyPrecisions) ([]domain.GeoPoint, PopulationStats, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 3

	type cell struct {
		lat, lon   float64
		population int64
	}

	var (
		cells []cell
		stats PopulationStats
	)

	for line := 0; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("read csv line %d: %w", line+1, err)
		}

		lat, errLat := strconv.ParseFloat(record[0], 64)
		lon, errLon := strconv.ParseFloat(record[1], 64)
		pop, errPop := strconv.ParseInt(record[2], 10, 64)
		if errLat != nil || errLon != nil || errPop != nil {
			// Header row or malformed line.
			stats.Skipped++
			continue
		}
		if pop < 0 || !(domain.Point{Lat: lat, Lon: lon}).Valid() {
			stats.Skipped++
			continue
		}

		cells = append(cells, cell{lat: lat, lon: lon, population: pop})
		stats.TotalPopulated += pop
	}

	if len(cells) == 0 {
		return nil, stats, nil
	}

	// 95th-percentile cutoff over the full dataset.
	populations := make([]int64, len(cells))
	for i, c := range cells {
		populations[i] = c.population
	}
	sort.Slice(populations, func(i, j int) bool { return populations[i] < populations[j] })
	idx := int(sparseQuantile * float64(len(populations)))
	if idx >= len(populations) {
		idx = len(populations) - 1
	}
	stats.SparseCutoff = populations[idx]

	points := make([]domain.GeoPoint, 0, len(cells))
	for _, c := range cells {
		g := domain.GeoPoint{
			Lat:        c.lat,
			Lon:        c.lon,
			Type:       domain.TypePopulation,
			Population: c.population,
		}
		sparse := c.population > stats.SparseCutoff
		g.AssignKeys(precisions, sparse)
		if sparse {
			stats.SparseCells++
		}
		points = append(points, g)
	}
	stats.Cells = len(points)

	return points, stats, nil
}
