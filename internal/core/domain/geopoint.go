package domain

import (
	"time"

	"github.com/samirrijal/hegaldi/internal/pkg/geohash"
)

// PointType tags the two geopoint variants held by the spatial store.
type PointType string

const (
	TypePopulation PointType = "POPULATION"
	TypeWeather    PointType = "WEATHER"
)

// GeoPoint is a spatially indexed record. PK partitions by a coarse geohash
// of the location; SK prefixes the type tag onto a fine geohash so items
// sort by type then position inside a partition. The GSI1 keys exist only
// for records selected into the sparse large-area index: every weather
// report, and population cells above the dataset's 95th-percentile count.
type GeoPoint struct {
	PK     string `json:"pk"`
	SK     string `json:"sk"`
	GSI1PK string `json:"gsi1pk,omitempty"`
	GSI1SK string `json:"gsi1sk,omitempty"`

	Lat  float64   `json:"lat"`
	Lon  float64   `json:"lon"`
	Type PointType `json:"type"`

	// Population cells only. Whole-cell count for a ~1 km² grid cell,
	// loaded once at bootstrap and immutable for the process lifetime.
	Population int64 `json:"population,omitempty"`

	// Weather reports only.
	TemperatureC       *float64   `json:"temperatureC,omitempty"`
	WindSpeedMs        *float64   `json:"windSpeedMs,omitempty"`
	VisibilityMeters   *float64   `json:"visibilityMeters,omitempty"`
	PrecipitationLevel *int       `json:"precipitationLevel,omitempty"`
	DataTimestamp      *time.Time `json:"dataTimestamp,omitempty"`
	RecordTimestamp    *time.Time `json:"recordTimestamp,omitempty"`
	TTL                *time.Time `json:"ttl,omitempty"`
}

// Coord returns the record's location as a bare coordinate.
func (g GeoPoint) Coord() Point {
	return Point{Lat: g.Lat, Lon: g.Lon}
}

// KeyPrecisions carries the three geohash precisions used to derive storage
// keys. Read from configuration at startup and immutable afterwards.
type KeyPrecisions struct {
	PartitionKey int // ~5 km cells, primary partitioning
	SortKey      int // ~40 m cells, intra-partition ordering
	GSI          int // ~40 km cells, sparse secondary index
}

// AssignKeys derives PK and SK from the record's location, and the GSI1
// keys as well when sparse is set. Keys are lexicographic prefix-compatible
// by construction.
func (g *GeoPoint) AssignKeys(p KeyPrecisions, sparse bool) {
	g.PK = geohash.Encode(g.Lat, g.Lon, p.PartitionKey)
	g.SK = string(g.Type) + "#" + geohash.Encode(g.Lat, g.Lon, p.SortKey)
	if sparse {
		g.GSI1PK = geohash.Encode(g.Lat, g.Lon, p.GSI)
		g.GSI1SK = g.SK
	}
}
