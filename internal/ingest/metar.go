// Package ingest decodes the external data feeds into spatial-store
// records: METAR weather observations and the population grid bootstrap.
package ingest

import (
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/samirrijal/hegaldi/internal/core/domain"
)

const (
	knotsToMs    = 0.5144
	milesToM     = 1609.34
	weatherTTL   = 24 * time.Hour
	// unlimitedVisibilityMeters stands in for reports encoding "10+
	// statute miles".
	unlimitedVisibilityMeters = 200000
)

// metarResponse mirrors the aviationweather XML feed. Optional numeric
// fields are pointers so absent elements stay distinguishable from zeros.
type metarResponse struct {
	XMLName xml.Name      `xml:"response"`
	METARs  []metarRecord `xml:"data>METAR"`
}

type metarRecord struct {
	StationID       string   `xml:"station_id"`
	ObservationTime string   `xml:"observation_time"`
	Latitude        *float64 `xml:"latitude"`
	Longitude       *float64 `xml:"longitude"`
	TempC           *float64 `xml:"temp_c"`
	WindSpeedKt     *float64 `xml:"wind_speed_kt"`
	VisibilityMi    string   `xml:"visibility_statute_mi"`
	WxString        string   `xml:"wx_string"`
}

// MetarStats summarizes one decode run.
type MetarStats struct {
	Decoded int
	Dropped int
}

// DecodeMETAR parses a METAR XML feed into weather geopoints. Records with
// missing or out-of-range coordinates are dropped, not errors. now becomes
// the record timestamp; the TTL follows it by 24 hours.
func DecodeMETAR(r io.Reader, now time.Time, precisions domain.KeyPrecisions) ([]domain.GeoPoint, MetarStats, error) {
	var feed metarResponse
	if err := xml.NewDecoder(r).Decode(&feed); err != nil {
		return nil, MetarStats{}, fmt.Errorf("decode metar xml: %w", err)
	}

	var (
		points []domain.GeoPoint
		stats  MetarStats
	)
	recordTime := now.UTC()
	ttl := recordTime.Add(weatherTTL)

	for _, m := range feed.METARs {
		if m.Latitude == nil || m.Longitude == nil {
			stats.Dropped++
			continue
		}
		loc := domain.Point{Lat: *m.Latitude, Lon: *m.Longitude}
		if !loc.Valid() {
			stats.Dropped++
			continue
		}

		g := domain.GeoPoint{
			Lat:             loc.Lat,
			Lon:             loc.Lon,
			Type:            domain.TypeWeather,
			TemperatureC:    m.TempC,
			RecordTimestamp: &recordTime,
			TTL:             &ttl,
		}

		if m.WindSpeedKt != nil {
			ms := round1(*m.WindSpeedKt * knotsToMs)
			g.WindSpeedMs = &ms
		}
		if vis, ok := parseVisibility(m.VisibilityMi); ok {
			g.VisibilityMeters = &vis
		}
		if lvl, ok := precipitationLevel(m.WxString); ok {
			g.PrecipitationLevel = &lvl
		}
		if t, err := parseObservationTime(m.ObservationTime); err == nil {
			g.DataTimestamp = &t
		}

		// Weather reports always join the sparse index.
		g.AssignKeys(precisions, true)

		points = append(points, g)
		stats.Decoded++
	}

	return points, stats, nil
}

// parseVisibility converts statute miles to meters. Feeds encode unlimited
// visibility with a leading "10" ("10+", "10.0+"), which maps to the
// 200 km sentinel.
func parseVisibility(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	if strings.HasPrefix(s, "10") {
		return unlimitedVisibilityMeters, true
	}
	miles, err := strconv.ParseFloat(strings.TrimSuffix(s, "+"), 64)
	if err != nil {
		return 0, false
	}
	return math.Round(miles * milesToM), true
}

// precipitationLevel maps the present-weather string onto the 0..4 scale.
func precipitationLevel(wx string) (int, bool) {
	if wx == "" {
		return 0, false
	}
	switch {
	case strings.Contains(wx, "TS"):
		return 4, true
	case strings.HasPrefix(wx, "+"):
		return 3, true
	case strings.Contains(wx, "RA") || strings.Contains(wx, "SN"):
		return 2, true
	case strings.Contains(wx, "DZ"):
		return 1, true
	default:
		return 0, true
	}
}

// parseObservationTime accepts the two timestamp layouts the feed uses.
func parseObservationTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t, err = time.Parse("2006-01-02 15:04:05", s)
		if err != nil {
			return time.Time{}, err
		}
	}
	return t.UTC(), nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
