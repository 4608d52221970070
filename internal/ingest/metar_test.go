package ingest

import (
	"strings"
	"testing"
	"time"

	"github.com/samirrijal/hegaldi/internal/core/domain"
	"github.com/samirrijal/hegaldi/internal/pkg/geohash"
)

func testPrecisions() domain.KeyPrecisions {
	return domain.KeyPrecisions{PartitionKey: 5, SortKey: 8, GSI: 4}
}

func metarXML(body string) string {
	return `<?xml version="1.0" encoding="UTF-8"?><response><data>` + body + `</data></response>`
}

func TestDecodeMETARValidRecord(t *testing.T) {
	feed := metarXML(`
		<METAR>
			<station_id>KSFO</station_id>
			<observation_time>2025-06-01T12:00:00Z</observation_time>
			<latitude>37.62</latitude>
			<longitude>-122.37</longitude>
			<temp_c>15.6</temp_c>
			<wind_speed_kt>10</wind_speed_kt>
			<visibility_statute_mi>6.0</visibility_statute_mi>
		</METAR>`)

	now := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	points, stats, err := DecodeMETAR(strings.NewReader(feed), now, testPrecisions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Decoded != 1 || stats.Dropped != 0 {
		t.Fatalf("stats = %+v, want 1 decoded", stats)
	}

	g := points[0]
	if g.Type != domain.TypeWeather {
		t.Errorf("type = %q", g.Type)
	}
	if g.WindSpeedMs == nil || *g.WindSpeedMs != 5.1 {
		t.Errorf("windSpeedMs = %v, want 5.1", g.WindSpeedMs)
	}
	if g.TemperatureC == nil || *g.TemperatureC != 15.6 {
		t.Errorf("temperatureC = %v", g.TemperatureC)
	}
	if g.VisibilityMeters == nil || *g.VisibilityMeters != 9656 {
		t.Errorf("visibilityMeters = %v, want 9656", g.VisibilityMeters)
	}
	if g.TTL == nil || !g.TTL.Equal(now.Add(24*time.Hour)) {
		t.Errorf("ttl = %v, want recordTimestamp+24h", g.TTL)
	}
	if g.DataTimestamp == nil || !g.DataTimestamp.Equal(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("dataTimestamp = %v", g.DataTimestamp)
	}
}

func TestDecodeMETARKeyIntegrity(t *testing.T) {
	feed := metarXML(`
		<METAR>
			<latitude>37.62</latitude>
			<longitude>-122.37</longitude>
		</METAR>`)

	points, _, err := DecodeMETAR(strings.NewReader(feed), time.Now(), testPrecisions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	g := points[0]

	if g.PK != geohash.Encode(37.62, -122.37, 5) {
		t.Errorf("pk = %q", g.PK)
	}
	wantSK := "WEATHER#" + geohash.Encode(37.62, -122.37, 8)
	if g.SK != wantSK {
		t.Errorf("sk = %q, want %q", g.SK, wantSK)
	}
	// Weather reports always join the sparse index.
	if g.GSI1PK != geohash.Encode(37.62, -122.37, 4) {
		t.Errorf("gsi1pk = %q", g.GSI1PK)
	}
	if g.GSI1SK != wantSK {
		t.Errorf("gsi1sk = %q", g.GSI1SK)
	}
}

func TestDecodeMETARDropsInvalidLatitude(t *testing.T) {
	feed := metarXML(`
		<METAR>
			<latitude>91</latitude>
			<longitude>0</longitude>
		</METAR>
		<METAR>
			<latitude>37.62</latitude>
			<longitude>-122.37</longitude>
		</METAR>`)

	points, stats, err := DecodeMETAR(strings.NewReader(feed), time.Now(), testPrecisions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Dropped != 1 {
		t.Errorf("dropped = %d, want 1", stats.Dropped)
	}
	if len(points) != 1 {
		t.Fatalf("stored %d records, want 1", len(points))
	}
	if points[0].Lat != 37.62 {
		t.Errorf("wrong record survived: %v", points[0].Lat)
	}
}

func TestDecodeMETARMissingCoordinatesDropped(t *testing.T) {
	feed := metarXML(`<METAR><station_id>XXXX</station_id></METAR>`)
	points, stats, err := DecodeMETAR(strings.NewReader(feed), time.Now(), testPrecisions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 0 || stats.Dropped != 1 {
		t.Errorf("expected the coordinate-less record dropped, got %d/%+v", len(points), stats)
	}
}

func TestParseVisibility(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
		ok   bool
	}{
		{"6.0", 9656, true},
		{"0.25", 402, true},
		{"10+", 200000, true},
		{"10", 200000, true},
		{"10.0", 200000, true},
		{"", 0, false},
		{"junk", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseVisibility(tt.raw)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("parseVisibility(%q) = (%v, %v), want (%v, %v)", tt.raw, got, ok, tt.want, tt.ok)
		}
	}
}

func TestPrecipitationLevel(t *testing.T) {
	tests := []struct {
		wx   string
		want int
		ok   bool
	}{
		{"", 0, false},
		{"BR", 0, true},
		{"-DZ", 1, true},
		{"RA", 2, true},
		{"-SN", 2, true},
		{"+RA", 3, true},
		{"TSRA", 4, true},
	}
	for _, tt := range tests {
		got, ok := precipitationLevel(tt.wx)
		if ok != tt.ok || got != tt.want {
			t.Errorf("precipitationLevel(%q) = (%d, %v), want (%d, %v)", tt.wx, got, ok, tt.want, tt.ok)
		}
	}
}
