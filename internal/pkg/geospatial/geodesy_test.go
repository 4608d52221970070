package geospatial

import (
	"math"
	"testing"
)

func TestDistanceLondonShortHop(t *testing.T) {
	// Central London: ~3.16 km between these two points.
	d := Distance(51.5074, -0.1278, 51.5300, -0.1000)
	if d < 3000 || d > 3300 {
		t.Errorf("Distance = %.0f m, want ~3.1 km", d)
	}
}

func TestDistanceZero(t *testing.T) {
	if d := Distance(40.75, -73.97, 40.75, -73.97); d != 0 {
		t.Errorf("Distance of identical points = %v, want 0", d)
	}
}

func TestDistanceSymmetry(t *testing.T) {
	d1 := Distance(43.2630, -2.9350, 43.3000, -3.0000)
	d2 := Distance(43.3000, -3.0000, 43.2630, -2.9350)
	if math.Abs(d1-d2) > 1e-6 {
		t.Errorf("asymmetric distance: %v vs %v", d1, d2)
	}
}

func TestRhumbBearingCardinals(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want                   float64
	}{
		{"north", 40, -74, 41, -74, 0},
		{"east", 0, 0, 0, 1, 90},
		{"south", 41, -74, 40, -74, 180},
		{"west", 0, 1, 0, 0, 270},
	}
	for _, tt := range tests {
		got := RhumbBearing(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
		if math.Abs(got-tt.want) > 0.01 {
			t.Errorf("%s: RhumbBearing = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestRhumbBearingRange(t *testing.T) {
	b := RhumbBearing(51.5, -0.1, 51.4, -0.2)
	if b < 0 || b >= 360 {
		t.Errorf("bearing %v outside [0, 360)", b)
	}
}

func TestRhumbDestinationRoundTrip(t *testing.T) {
	lat1, lon1 := 51.5074, -0.1278
	bearing := 37.0
	meters := 5000.0

	lat2, lon2 := RhumbDestination(lat1, lon1, meters, bearing)

	if d := Distance(lat1, lon1, lat2, lon2); math.Abs(d-meters) > meters*0.005 {
		t.Errorf("destination is %.1f m away, want %.0f m", d, meters)
	}
	if b := RhumbBearing(lat1, lon1, lat2, lon2); math.Abs(b-bearing) > 0.5 {
		t.Errorf("bearing back-check = %v, want %v", b, bearing)
	}
}

func TestRhumbDestinationDueEast(t *testing.T) {
	lat2, lon2 := RhumbDestination(45, 0, 10000, 90)
	if math.Abs(lat2-45) > 1e-6 {
		t.Errorf("due-east travel changed latitude: %v", lat2)
	}
	if lon2 <= 0 {
		t.Errorf("due-east travel did not increase longitude: %v", lon2)
	}
}

func TestPerpendicularDistanceOnSegment(t *testing.T) {
	// Point offset ~0.001° (~111 m) north of the midpoint of an east-west segment.
	d := PerpendicularDistance(40.001, -73.5, 40.0, -74.0, 40.0, -73.0)
	if d < 100 || d > 125 {
		t.Errorf("PerpendicularDistance = %.1f m, want ~111 m", d)
	}
}

func TestPerpendicularDistanceBeyondEndpoint(t *testing.T) {
	// Point past the b endpoint: distance must clamp to the endpoint, not
	// the infinite line.
	d := PerpendicularDistance(40.0, -72.0, 40.0, -74.0, 40.0, -73.0)
	line := Distance(40.0, -72.0, 40.0, -73.0)
	if math.Abs(d-line) > line*0.01 {
		t.Errorf("distance %.1f m, want endpoint distance %.1f m", d, line)
	}
}

func TestPerpendicularDistanceDegenerateSegment(t *testing.T) {
	d := PerpendicularDistance(40.01, -74.0, 40.0, -74.0, 40.0, -74.0)
	want := Distance(40.01, -74.0, 40.0, -74.0)
	if math.Abs(d-want) > 1 {
		t.Errorf("degenerate segment distance = %v, want %v", d, want)
	}
}

func TestBoundingBoxContainsPoint(t *testing.T) {
	minLat, minLon, maxLat, maxLon := BoundingBox(43.26, -2.93, 10000)
	if 43.26 < minLat || 43.26 > maxLat || -2.93 < minLon || -2.93 > maxLon {
		t.Error("center outside its own bounding box")
	}
	// 10 km radius ≈ 0.09° of latitude.
	if maxLat-minLat < 0.17 || maxLat-minLat > 0.19 {
		t.Errorf("latitude span %v, want ~0.18", maxLat-minLat)
	}
}
