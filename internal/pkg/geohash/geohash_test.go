package geohash

import (
	"testing"
)

func TestEncodeKnownValues(t *testing.T) {
	tests := []struct {
		lat, lon  float64
		precision int
		want      string
	}{
		{57.64911, 10.40744, 11, "u4pruydqqvj"},
		{40.7500, -73.9700, 5, "dr5ru"},
		{51.5074, -0.1278, 5, "gcpvj"},
		{0, 0, 1, "s"},
		{-90, -180, 5, "00000"},
	}
	for _, tt := range tests {
		got := Encode(tt.lat, tt.lon, tt.precision)
		if got != tt.want {
			t.Errorf("Encode(%v, %v, %d) = %q, want %q", tt.lat, tt.lon, tt.precision, got, tt.want)
		}
	}
}

func TestEncodeDefaultPrecision(t *testing.T) {
	if got := Encode(40.75, -73.97, 0); len(got) != 5 {
		t.Errorf("expected default precision 5, got %q", got)
	}
}

func TestBoundsRoundTrip(t *testing.T) {
	lat, lon := 43.2630, -2.9350
	h := Encode(lat, lon, 8)
	minLat, minLon, maxLat, maxLon := Bounds(h)
	if lat < minLat || lat > maxLat || lon < minLon || lon > maxLon {
		t.Errorf("point (%v, %v) outside bounds of its own hash %q: (%v,%v)-(%v,%v)",
			lat, lon, h, minLat, minLon, maxLat, maxLon)
	}
}

func TestBboxesCoversCorners(t *testing.T) {
	latMin, lonMin := 40.7489, -73.9876
	latMax, lonMax := 40.7589, -73.9656

	hashes := Bboxes(latMin, lonMin, latMax, lonMax, 5)
	if len(hashes) == 0 {
		t.Fatal("expected at least one hash")
	}

	set := make(map[string]bool, len(hashes))
	for _, h := range hashes {
		set[h] = true
	}

	// Every corner's own cell must be in the cover.
	corners := [][2]float64{
		{latMin, lonMin}, {latMin, lonMax}, {latMax, lonMin}, {latMax, lonMax},
	}
	for _, c := range corners {
		h := Encode(c[0], c[1], 5)
		if !set[h] {
			t.Errorf("cover missing corner cell %q for (%v, %v)", h, c[0], c[1])
		}
	}
}

func TestBboxesNoDuplicates(t *testing.T) {
	hashes := Bboxes(51.50, -0.13, 51.53, -0.10, 5)
	seen := make(map[string]bool)
	for _, h := range hashes {
		if seen[h] {
			t.Errorf("duplicate hash %q", h)
		}
		seen[h] = true
	}
}

func TestBboxesInteriorCells(t *testing.T) {
	// A box spanning several precision-5 cells must include an interior
	// sample's cell, not just the corners.
	hashes := Bboxes(40.70, -74.05, 40.80, -73.90, 5)
	set := make(map[string]bool, len(hashes))
	for _, h := range hashes {
		set[h] = true
	}
	if h := Encode(40.75, -73.97, 5); !set[h] {
		t.Errorf("cover missing interior cell %q", h)
	}
	if len(hashes) < 4 {
		t.Errorf("expected a multi-cell cover, got %d cells", len(hashes))
	}
}

func TestBboxesDegenerateBox(t *testing.T) {
	hashes := Bboxes(40.75, -73.97, 40.75, -73.97, 5)
	if len(hashes) != 1 {
		t.Fatalf("expected exactly one cell for a point box, got %d", len(hashes))
	}
	if hashes[0] != Encode(40.75, -73.97, 5) {
		t.Errorf("wrong cell %q", hashes[0])
	}
}
