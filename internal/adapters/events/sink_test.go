package events

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/samirrijal/hegaldi/internal/core/domain"
)

func TestPublishRouteOptimised(t *testing.T) {
	var (
		gotPath   string
		gotAPIKey string
		gotBody   []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAPIKey = r.Header.Get("x-api-key")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sink := NewSink(srv.URL, "secret-key")

	event := domain.NewRouteOptimisedEvent("01HV3ZX8", domain.RouteAssessment{
		Route:            []domain.Point{{Lat: 1, Lon: 2}, {Lat: 3, Lon: 4}},
		RouteDistanceKm:  6.3,
		PopulationImpact: 300,
		NoiseImpactScore: 0.3,
	})

	if err := sink.PublishRouteOptimised(context.Background(), "default/routes", event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/event" {
		t.Errorf("path = %q, want /event", gotPath)
	}
	if gotAPIKey != "secret-key" {
		t.Errorf("api key header = %q", gotAPIKey)
	}

	var env struct {
		Channel string   `json:"channel"`
		Events  []string `json:"events"`
	}
	if err := json.Unmarshal(gotBody, &env); err != nil {
		t.Fatalf("bad envelope: %v", err)
	}
	if env.Channel != "default/routes" {
		t.Errorf("channel = %q", env.Channel)
	}
	if len(env.Events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(env.Events))
	}

	var decoded domain.RouteOptimisedEvent
	if err := json.Unmarshal([]byte(env.Events[0]), &decoded); err != nil {
		t.Fatalf("event is not a JSON string payload: %v", err)
	}
	if decoded.Type != "routeOptimised" {
		t.Errorf("event type = %q", decoded.Type)
	}
	if decoded.Data.ID != "01HV3ZX8" {
		t.Errorf("event id = %q", decoded.Data.ID)
	}
	if decoded.Data.VisibilityRisk != nil {
		t.Error("expected visibilityRisk omitted")
	}
}

func TestPublishRouteOptimisedServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	sink := NewSink(srv.URL, "k")
	err := sink.PublishRouteOptimised(context.Background(), "default/routes", domain.RouteOptimisedEvent{Type: "routeOptimised"})
	if err == nil {
		t.Fatal("expected error on 5xx response")
	}
}

func TestSinkConfigured(t *testing.T) {
	if NewSink("", "").Configured() {
		t.Error("empty domain reported as configured")
	}
	if !NewSink("events.example.com", "k").Configured() {
		t.Error("set domain reported as unconfigured")
	}
}
