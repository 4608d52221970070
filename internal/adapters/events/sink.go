// Package events implements the outbound notification sink: completed
// optimizations are POSTed as a channel envelope to the external events
// endpoint that fans them out to clients.
package events

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/samirrijal/hegaldi/internal/core/domain"
	"github.com/samirrijal/hegaldi/internal/pkg/metrics"
)

// envelope is the wire format of the events endpoint: a channel name and a
// list of JSON-encoded event strings.
type envelope struct {
	Channel string   `json:"channel"`
	Events  []string `json:"events"`
}

// Sink POSTs optimization completions to the configured events domain.
type Sink struct {
	client *http.Client
	domain string
	apiKey string
}

// NewSink creates a sink for the given endpoint credentials.
func NewSink(domain, apiKey string) *Sink {
	return &Sink{
		client: &http.Client{Timeout: 10 * time.Second},
		domain: domain,
		apiKey: apiKey,
	}
}

// Configured reports whether an endpoint was set at startup.
func (s *Sink) Configured() bool {
	return s.domain != ""
}

// PublishRouteOptimised delivers one routeOptimised event on the channel.
// The caller treats failures as non-fatal: the persisted record is the
// system of record.
func (s *Sink) PublishRouteOptimised(ctx context.Context, channel string, event domain.RouteOptimisedEvent) error {
	eventJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	body, err := json.Marshal(envelope{
		Channel: channel,
		Events:  []string{string(eventJSON)},
	})
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	base := s.domain
	if !strings.Contains(base, "://") {
		base = "https://" + base
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/event", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		metrics.NotificationsFailed.Inc()
		return fmt.Errorf("post event: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		metrics.NotificationsFailed.Inc()
		return fmt.Errorf("post event: status %d", resp.StatusCode)
	}

	metrics.NotificationsPublished.Inc()
	return nil
}
