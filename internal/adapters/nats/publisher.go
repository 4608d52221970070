package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/hegaldi/internal/core/domain"
)

// Subjects of the route change feed. Only creations are published to the
// work-queue stream; the worker's own writeback never re-enters it.
const (
	subjectRouteCreated   = "routes.created."
	subjectRouteOptimised = "routes.optimised."
	streamName            = "ROUTE_EVENTS"
)

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and ensures the route-events stream exists.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	cfg := nats.StreamConfig{
		Name:      streamName,
		Subjects:  []string{subjectRouteCreated + ">"},
		Retention: nats.WorkQueuePolicy,
		MaxAge:    24 * time.Hour,
		Storage:   nats.FileStorage,
	}
	if _, err := js.AddStream(&cfg); err != nil {
		// Stream may already exist — try update
		if _, err := js.UpdateStream(&cfg); err != nil {
			return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishRouteCreated emits the change-feed event for a freshly inserted
// record.
func (p *Publisher) PublishRouteCreated(ctx context.Context, rec *domain.RouteRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(subjectRouteCreated+rec.ID, data)
	return err
}

// PublishRouteOptimisedBroadcast fans a completed optimization out to
// realtime subscribers over core NATS. Best effort, no persistence.
func (p *Publisher) PublishRouteOptimisedBroadcast(ctx context.Context, routeID string, payload []byte) error {
	return p.conn.Publish(subjectRouteOptimised+routeID, payload)
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. the
// WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
