package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/hegaldi/internal/core/domain"
)

// Subscriber implements ports.EventSubscriber using NATS JetStream.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber creates a subscriber with its own NATS connection.
func NewSubscriber(url string) (*Subscriber, error) {
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
	return &Subscriber{conn: conn, js: js}, nil
}

// SubscribeRouteCreated delivers created-route events one at a time to the
// handler. MaxDeliver(3) gives each record its initial delivery plus at
// most two retries; the AckWait outlasts the optimizer deadline so a
// healthy run is never redelivered mid-search.
func (s *Subscriber) SubscribeRouteCreated(ctx context.Context, handler func(ctx context.Context, rec *domain.RouteRecord) error) error {
	sub, err := s.js.Subscribe(subjectRouteCreated+">", func(msg *nats.Msg) {
		var rec domain.RouteRecord
		if err := json.Unmarshal(msg.Data, &rec); err != nil {
			_ = msg.Term()
			return
		}
		if err := handler(ctx, &rec); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable("route-optimizer"),
		nats.ManualAck(),
		nats.MaxDeliver(3),
		nats.AckWait(6*time.Minute),
		nats.MaxAckPending(1),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
