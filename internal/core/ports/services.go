package ports

import (
	"context"

	"github.com/samirrijal/hegaldi/internal/core/domain"
)

// EventPublisher publishes route lifecycle events to the message broker.
type EventPublisher interface {
	// PublishRouteCreated emits the change-feed event that triggers the
	// optimization worker. Only creations are published; updates to a
	// record are silent so the worker never re-fires on its own writeback.
	PublishRouteCreated(ctx context.Context, rec *domain.RouteRecord) error

	// PublishRouteOptimisedBroadcast fans a completed optimization out to
	// realtime subscribers (the WebSocket relay). Best effort.
	PublishRouteOptimisedBroadcast(ctx context.Context, routeID string, payload []byte) error
}

// EventSubscriber consumes route lifecycle events.
type EventSubscriber interface {
	// SubscribeRouteCreated delivers each created route to the handler.
	// A handler error triggers redelivery up to the broker's retry cap.
	SubscribeRouteCreated(ctx context.Context, handler func(ctx context.Context, rec *domain.RouteRecord) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// NotificationSink delivers completed-optimization events to clients via
// the external events endpoint. The persisted record remains the system of
// record; delivery failures are non-fatal.
type NotificationSink interface {
	PublishRouteOptimised(ctx context.Context, channel string, event domain.RouteOptimisedEvent) error
}
