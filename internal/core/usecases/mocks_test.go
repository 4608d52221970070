package usecases_test

import (
	"context"

	"github.com/samirrijal/hegaldi/internal/core/domain"
)

// --- Mock SpatialRepository ---

type mockSpatialRepo struct {
	queryFn func(ctx context.Context, prefix string, sparse bool) ([]domain.GeoPoint, error)
	fetchFn func(ctx context.Context, prefixes []string, sparse bool) ([]domain.GeoPoint, error)
	writeFn func(ctx context.Context, items []domain.GeoPoint) (int, error)
}

func (m *mockSpatialRepo) QueryByHashPrefix(ctx context.Context, prefix string, sparse bool) ([]domain.GeoPoint, error) {
	if m.queryFn != nil {
		return m.queryFn(ctx, prefix, sparse)
	}
	return nil, nil
}

func (m *mockSpatialRepo) FetchByHashPrefixes(ctx context.Context, prefixes []string, sparse bool) ([]domain.GeoPoint, error) {
	if m.fetchFn != nil {
		return m.fetchFn(ctx, prefixes, sparse)
	}
	return nil, nil
}

func (m *mockSpatialRepo) WriteBatch(ctx context.Context, items []domain.GeoPoint) (int, error) {
	if m.writeFn != nil {
		return m.writeFn(ctx, items)
	}
	return 0, nil
}

// --- Mock RouteRepository ---

type mockRouteRepo struct {
	createFn func(ctx context.Context, points []domain.Point) (*domain.RouteRecord, error)
	getFn    func(ctx context.Context, id string) (*domain.RouteRecord, error)
	updateFn func(ctx context.Context, id string, a domain.RouteAssessment) error
}

func (m *mockRouteRepo) Create(ctx context.Context, points []domain.Point) (*domain.RouteRecord, error) {
	if m.createFn != nil {
		return m.createFn(ctx, points)
	}
	return &domain.RouteRecord{ID: "01HTESTULID", RoutePoints: points}, nil
}

func (m *mockRouteRepo) GetByID(ctx context.Context, id string) (*domain.RouteRecord, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, nil
}

func (m *mockRouteRepo) UpdateAssessment(ctx context.Context, id string, a domain.RouteAssessment) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, a)
	}
	return nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	createdFn   func(ctx context.Context, rec *domain.RouteRecord) error
	broadcastFn func(ctx context.Context, routeID string, payload []byte) error
}

func (m *mockPublisher) PublishRouteCreated(ctx context.Context, rec *domain.RouteRecord) error {
	if m.createdFn != nil {
		return m.createdFn(ctx, rec)
	}
	return nil
}

func (m *mockPublisher) PublishRouteOptimisedBroadcast(ctx context.Context, routeID string, payload []byte) error {
	if m.broadcastFn != nil {
		return m.broadcastFn(ctx, routeID, payload)
	}
	return nil
}

// --- Mock NotificationSink ---

type mockSink struct {
	publishFn func(ctx context.Context, channel string, event domain.RouteOptimisedEvent) error
}

func (m *mockSink) PublishRouteOptimised(ctx context.Context, channel string, event domain.RouteOptimisedEvent) error {
	if m.publishFn != nil {
		return m.publishFn(ctx, channel, event)
	}
	return nil
}

// --- Mock CacheService ---

type mockCache struct {
	store map[string][]byte
}

func newMockCache() *mockCache {
	return &mockCache{store: make(map[string][]byte)}
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	if v, ok := m.store[key]; ok {
		return v, nil
	}
	return nil, context.Canceled // any error signals a miss
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.store[key] = value
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	delete(m.store, key)
	return nil
}

func testPrecisions() domain.KeyPrecisions {
	return domain.KeyPrecisions{PartitionKey: 5, SortKey: 8, GSI: 4}
}
