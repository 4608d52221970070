package http

import (
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/hegaldi/internal/adapters/postgres"
	"github.com/samirrijal/hegaldi/internal/adapters/valkey"
	"github.com/samirrijal/hegaldi/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Viewport *usecases.ViewportService
	Assess   *usecases.AssessService
	Routes   *usecases.RouteService
	NATS     *nats.Conn
	DB       *postgres.DB
	Cache    *valkey.Cache

	// AssessTimeoutSeconds bounds the assess endpoint; other endpoints
	// share the default request timeout.
	AssessTimeoutSeconds int
}
