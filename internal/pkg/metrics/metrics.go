package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hegaldi",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "hegaldi",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	// Spatial store metrics
	SpatialPrefixQueryErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "hegaldi",
		Subsystem: "spatial",
		Name:      "prefix_query_errors_total",
		Help:      "Per-prefix read failures elided from fan-out results",
	})

	SpatialWriteBatchErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "hegaldi",
		Subsystem: "spatial",
		Name:      "write_batch_errors_total",
		Help:      "Write groups that failed and were skipped",
	})

	SpatialPointsFetched = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "hegaldi",
		Subsystem: "spatial",
		Name:      "points_fetched_total",
		Help:      "Geopoints returned by prefix fan-out reads",
	})

	// Optimizer metrics
	OptimizerRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hegaldi",
		Subsystem: "optimizer",
		Name:      "runs_total",
		Help:      "Optimization jobs processed, by outcome",
	}, []string{"outcome"}) // done | fallback | skipped

	OptimizerDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "hegaldi",
		Subsystem: "optimizer",
		Name:      "duration_seconds",
		Help:      "Wall-clock duration of a single optimization",
		Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
	})

	// Notification sink metrics
	NotificationsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "hegaldi",
		Subsystem: "events",
		Name:      "notifications_published_total",
		Help:      "Completed-optimization events delivered to the sink",
	})

	NotificationsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "hegaldi",
		Subsystem: "events",
		Name:      "notifications_failed_total",
		Help:      "Sink deliveries that failed (non-fatal)",
	})

	// Ingestion metrics
	WeatherReportsIngested = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "hegaldi",
		Subsystem: "ingest",
		Name:      "weather_reports_total",
		Help:      "Weather reports decoded and stored",
	})

	WeatherReportsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "hegaldi",
		Subsystem: "ingest",
		Name:      "weather_reports_dropped_total",
		Help:      "Weather reports dropped for invalid coordinates",
	})

	// Cache metrics
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hegaldi",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hegaldi",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})

	// Database pool metrics
	DBPoolConnsOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "hegaldi",
		Subsystem: "db",
		Name:      "pool_conns_open",
		Help:      "Total connections open in the database pool",
	})

	DBPoolConnsAcquired = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "hegaldi",
		Subsystem: "db",
		Name:      "pool_conns_acquired",
		Help:      "Connections currently acquired from the database pool",
	})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		path := c.Route().Path
		method := c.Method()
		status := strconv.Itoa(c.Response().StatusCode())

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())

		return err
	}
}

// Handler exposes the Prometheus registry on a fiber route.
func Handler() fiber.Handler {
	h := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	return func(c *fiber.Ctx) error {
		h(c.Context())
		return nil
	}
}
