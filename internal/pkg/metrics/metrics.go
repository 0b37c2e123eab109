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
		Namespace: "markermap",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "markermap",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "markermap",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// MarkersTotal is the size of the in-memory collection.
	MarkersTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "markermap",
		Subsystem: "markers",
		Name:      "total",
		Help:      "Current number of markers in the collection",
	})

	markerOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "markermap",
		Subsystem: "markers",
		Name:      "operations_total",
		Help:      "Marker operations by kind and result",
	}, []string{"op", "result"})

	// SnapshotBytes tracks the size of saved snapshots.
	SnapshotBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "markermap",
		Subsystem: "store",
		Name:      "snapshot_bytes",
		Help:      "Size of saved marker snapshots in bytes",
		Buckets:   prometheus.ExponentialBuckets(64, 4, 8),
	})

	StoreLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "markermap",
		Subsystem: "store",
		Name:      "op_duration_seconds",
		Help:      "Snapshot store call latency by driver and op",
		Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}, []string{"driver", "op"})
)

// ObserveOperation counts a marker operation as ok or error.
func ObserveOperation(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	markerOperations.WithLabelValues(op, result).Inc()
}

// ObserveStore records the duration of a store call started at start.
func ObserveStore(driver, op string, start time.Time) {
	StoreLatency.WithLabelValues(driver, op).Observe(time.Since(start).Seconds())
}

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)
		httpResponseSize.WithLabelValues(method, path).Observe(float64(len(c.Response().Body())))

		return err
	}
}

// Handler returns a Fiber handler serving Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}
