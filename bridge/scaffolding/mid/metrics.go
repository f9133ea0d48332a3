package mid

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jrazmi/helix/infrastructure/web"
)

// HTTPMetrics holds the request collectors registered for one handler.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inFlight prometheus.Gauge
}

// NewHTTPMetrics registers the request collectors with reg.
func NewHTTPMetrics(reg prometheus.Registerer, namespace string) *HTTPMetrics {
	factory := promauto.With(reg)
	return &HTTPMetrics{
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "api",
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "handler", "status"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "api",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 15),
			},
			[]string{"method", "handler"},
		),
		inFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "api",
				Name:      "http_requests_in_flight",
				Help:      "Number of HTTP requests being served",
			},
		),
	}
}

// Metrics updates the request collectors. The handler label is the route
// pattern so path parameters do not explode label cardinality.
func Metrics(m *HTTPMetrics) web.Middleware {
	return func(next web.HandlerFunc) web.HandlerFunc {
		return func(ctx context.Context, r *http.Request) web.Encoder {
			m.inFlight.Inc()
			defer m.inFlight.Dec()

			start := time.Now()
			resp := next(ctx, r)

			handler := r.Pattern
			if handler == "" {
				handler = "unmatched"
			}
			m.requests.WithLabelValues(r.Method, handler, strconv.Itoa(statusOf(resp))).Inc()
			m.duration.WithLabelValues(r.Method, handler).Observe(time.Since(start).Seconds())

			return resp
		}
	}
}
