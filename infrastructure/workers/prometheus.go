package workers

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusMetrics exports pool metrics to a Prometheus registry and keeps
// in-memory counters for GetSnapshot.
type PrometheusMetrics struct {
	*InMemoryMetrics

	workersActive prometheus.Gauge
	panics        prometheus.Counter
	checkouts     *prometheus.CounterVec
	tasks         *prometheus.CounterVec
	duration      prometheus.Histogram
	retries       *prometheus.CounterVec
}

// NewPrometheusMetrics registers the pool collectors on reg, labelled with
// the pool name. Each pool needs its own name on a shared registry.
func NewPrometheusMetrics(reg prometheus.Registerer, namespace, poolName string) *PrometheusMetrics {
	factory := promauto.With(reg)
	labels := prometheus.Labels{"pool": poolName}

	return &PrometheusMetrics{
		InMemoryMetrics: NewInMemoryMetrics(),
		workersActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "workers",
			Name:        "active",
			Help:        "Number of running workers.",
			ConstLabels: labels,
		}),
		panics: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "workers",
			Name:        "panics_total",
			Help:        "Panics recovered in workers or tasks.",
			ConstLabels: labels,
		}),
		checkouts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "workers",
			Name:        "checkouts_total",
			Help:        "Checkout attempts by result.",
			ConstLabels: labels,
		}, []string{"result"}),
		tasks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "workers",
			Name:        "tasks_total",
			Help:        "Settled tasks by outcome.",
			ConstLabels: labels,
		}, []string{"outcome"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   "workers",
			Name:        "task_duration_seconds",
			Help:        "Task processing time including retries.",
			Buckets:     prometheus.ExponentialBuckets(0.001, 2, 15),
			ConstLabels: labels,
		}),
		retries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "workers",
			Name:        "retries_total",
			Help:        "Retry attempts by result.",
			ConstLabels: labels,
		}, []string{"result"}),
	}
}

func (p *PrometheusMetrics) RecordWorkerStarted() {
	p.InMemoryMetrics.RecordWorkerStarted()
	p.workersActive.Inc()
}

func (p *PrometheusMetrics) RecordWorkerStopped() {
	p.InMemoryMetrics.RecordWorkerStopped()
	p.workersActive.Dec()
}

func (p *PrometheusMetrics) RecordWorkerPanic() {
	p.InMemoryMetrics.RecordWorkerPanic()
	p.panics.Inc()
}

func (p *PrometheusMetrics) RecordTaskCheckedOut() {
	p.InMemoryMetrics.RecordTaskCheckedOut()
	p.checkouts.WithLabelValues("task").Inc()
}

func (p *PrometheusMetrics) RecordCheckoutError() {
	p.InMemoryMetrics.RecordCheckoutError()
	p.checkouts.WithLabelValues("empty_or_error").Inc()
}

func (p *PrometheusMetrics) RecordTaskCompleted(duration time.Duration) {
	p.InMemoryMetrics.RecordTaskCompleted(duration)
	p.tasks.WithLabelValues("completed").Inc()
	p.duration.Observe(duration.Seconds())
}

func (p *PrometheusMetrics) RecordTaskFailed(duration time.Duration) {
	p.InMemoryMetrics.RecordTaskFailed(duration)
	p.tasks.WithLabelValues("failed").Inc()
	p.duration.Observe(duration.Seconds())
}

func (p *PrometheusMetrics) RecordRetryAttempt() {
	p.InMemoryMetrics.RecordRetryAttempt()
	p.retries.WithLabelValues("attempt").Inc()
}

func (p *PrometheusMetrics) RecordRetrySuccess() {
	p.InMemoryMetrics.RecordRetrySuccess()
	p.retries.WithLabelValues("success").Inc()
}

func (p *PrometheusMetrics) RecordRetryExhausted() {
	p.InMemoryMetrics.RecordRetryExhausted()
	p.retries.WithLabelValues("exhausted").Inc()
}
