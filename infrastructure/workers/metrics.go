package workers

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"time"
)

// WorkerPoolMetrics collects pool orchestration metrics.
type WorkerPoolMetrics interface {
	RecordWorkerStarted()
	RecordWorkerStopped()
	RecordWorkerPanic()

	RecordTaskCheckedOut()
	RecordTaskCompleted(duration time.Duration)
	RecordTaskFailed(duration time.Duration)
	// RecordCheckoutError counts empty and failed checkouts.
	RecordCheckoutError()

	RecordRetryAttempt()
	RecordRetrySuccess()
	RecordRetryExhausted()

	GetSnapshot() MetricsSnapshot

	Start(ctx context.Context, poolName string)
	Stop(ctx context.Context)
}

// MetricsSnapshot is a point-in-time view of pool metrics.
type MetricsSnapshot struct {
	WorkersStarted int64 `json:"workers_started"`
	WorkersStopped int64 `json:"workers_stopped"`
	WorkersActive  int64 `json:"workers_active"`
	WorkerPanics   int64 `json:"worker_panics"`

	TasksCheckedOut int64 `json:"tasks_checked_out"`
	TasksCompleted  int64 `json:"tasks_completed"`
	TasksFailed     int64 `json:"tasks_failed"`
	TasksInProgress int64 `json:"tasks_in_progress"`
	CheckoutErrors  int64 `json:"checkout_errors"`

	RetryAttempts    int64 `json:"retry_attempts"`
	RetrySuccesses   int64 `json:"retry_successes"`
	RetriesExhausted int64 `json:"retries_exhausted"`

	AverageDuration time.Duration `json:"average_duration_ms"`
	MinDuration     time.Duration `json:"min_duration_ms"`
	MaxDuration     time.Duration `json:"max_duration_ms"`

	// ErrorRate is the percentage of settled tasks that failed.
	ErrorRate float64 `json:"error_rate"`

	CollectedAt    time.Time     `json:"collected_at"`
	UptimeDuration time.Duration `json:"uptime_seconds"`
}

type NoOpMetrics struct{}

func NewNoOpMetrics() WorkerPoolMetrics {
	return &NoOpMetrics{}
}

func (n *NoOpMetrics) RecordWorkerStarted()                       {}
func (n *NoOpMetrics) RecordWorkerStopped()                       {}
func (n *NoOpMetrics) RecordWorkerPanic()                         {}
func (n *NoOpMetrics) RecordTaskCheckedOut()                      {}
func (n *NoOpMetrics) RecordTaskCompleted(duration time.Duration) {}
func (n *NoOpMetrics) RecordTaskFailed(duration time.Duration)    {}
func (n *NoOpMetrics) RecordCheckoutError()                       {}
func (n *NoOpMetrics) RecordRetryAttempt()                        {}
func (n *NoOpMetrics) RecordRetrySuccess()                        {}
func (n *NoOpMetrics) RecordRetryExhausted()                      {}
func (n *NoOpMetrics) GetSnapshot() MetricsSnapshot               { return MetricsSnapshot{} }
func (n *NoOpMetrics) Start(ctx context.Context, poolName string) {}
func (n *NoOpMetrics) Stop(ctx context.Context)                   {}

// InMemoryMetrics counts in process; GetSnapshot reads it.
type InMemoryMetrics struct {
	poolName  string
	startTime time.Time

	workersStarted atomic.Int64
	workersStopped atomic.Int64
	workerPanics   atomic.Int64

	tasksCheckedOut atomic.Int64
	tasksCompleted  atomic.Int64
	tasksFailed     atomic.Int64
	checkoutErrors  atomic.Int64

	retryAttempts    atomic.Int64
	retrySuccesses   atomic.Int64
	retriesExhausted atomic.Int64

	totalDurationNs atomic.Int64

	mu          sync.RWMutex
	minDuration time.Duration
	maxDuration time.Duration
}

func NewInMemoryMetrics() *InMemoryMetrics {
	return &InMemoryMetrics{
		startTime:   time.Now(),
		minDuration: math.MaxInt64,
	}
}

func (m *InMemoryMetrics) Start(ctx context.Context, poolName string) {
	m.poolName = poolName
	m.startTime = time.Now()
}

func (m *InMemoryMetrics) Stop(ctx context.Context) {}

func (m *InMemoryMetrics) RecordWorkerStarted()  { m.workersStarted.Add(1) }
func (m *InMemoryMetrics) RecordWorkerStopped()  { m.workersStopped.Add(1) }
func (m *InMemoryMetrics) RecordWorkerPanic()    { m.workerPanics.Add(1) }
func (m *InMemoryMetrics) RecordTaskCheckedOut() { m.tasksCheckedOut.Add(1) }
func (m *InMemoryMetrics) RecordCheckoutError()  { m.checkoutErrors.Add(1) }
func (m *InMemoryMetrics) RecordRetryAttempt()   { m.retryAttempts.Add(1) }
func (m *InMemoryMetrics) RecordRetrySuccess()   { m.retrySuccesses.Add(1) }
func (m *InMemoryMetrics) RecordRetryExhausted() { m.retriesExhausted.Add(1) }

func (m *InMemoryMetrics) RecordTaskCompleted(duration time.Duration) {
	m.tasksCompleted.Add(1)
	m.observe(duration)
}

func (m *InMemoryMetrics) RecordTaskFailed(duration time.Duration) {
	m.tasksFailed.Add(1)
	m.observe(duration)
}

func (m *InMemoryMetrics) observe(duration time.Duration) {
	m.totalDurationNs.Add(int64(duration))

	m.mu.Lock()
	m.minDuration = min(m.minDuration, duration)
	m.maxDuration = max(m.maxDuration, duration)
	m.mu.Unlock()
}

func (m *InMemoryMetrics) GetSnapshot() MetricsSnapshot {
	now := time.Now()

	started := m.workersStarted.Load()
	stopped := m.workersStopped.Load()
	completed := m.tasksCompleted.Load()
	failed := m.tasksFailed.Load()
	checkedOut := m.tasksCheckedOut.Load()
	settled := completed + failed

	m.mu.RLock()
	minDur, maxDur := m.minDuration, m.maxDuration
	m.mu.RUnlock()
	if settled == 0 {
		minDur = 0
	}

	var avg time.Duration
	var errorRate float64
	if settled > 0 {
		avg = time.Duration(m.totalDurationNs.Load() / settled)
		errorRate = float64(failed) / float64(settled) * 100
	}

	return MetricsSnapshot{
		WorkersStarted: started,
		WorkersStopped: stopped,
		WorkersActive:  started - stopped,
		WorkerPanics:   m.workerPanics.Load(),

		TasksCheckedOut: checkedOut,
		TasksCompleted:  completed,
		TasksFailed:     failed,
		TasksInProgress: checkedOut - settled,
		CheckoutErrors:  m.checkoutErrors.Load(),

		RetryAttempts:    m.retryAttempts.Load(),
		RetrySuccesses:   m.retrySuccesses.Load(),
		RetriesExhausted: m.retriesExhausted.Load(),

		AverageDuration: avg,
		MinDuration:     minDur,
		MaxDuration:     maxDur,
		ErrorRate:       errorRate,

		CollectedAt:    now,
		UptimeDuration: now.Sub(m.startTime),
	}
}
