// Package workers runs a pool of pollers that check out, process and settle
// tasks supplied by a Processor.
package workers

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/jrazmi/helix/sdk/environment"
	"github.com/jrazmi/helix/sdk/logger"
)

var (
	ErrWorkerShutdown  = errors.New("worker should shutdown")
	ErrPoolShutdown    = errors.New("pool should shutdown")
	ErrNoWorkAvailable = errors.New("no work available")
)

// Options is the env mapped pool configuration.
type Options struct {
	Name         string        `env:"WORKER_NAME" default:"worker"`
	WorkerCount  int           `env:"WORKER_COUNT" default:"2"`
	PollInterval time.Duration `env:"WORKER_POLL_INTERVAL" default:"1s"`
	IdleInterval time.Duration `env:"WORKER_IDLE_INTERVAL" default:"30s"`
	MaxRetries   int           `env:"WORKER_MAX_RETRIES" default:"3"`
	RetryDelay   time.Duration `env:"WORKER_RETRY_DELAY" default:"1s"`
}

type options struct {
	name         string
	workerCount  int
	pollInterval time.Duration
	idleInterval time.Duration
	maxRetries   int
	retryDelay   time.Duration
	middlewares  []Middleware
	metrics      WorkerPoolMetrics
	log          *logger.Logger
}

type Option func(*options)

// WorkerPool polls a Processor from a fixed number of goroutines. Workers
// poll at PollInterval while work keeps coming and back off to IdleInterval
// once Checkout reports ErrNoWorkAvailable.
type WorkerPool[T Task] struct {
	processor    Processor[T]
	name         string
	workerCount  int
	pollInterval time.Duration
	idleInterval time.Duration
	maxRetries   int
	retryDelay   time.Duration
	log          *logger.Logger

	workFunc         WorkFunc
	middlewares      []Middleware
	preProcessHooks  []PreProcessHook[T]
	postProcessHooks []PostProcessHook[T]
	metrics          WorkerPoolMetrics

	mu      sync.Mutex
	cancel  context.CancelFunc
	running bool
	workers sync.WaitGroup
	errors  chan error
}

func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

func WithWorkerCount(count int) Option {
	return func(o *options) {
		o.workerCount = count
	}
}

// WithPollInterval sets the delay between cycles while work is available.
func WithPollInterval(interval time.Duration) Option {
	return func(o *options) {
		o.pollInterval = interval
	}
}

// WithIdleInterval sets the delay between cycles once the queue is empty.
func WithIdleInterval(interval time.Duration) Option {
	return func(o *options) {
		o.idleInterval = interval
	}
}

func WithLogger(log *logger.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// WithMaxRetries sets how many times Process is attempted per task.
func WithMaxRetries(maxRetries int) Option {
	return func(o *options) {
		o.maxRetries = maxRetries
	}
}

// WithRetryDelay sets the first backoff delay; it doubles per attempt.
func WithRetryDelay(delay time.Duration) Option {
	return func(o *options) {
		o.retryDelay = delay
	}
}

func WithMiddleware(middlewares ...Middleware) Option {
	return func(o *options) {
		o.middlewares = append(o.middlewares, middlewares...)
	}
}

func WithMetrics(metrics WorkerPoolMetrics) Option {
	return func(o *options) {
		o.metrics = metrics
	}
}

// NewFromEnv builds a pool from WORKER_* variables under prefix.
func NewFromEnv[T Task](prefix string, processor Processor[T], opts ...Option) (*WorkerPool[T], error) {
	var cfg Options
	if err := environment.ParseEnvTags(prefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing worker config: %w", err)
	}
	return newWorkerPool(processor, cfg, opts...)
}

func NewWorkerPool[T Task](name string, workerCount int, processor Processor[T], opts ...Option) (*WorkerPool[T], error) {
	cfg := Options{
		Name:         name,
		WorkerCount:  workerCount,
		PollInterval: time.Second,
		IdleInterval: 30 * time.Second,
		MaxRetries:   3,
		RetryDelay:   time.Second,
	}
	return newWorkerPool(processor, cfg, opts...)
}

func newWorkerPool[T Task](processor Processor[T], cfg Options, opts ...Option) (*WorkerPool[T], error) {
	if processor == nil {
		return nil, errors.New("worker pool requires a processor")
	}

	o := &options{
		name:         cfg.Name,
		workerCount:  cfg.WorkerCount,
		pollInterval: cfg.PollInterval,
		idleInterval: cfg.IdleInterval,
		maxRetries:   cfg.MaxRetries,
		retryDelay:   cfg.RetryDelay,
		metrics:      NewNoOpMetrics(),
	}
	for _, opt := range opts {
		opt(o)
	}

	if o.log == nil {
		o.log = logger.NewDefault()
	}
	if o.workerCount <= 0 {
		o.workerCount = 1
	}
	if o.pollInterval <= 0 {
		o.pollInterval = time.Second
	}
	if o.idleInterval <= 0 {
		o.idleInterval = 30 * time.Second
	}
	if o.retryDelay <= 0 {
		o.retryDelay = time.Second
	}

	pool := &WorkerPool[T]{
		processor:    processor,
		name:         o.name,
		workerCount:  o.workerCount,
		pollInterval: o.pollInterval,
		idleInterval: o.idleInterval,
		maxRetries:   o.maxRetries,
		retryDelay:   o.retryDelay,
		log:          o.log.With("pool", o.name),
		middlewares:  o.middlewares,
		metrics:      o.metrics,
	}
	pool.buildMiddlewareChain()
	return pool, nil
}

// Start runs the workers and blocks until ctx is done, Stop is called, or a
// worker requests a pool shutdown. The shutdown request is returned.
func (wp *WorkerPool[T]) Start(ctx context.Context) error {
	wp.mu.Lock()
	if wp.running {
		wp.mu.Unlock()
		return errors.New("worker pool already running")
	}
	ctx, wp.cancel = context.WithCancel(ctx)
	wp.running = true
	wp.errors = make(chan error, wp.workerCount)
	wp.mu.Unlock()

	started := time.Now()
	wp.log.InfoContext(ctx, "starting worker pool", "worker_count", wp.workerCount, "poll_interval", wp.pollInterval)
	wp.metrics.Start(ctx, wp.name)

	for i := range wp.workerCount {
		wp.workers.Add(1)
		go wp.worker(ctx, fmt.Sprintf("%s-worker-%d", wp.name, i+1))
	}

	shutdown := make(chan error, 1)
	go func(errs <-chan error) {
		var first error
		for err := range errs {
			if first == nil {
				first = err
			}
			wp.Stop()
		}
		shutdown <- first
	}(wp.errors)

	wp.workers.Wait()
	wp.mu.Lock()
	close(wp.errors)
	wp.running = false
	wp.mu.Unlock()
	shutdownErr := <-shutdown

	wp.metrics.Stop(context.Background())
	wp.log.InfoContext(context.Background(), "worker pool stopped", "total_runtime", time.Since(started))
	return shutdownErr
}

// Stop cancels the workers. Start returns once they have drained.
func (wp *WorkerPool[T]) Stop() {
	wp.mu.Lock()
	defer wp.mu.Unlock()
	if !wp.running || wp.cancel == nil {
		return
	}
	wp.log.Info("stopping worker pool")
	wp.cancel()
}

func (wp *WorkerPool[T]) worker(ctx context.Context, workerID string) {
	defer wp.workers.Done()
	wp.metrics.RecordWorkerStarted()
	defer wp.metrics.RecordWorkerStopped()

	log := wp.log.With("worker_id", workerID)
	log.DebugContext(ctx, "worker started")
	defer log.Debug("worker stopped")

	current := time.Millisecond
	ticker := time.NewTicker(current)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		err := wp.workWithPanicRecovery(ctx, workerID)

		next := wp.pollInterval
		switch {
		case err == nil:
		case errors.Is(err, ErrWorkerShutdown):
			log.InfoContext(ctx, "worker shutting down as requested")
			return
		case errors.Is(err, ErrPoolShutdown):
			log.ErrorContext(ctx, "worker requesting pool shutdown", "error", err)
			select {
			case wp.errors <- fmt.Errorf("worker %s: %w", workerID, err):
			default:
			}
			return
		case errors.Is(err, ErrNoWorkAvailable):
			next = wp.idleInterval
		default:
			log.ErrorContext(ctx, "task processing error", "error", err)
		}

		if next != current {
			log.DebugContext(ctx, "switching poll interval", "from", current, "to", next)
			current = next
			ticker.Reset(next)
		}
	}
}

// workWithPanicRecovery runs one cycle and turns a panic outside task
// processing, e.g. in Checkout or a middleware, into an error.
func (wp *WorkerPool[T]) workWithPanicRecovery(ctx context.Context, workerID string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			wp.log.ErrorContext(ctx, "panic recovered in worker",
				"worker_id", workerID,
				"panic", r,
				"stack_trace", string(debug.Stack()))
			wp.metrics.RecordWorkerPanic()
			err = fmt.Errorf("panic recovered: %v", r)
		}
	}()
	return wp.workFunc(ctx, workerID)
}

// work runs Checkout -> Process -> Complete/Fail. A panic in Process or a
// hook fails the task instead of the worker.
func (wp *WorkerPool[T]) work(ctx context.Context, workerID string) (err error) {
	task, err := wp.processor.Checkout(ctx, workerID)
	if err != nil {
		wp.metrics.RecordCheckoutError()
		if errors.Is(err, ErrNoWorkAvailable) {
			return err
		}
		return fmt.Errorf("checkout failed: %w", err)
	}
	wp.metrics.RecordTaskCheckedOut()

	var (
		processed  T
		processErr error
		started    = time.Now()
	)

	defer func() {
		if r := recover(); r != nil {
			wp.log.ErrorContext(ctx, "panic recovered in task",
				"worker_id", workerID,
				"task_id", task.GetID(),
				"panic", r,
				"stack_trace", string(debug.Stack()))
			wp.metrics.RecordWorkerPanic()
			processErr = fmt.Errorf("panic: %v", r)
			err = fmt.Errorf("task processing error: %w", processErr)
		}

		hookTask := processed
		if processErr != nil {
			hookTask = task
		}
		for _, hook := range wp.postProcessHooks {
			if hookErr := hook(ctx, hookTask, processErr); hookErr != nil {
				wp.log.ErrorContext(ctx, "post-process hook failed", "task_id", task.GetID(), "error", hookErr)
			}
		}

		elapsed := time.Since(started)
		if processErr != nil {
			wp.metrics.RecordTaskFailed(elapsed)
			if failErr := wp.processor.Fail(ctx, task, processErr); failErr != nil {
				wp.log.ErrorContext(ctx, "failed to mark task as failed", "task_id", task.GetID(), "error", failErr)
			}
			return
		}
		wp.metrics.RecordTaskCompleted(elapsed)
		if completeErr := wp.processor.Complete(ctx, processed, int(elapsed.Milliseconds())); completeErr != nil {
			wp.log.ErrorContext(ctx, "failed to mark task as complete", "task_id", task.GetID(), "error", completeErr)
		}
	}()

	for _, hook := range wp.preProcessHooks {
		if hookErr := hook(ctx, task); hookErr != nil {
			wp.log.ErrorContext(ctx, "pre-process hook failed", "task_id", task.GetID(), "error", hookErr)
		}
	}

	processed, processErr = wp.processWithRetry(ctx, task)
	if processErr != nil {
		return fmt.Errorf("task processing error: %w", processErr)
	}

	wp.log.DebugContext(ctx, "task completed",
		"worker_id", workerID,
		"task_id", task.GetID(),
		"duration_ms", time.Since(started).Milliseconds())
	return nil
}

// processWithRetry attempts Process up to maxRetries times with exponential
// backoff starting at retryDelay.
func (wp *WorkerPool[T]) processWithRetry(ctx context.Context, task T) (T, error) {
	attempts := max(wp.maxRetries, 1)

	var (
		processed T
		lastErr   error
	)
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			wp.metrics.RecordRetryAttempt()
			delay := wp.retryDelay * time.Duration(1<<(attempt-2))
			select {
			case <-ctx.Done():
				return processed, ctx.Err()
			case <-time.After(delay):
			}
		}

		processed, lastErr = wp.processor.Process(ctx, task)
		if lastErr == nil {
			if attempt > 1 {
				wp.metrics.RecordRetrySuccess()
			}
			return processed, nil
		}
		if ctx.Err() != nil {
			return processed, ctx.Err()
		}

		wp.log.WarnContext(ctx, "task attempt failed", "task_id", task.GetID(), "attempt", attempt, "error", lastErr)
	}

	if attempts > 1 {
		wp.metrics.RecordRetryExhausted()
	}
	return processed, fmt.Errorf("failed after %d attempts: %w", attempts, lastErr)
}

func (wp *WorkerPool[T]) GetMetrics() MetricsSnapshot {
	return wp.metrics.GetSnapshot()
}
