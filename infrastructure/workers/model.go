package workers

import "context"

// Task is a unit of work checked out by a worker.
type Task interface {
	GetID() string
}

// Processor supplies and settles tasks for a pool.
type Processor[T Task] interface {
	// Checkout claims the next task. It must be safe for concurrent workers
	// and return ErrNoWorkAvailable when there is nothing to do.
	Checkout(ctx context.Context, workerID string) (T, error)

	// Process runs the task and returns its result.
	Process(ctx context.Context, task T) (T, error)

	// Complete is called with the processed task after a successful run.
	Complete(ctx context.Context, task T, processingTimeMS int) error

	// Fail is called with the checked out task once retries are exhausted.
	Fail(ctx context.Context, task T, err error) error
}

// WorkFunc is one Checkout -> Process -> Complete/Fail cycle.
type WorkFunc func(ctx context.Context, workerID string) error

// Middleware wraps a WorkFunc.
type Middleware func(WorkFunc) WorkFunc

// PreProcessHook runs between Checkout and Process.
type PreProcessHook[T Task] func(ctx context.Context, task T) error

// PostProcessHook runs after Process, before Complete or Fail.
type PostProcessHook[T Task] func(ctx context.Context, task T, err error) error
