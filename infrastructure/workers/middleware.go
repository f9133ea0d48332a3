package workers

import (
	"context"
	"errors"
	"sync"
)

// buildMiddlewareChain wraps work so the first registered middleware runs
// outermost.
func (wp *WorkerPool[T]) buildMiddlewareChain() {
	wp.workFunc = wp.work
	for i := len(wp.middlewares) - 1; i >= 0; i-- {
		wp.workFunc = wp.middlewares[i](wp.workFunc)
	}
}

// ConsecutiveErrorShutdown stops a worker after more than count failed
// cycles in a row. Empty checkouts neither count nor reset the streak.
func ConsecutiveErrorShutdown(count int) Middleware {
	errorCounts := make(map[string]int)
	var mu sync.Mutex

	return func(next WorkFunc) WorkFunc {
		return func(ctx context.Context, workerID string) error {
			err := next(ctx, workerID)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				errorCounts[workerID] = 0
			case !errors.Is(err, ErrNoWorkAvailable):
				errorCounts[workerID]++
				if errorCounts[workerID] > count {
					return ErrWorkerShutdown
				}
			}
			return err
		}
	}
}
