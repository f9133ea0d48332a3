package workers

import (
	"context"

	"github.com/jrazmi/helix/sdk/logger"
)

// AddPreProcessHooks registers hooks that run after Checkout and before
// Process.
func (wp *WorkerPool[T]) AddPreProcessHooks(hooks ...PreProcessHook[T]) {
	wp.preProcessHooks = append(wp.preProcessHooks, hooks...)
}

// AddPostProcessHooks registers hooks that run after Process and before
// Complete or Fail.
func (wp *WorkerPool[T]) AddPostProcessHooks(hooks ...PostProcessHook[T]) {
	wp.postProcessHooks = append(wp.postProcessHooks, hooks...)
}

// LogStartHook logs each task as it starts at debug level.
func LogStartHook[T Task](log *logger.Logger) PreProcessHook[T] {
	return func(ctx context.Context, task T) error {
		log.DebugContext(ctx, "task starting", "task_id", task.GetID())
		return nil
	}
}

// LogEndHook logs each task outcome at debug level.
func LogEndHook[T Task](log *logger.Logger) PostProcessHook[T] {
	return func(ctx context.Context, task T, err error) error {
		if err != nil {
			log.DebugContext(ctx, "task ended", "task_id", task.GetID(), "error", err)
			return nil
		}
		log.DebugContext(ctx, "task ended", "task_id", task.GetID())
		return nil
	}
}
