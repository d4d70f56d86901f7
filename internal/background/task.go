package background

import (
	"context"
	"time"

	"github.com/azkv-tui/azkv/internal/event"
	"github.com/azkv-tui/azkv/internal/logging/events"
)

// Task performs the work of one background operation.
type Task func(ctx context.Context) error

// Tasks maps each request kind to the work it spawns.
type Tasks map[event.TaskKind]Task

// DefaultTasks returns the operations the application supports.
func DefaultTasks(demoDuration time.Duration) Tasks {
	return Tasks{
		event.TaskDemo: Sleep(demoDuration),
	}
}

// Sleep is a placeholder operation that waits d.
func Sleep(d time.Duration) Task {
	return func(ctx context.Context) error {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-timer.C:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// runUnit wraps task in the lifecycle contract: one increment before the work
// starts and one decrement attempt after it ends, whatever the outcome. When
// the increment cannot be delivered the UI is gone and the work is skipped.
// out is released on return.
func runUnit(ctx context.Context, id string, kind event.TaskKind, task Task, out *event.Sender[event.Message]) error {
	defer out.Close()
	if err := out.Send(ctx, event.Started()); err != nil {
		events.Task.Skip(id, kind.String())
		return nil
	}
	defer func() {
		// ErrClosed here is the normal end of shutdown.
		_ = out.Send(ctx, event.Finished())
	}()
	return task(ctx)
}
