// Package background spawns and supervises the task units requested by the
// input reader.
package background

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/azkv-tui/azkv/internal/event"
	"github.com/azkv-tui/azkv/internal/logging"
	"github.com/azkv-tui/azkv/internal/logging/events"
)

var (
	// ErrTaskPanicked wraps the value recovered from a panicking task unit.
	ErrTaskPanicked = errors.New("task panicked")
	// ErrUnknownTask reports a request for a kind with no registered task.
	ErrUnknownTask = errors.New("unknown task kind")
)

// Stats summarises what a manager did.
type Stats struct {
	Spawned  int
	Rejected int
	Drained  int
	Failed   int
}

// handle is the join point of one spawned unit.
type handle struct {
	id   string
	kind event.TaskKind
	done chan struct{}
	err  error
}

func (h *handle) wait() error {
	<-h.done
	return h.err
}

// Manager turns task requests into running units and joins every one of them
// before it returns.
type Manager struct {
	tasks Tasks

	mu       sync.Mutex
	registry []*handle
	stats    Stats

	done chan struct{}
}

// NewManager creates a manager that spawns the given tasks.
func NewManager(tasks Tasks) *Manager {
	return &Manager{
		tasks: tasks,
		done:  make(chan struct{}),
	}
}

// Run receives requests until every requester has released its sender (or
// ctx is done), then waits for all spawned units. Each unit reports through
// its own clone of out; Run releases out and the request receiver on return.
// Run must be called once.
func (m *Manager) Run(ctx context.Context, requests *event.Receiver[event.TaskRequest], out *event.Sender[event.Message]) {
	defer close(m.done)
	defer out.Close()

	for {
		req, ok := requests.Recv(ctx)
		if !ok {
			break
		}
		m.spawn(ctx, req, out)
	}
	requests.Close()
	m.drain()
}

// Wait blocks until Run has returned.
func (m *Manager) Wait() {
	<-m.done
}

// Done is closed once Run has returned.
func (m *Manager) Done() <-chan struct{} {
	return m.done
}

// Stats returns a snapshot of the manager's counters.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}

// Outstanding returns the number of spawned units not yet joined.
func (m *Manager) Outstanding() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats.Spawned - m.stats.Drained
}

func (m *Manager) spawn(ctx context.Context, req event.TaskRequest, out *event.Sender[event.Message]) {
	task, ok := m.tasks[req.Kind]
	if !ok {
		events.Task.Unknown(req.Kind.String())
		logging.Error(fmt.Errorf("%w: %s", ErrUnknownTask, req.Kind))
		m.mu.Lock()
		m.stats.Rejected++
		m.mu.Unlock()
		return
	}

	h := &handle{id: uuid.NewString(), kind: req.Kind, done: make(chan struct{})}
	unitOut := out.Clone()

	m.mu.Lock()
	m.registry = append(m.registry, h)
	m.stats.Spawned++
	outstanding := len(m.registry)
	m.mu.Unlock()
	events.Task.Spawn(h.id, h.kind.String(), outstanding)

	// Units are never canceled; they run to completion even after shutdown starts.
	unitCtx := context.WithoutCancel(ctx)
	go func() {
		defer close(h.done)
		defer func() {
			if r := recover(); r != nil {
				h.err = fmt.Errorf("%w: %v", ErrTaskPanicked, r)
			}
		}()
		h.err = runUnit(unitCtx, h.id, h.kind, task, unitOut)
	}()
}

func (m *Manager) drain() {
	m.mu.Lock()
	pending := m.registry
	m.mu.Unlock()
	events.Task.Drain(len(pending))

	for _, h := range pending {
		err := h.wait()
		events.Task.Done(h.id, h.kind.String(), err)
		if err != nil {
			logging.Error(fmt.Errorf("background task %s (%s): %w", h.kind, h.id, err))
		}
		m.mu.Lock()
		m.stats.Drained++
		if err != nil {
			m.stats.Failed++
		}
		m.mu.Unlock()
	}

	m.mu.Lock()
	m.registry = nil
	m.mu.Unlock()
}
