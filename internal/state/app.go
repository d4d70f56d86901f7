package state

import (
	"errors"
	"fmt"

	"github.com/azkv-tui/azkv/internal/azure"
	"github.com/azkv-tui/azkv/internal/event"
)

var (
	// ErrNegativeTaskCount reports a decrement that would have taken the
	// active task count below zero. The count is clamped at zero instead.
	ErrNegativeTaskCount = errors.New("active task count would go negative")
	// ErrUnknownCounter reports a delta for a counter the state does not track.
	ErrUnknownCounter = errors.New("unknown counter")
)

// App is the application state. It has exactly one owner, the UI loop, and is
// never shared with other goroutines.
type App struct {
	activeTasks int
	underflows  int

	version       string
	subscriptions []azure.Subscription
	selected      int
	fullHelp      bool
}

// New builds the initial state. A nil profile leaves no subscription selected.
func New(version string, profile *azure.Profile) *App {
	a := &App{version: version, selected: -1}
	if profile != nil {
		a.subscriptions = append([]azure.Subscription(nil), profile.Subscriptions...)
		a.selected = profile.DefaultIndex()
	}
	return a
}

// ActiveTasks returns the number of running background tasks. It is never negative.
func (a *App) ActiveTasks() int {
	return a.activeTasks
}

// Underflows counts the decrements that were clamped.
func (a *App) Underflows() int {
	return a.underflows
}

func (a *App) Version() string {
	return a.version
}

// Apply adds the delta to its counter. A decrement below zero is clamped and
// reported with ErrNegativeTaskCount; the state stays usable either way.
func (a *App) Apply(delta event.StateDelta) error {
	switch delta.Counter {
	case event.CounterActiveTasks:
		next := a.activeTasks + delta.Delta
		if next < 0 {
			before := a.activeTasks
			a.activeTasks = 0
			a.underflows++
			return fmt.Errorf("%w: %d%+d", ErrNegativeTaskCount, before, delta.Delta)
		}
		a.activeTasks = next
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCounter, delta.Counter)
	}
}

// Subscription returns the selected subscription.
func (a *App) Subscription() (azure.Subscription, bool) {
	if a.selected < 0 || a.selected >= len(a.subscriptions) {
		return azure.Subscription{}, false
	}
	return a.subscriptions[a.selected], true
}

// SubscriptionCount returns how many subscriptions can be selected.
func (a *App) SubscriptionCount() int {
	return len(a.subscriptions)
}

// CycleSubscription moves the selection by step, wrapping at both ends.
// It reports whether the selection changed.
func (a *App) CycleSubscription(step int) bool {
	n := len(a.subscriptions)
	if n == 0 || step == 0 {
		return false
	}
	old := a.selected
	if a.selected < 0 {
		a.selected = 0
		if step < 0 {
			a.selected = n - 1
		}
	} else {
		a.selected = ((a.selected+step)%n + n) % n
	}
	return a.selected != old
}

// FullHelp reports whether the expanded key help is shown.
func (a *App) FullHelp() bool {
	return a.fullHelp
}

// ToggleFullHelp flips between the short and the expanded key help.
func (a *App) ToggleFullHelp() {
	a.fullHelp = !a.fullHelp
}
