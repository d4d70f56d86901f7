// Package event defines the values exchanged between the input reader, the
// background manager and the UI state owner, and the queue that carries them.
package event

import "fmt"

// Message is delivered to the state owner. The set of implementations is closed.
type Message interface {
	isMessage()
}

// UserInteraction forwards a terminal event the input reader did not consume.
type UserInteraction struct {
	Event RawEvent
}

// StateDelta asks the state owner to adjust a counter by Delta.
type StateDelta struct {
	Counter Counter
	Delta   int
}

// Terminate asks the state owner to end its loop.
type Terminate struct{}

func (UserInteraction) isMessage() {}
func (StateDelta) isMessage()      {}
func (Terminate) isMessage()       {}

// Counter names a numeric field of the application state.
type Counter string

const (
	CounterActiveTasks Counter = "active_tasks"
)

// Started and Finished build the lifecycle deltas a task unit reports.
func Started() StateDelta  { return StateDelta{Counter: CounterActiveTasks, Delta: 1} }
func Finished() StateDelta { return StateDelta{Counter: CounterActiveTasks, Delta: -1} }

// TaskKind identifies a background operation.
type TaskKind int

const (
	TaskDemo TaskKind = iota
)

func (k TaskKind) String() string {
	switch k {
	case TaskDemo:
		return "demo"
	default:
		return fmt.Sprintf("task(%d)", int(k))
	}
}

// TaskRequest asks the background manager to spawn one task unit. Results are
// reported through the message queue, never back to the requester.
type TaskRequest struct {
	Kind TaskKind
}

// Kind classifies a RawEvent.
type Kind int

const (
	KindUnknown Kind = iota
	KindKey
)

// RawEvent is a decoded terminal event. Name follows the bubbletea key naming
// ("q", "ctrl+c", "shift+tab", "up") so key bindings can match it directly.
type RawEvent struct {
	Kind  Kind
	Name  string
	Bytes []byte
}

// Key builds a key event with the given name.
func Key(name string) RawEvent {
	return RawEvent{Kind: KindKey, Name: name, Bytes: []byte(name)}
}

func (e RawEvent) String() string {
	if e.Kind == KindUnknown && e.Name == "" {
		return fmt.Sprintf("unknown(%q)", e.Bytes)
	}
	return e.Name
}
