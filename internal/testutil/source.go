// Package testutil provides fakes shared by the package tests: a scripted
// terminal source and helpers that drain event channels with a deadline.
package testutil

import (
	"sync"

	"github.com/azkv-tui/azkv/internal/event"
	"github.com/azkv-tui/azkv/internal/input"
)

// ScriptedSource replays a list of events. Once the script is used up it
// returns the configured failure, or blocks like a quiet terminal until Push
// adds more events or Close is called.
type ScriptedSource struct {
	mu     sync.Mutex
	script []event.RawEvent
	fail   error
	reads  int

	more      chan struct{}
	closed    chan struct{}
	closeOnce sync.Once
}

// NewScriptedSource returns a source that yields evs in order.
func NewScriptedSource(evs ...event.RawEvent) *ScriptedSource {
	return &ScriptedSource{
		script: append([]event.RawEvent(nil), evs...),
		more:   make(chan struct{}, 1),
		closed: make(chan struct{}),
	}
}

// Keys builds key events from bubbletea key names.
func Keys(names ...string) []event.RawEvent {
	out := make([]event.RawEvent, len(names))
	for i, name := range names {
		out[i] = event.Key(name)
	}
	return out
}

// FailAfterScript makes ReadEvent return err once the script is exhausted.
func (s *ScriptedSource) FailAfterScript(err error) *ScriptedSource {
	s.mu.Lock()
	s.fail = err
	s.mu.Unlock()
	return s
}

// ReadEvent implements input.Source.
func (s *ScriptedSource) ReadEvent() (event.RawEvent, error) {
	for {
		s.mu.Lock()
		if len(s.script) > 0 {
			ev := s.script[0]
			s.script = s.script[1:]
			s.reads++
			s.mu.Unlock()
			return ev, nil
		}
		fail := s.fail
		s.mu.Unlock()
		if fail != nil {
			return event.RawEvent{}, fail
		}
		select {
		case <-s.more:
		case <-s.closed:
			return event.RawEvent{}, input.ErrSourceClosed
		}
	}
}

// Push appends evs to the script and wakes a waiting ReadEvent.
func (s *ScriptedSource) Push(evs ...event.RawEvent) {
	s.mu.Lock()
	s.script = append(s.script, evs...)
	s.mu.Unlock()
	select {
	case s.more <- struct{}{}:
	default:
	}
}

// Close unblocks a ReadEvent waiting past the end of the script.
func (s *ScriptedSource) Close() error {
	s.closeOnce.Do(func() { close(s.closed) })
	return nil
}

// Done is closed once Close has been called.
func (s *ScriptedSource) Done() <-chan struct{} {
	return s.closed
}

// Reads returns how many scripted events were handed out.
func (s *ScriptedSource) Reads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}

// Remaining returns how many scripted events were never read.
func (s *ScriptedSource) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.script)
}
