// Package input turns the terminal's key stream into messages for the UI and
// task requests for the background manager.
package input

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"

	"github.com/azkv-tui/azkv/internal/event"
	"github.com/azkv-tui/azkv/internal/logging/events"
)

var (
	// ErrReadFailed wraps a terminal read failure. The terminal is unusable
	// afterwards, so callers end the process.
	ErrReadFailed = errors.New("read terminal event")
	// ErrTasksClosed reports that the background manager stopped accepting
	// requests while the reader was still running.
	ErrTasksClosed = errors.New("task requests closed")
)

// Reader blocks on a Source and routes each event.
type Reader struct {
	source Source
	keys   KeyMap
}

// NewReader builds a reader for source using keys to recognise quit and launch.
func NewReader(source Source, keys KeyMap) *Reader {
	return &Reader{source: source, keys: keys}
}

// Run reads until the quit key, until the UI stops receiving, or until the
// source fails. It owns both sender handles and releases them on return.
//
// Quit sends Terminate and returns nil. The launch key sends a TaskRequest;
// if the manager is gone Run returns ErrTasksClosed. Every other event is
// forwarded as UserInteraction, and a closed UI ends Run silently. A read
// error is returned wrapped in ErrReadFailed.
func (r *Reader) Run(ctx context.Context, msgs *event.Sender[event.Message], tasks *event.Sender[event.TaskRequest]) error {
	defer msgs.Close()
	defer tasks.Close()

	for {
		ev, err := r.source.ReadEvent()
		if err != nil {
			if errors.Is(err, ErrSourceClosed) {
				events.Input.Stop("source closed")
				return nil
			}
			return fmt.Errorf("%w: %w", ErrReadFailed, err)
		}

		switch {
		case key.Matches(ev, r.keys.Quit):
			events.Input.Quit(ev.String())
			// The UI may already be gone; either way the reader is done.
			_ = msgs.Send(ctx, event.Terminate{})
			return nil
		case key.Matches(ev, r.keys.Launch):
			req := event.TaskRequest{Kind: event.TaskDemo}
			events.Input.Launch(ev.String(), req.Kind.String())
			if err := tasks.Send(ctx, req); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("%w: %w", ErrTasksClosed, err)
			}
		default:
			events.Input.Forward(ev.String())
			if err := msgs.Send(ctx, event.UserInteraction{Event: ev}); err != nil {
				events.Input.Stop("ui closed")
				return nil
			}
		}
	}
}
