package input

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/muesli/cancelreader"
	"golang.org/x/term"

	"github.com/azkv-tui/azkv/internal/event"
)

var (
	// ErrSourceClosed is returned by a Source whose Close was called; the
	// reader treats it as a clean stop.
	ErrSourceClosed = errors.New("input source closed")
	// ErrNotTerminal is returned when stdin is not an interactive terminal.
	ErrNotTerminal = errors.New("input is not a terminal")
)

// Source yields terminal events. ReadEvent blocks until one is available.
type Source interface {
	ReadEvent() (event.RawEvent, error)
}

// TerminalSource streams key presses decoded by ultraviolet. Escape sequences
// split across reads are reassembled; a lone ESC is reported once the escape
// timeout passes.
type TerminalSource struct {
	reader  cancelreader.CancelReader
	restore func() error
	cancel  context.CancelFunc

	events chan uv.Event
	done   chan struct{}
	err    error

	closeOnce sync.Once
	closeErr  error
}

// OpenTerminal switches f into raw mode and starts decoding its input. Close
// restores the terminal.
func OpenTerminal(f *os.File) (*TerminalSource, error) {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return nil, ErrNotTerminal
	}
	st, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("enable raw mode: %w", err)
	}
	restore := func() error { return term.Restore(fd, st) }
	src, err := newTerminalSource(f, os.Getenv("TERM"), uv.DefaultEscTimeout, restore)
	if err != nil {
		_ = restore()
		return nil, err
	}
	return src, nil
}

func newTerminalSource(f *os.File, termType string, escTimeout time.Duration, restore func() error) (*TerminalSource, error) {
	cr, err := uv.NewCancelReader(f)
	if err != nil {
		return nil, fmt.Errorf("open input reader: %w", err)
	}
	tr := uv.NewTerminalReader(cr, termType)
	tr.EscTimeout = escTimeout

	ctx, cancel := context.WithCancel(context.Background())
	s := &TerminalSource{
		reader:  cr,
		restore: restore,
		cancel:  cancel,
		events:  make(chan uv.Event),
		done:    make(chan struct{}),
	}
	go func() {
		defer close(s.done)
		s.err = tr.StreamEvents(ctx, s.events)
	}()
	return s, nil
}

// ReadEvent implements Source. Key releases are skipped.
func (s *TerminalSource) ReadEvent() (event.RawEvent, error) {
	for {
		select {
		case ev := <-s.events:
			if raw, ok := toRawEvent(ev); ok {
				return raw, nil
			}
		case <-s.done:
			if s.err != nil {
				return event.RawEvent{}, s.err
			}
			return event.RawEvent{}, ErrSourceClosed
		}
	}
}

// Close unblocks a pending ReadEvent and restores the terminal mode.
func (s *TerminalSource) Close() error {
	s.closeOnce.Do(func() {
		s.cancel()
		s.reader.Cancel()
		// The stream flushes buffered input on the way out.
		go func() {
			for {
				select {
				case <-s.events:
				case <-s.done:
					return
				}
			}
		}()
		if s.restore != nil {
			if err := s.restore(); err != nil {
				s.closeErr = fmt.Errorf("restore terminal: %w", err)
			}
		}
	})
	return s.closeErr
}

func toRawEvent(ev uv.Event) (event.RawEvent, bool) {
	switch ev := ev.(type) {
	case uv.KeyPressEvent:
		return event.Key(ev.String()), true
	case uv.KeyReleaseEvent:
		return event.RawEvent{}, false
	case uv.UnknownEvent:
		return event.RawEvent{Kind: event.KindUnknown, Bytes: []byte(ev)}, true
	case fmt.Stringer:
		return event.RawEvent{Kind: event.KindUnknown, Name: ev.String()}, true
	default:
		return event.RawEvent{Kind: event.KindUnknown, Name: fmt.Sprintf("%T", ev)}, true
	}
}
