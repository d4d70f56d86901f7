package event

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrClosed is returned by Send once the receiver has gone away. It is the
	// normal tail of shutdown and callers are expected to swallow it.
	ErrClosed = errors.New("event: receiver closed")
	// ErrSenderClosed is returned by Send on a handle that was already released.
	ErrSenderClosed = errors.New("event: sender released")
)

// DefaultCapacity is the buffer size used when a caller has no preference.
const DefaultCapacity = 10

type channel[T any] struct {
	items chan T
	done  chan struct{}
	once  sync.Once

	mu      sync.Mutex
	senders int
}

func (c *channel[T]) acquire() {
	c.mu.Lock()
	c.senders++
	c.mu.Unlock()
}

func (c *channel[T]) release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.senders--
	if c.senders == 0 {
		close(c.items)
	}
}

// NewChannel returns a bounded multi-producer, single-consumer channel. The
// items channel is closed once every Sender handle has been released, which the
// receiver observes as the end of the stream.
func NewChannel[T any](capacity int) (*Sender[T], *Receiver[T]) {
	if capacity < 0 {
		capacity = 0
	}
	c := &channel[T]{
		items:   make(chan T, capacity),
		done:    make(chan struct{}),
		senders: 1,
	}
	return &Sender[T]{ch: c}, &Receiver[T]{ch: c}
}

// Sender is one producer handle. Handles are cheap to Clone and each one must
// be closed exactly once; extra Close calls are ignored.
type Sender[T any] struct {
	ch *channel[T]

	mu     sync.RWMutex
	closed bool
}

// Clone returns a new handle that keeps the channel open independently of s.
// Cloning a released handle yields another released handle.
func (s *Sender[T]) Clone() *Sender[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return &Sender[T]{ch: s.ch, closed: true}
	}
	s.ch.acquire()
	return &Sender[T]{ch: s.ch}
}

// Send blocks until v is buffered, the receiver closes or ctx is done.
func (s *Sender[T]) Send(ctx context.Context, v T) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrSenderClosed
	}
	select {
	case <-s.ch.done:
		return ErrClosed
	default:
	}
	select {
	case s.ch.items <- v:
		return nil
	case <-s.ch.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close releases the handle. Close waits for in-flight sends on this handle.
func (s *Sender[T]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.ch.release()
}

// Receiver is the single consumer side of a channel.
type Receiver[T any] struct {
	ch *channel[T]
}

// Recv returns the next value. ok is false once every sender is released and
// the buffer is empty, after Close, or when ctx is done.
func (r *Receiver[T]) Recv(ctx context.Context) (v T, ok bool) {
	select {
	case <-r.ch.done:
		return v, false
	default:
	}
	select {
	case item, open := <-r.ch.items:
		if !open {
			return v, false
		}
		return item, true
	case <-r.ch.done:
		return v, false
	case <-ctx.Done():
		return v, false
	}
}

// Close marks the receiver as gone. Pending and future sends fail with
// ErrClosed and anything still buffered is discarded.
func (r *Receiver[T]) Close() {
	r.ch.once.Do(func() { close(r.ch.done) })
}

// Closed reports whether Close has been called.
func (r *Receiver[T]) Closed() bool {
	select {
	case <-r.ch.done:
		return true
	default:
		return false
	}
}
