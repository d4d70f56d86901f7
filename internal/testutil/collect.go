package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/azkv-tui/azkv/internal/event"
)

// Drain receives until the stream ends and fails the test if that takes
// longer than timeout.
func Drain[T any](t testing.TB, rx *event.Receiver[T], timeout time.Duration) []T {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	var out []T
	for {
		v, ok := rx.Recv(ctx)
		if !ok {
			if ctx.Err() != nil {
				t.Fatalf("stream still open after %s (received %d values)", timeout, len(out))
			}
			return out
		}
		out = append(out, v)
	}
}

// Deltas sums the StateDelta messages in msgs per sign.
func Deltas(msgs []event.Message) (increments, decrements int) {
	for _, msg := range msgs {
		delta, ok := msg.(event.StateDelta)
		if !ok {
			continue
		}
		switch {
		case delta.Delta > 0:
			increments += delta.Delta
		case delta.Delta < 0:
			decrements -= delta.Delta
		}
	}
	return increments, decrements
}

// Count returns how many messages have the same dynamic type as want.
func Count[M event.Message](msgs []event.Message) int {
	n := 0
	for _, msg := range msgs {
		if _, ok := msg.(M); ok {
			n++
		}
	}
	return n
}

// WaitFor polls cond until it holds or timeout expires.
func WaitFor(t testing.TB, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met within %s", timeout)
		}
		time.Sleep(2 * time.Millisecond)
	}
}
