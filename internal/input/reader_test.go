package input_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azkv-tui/azkv/internal/event"
	"github.com/azkv-tui/azkv/internal/input"
	"github.com/azkv-tui/azkv/internal/testutil"
)

type harness struct {
	msgs  *event.Receiver[event.Message]
	tasks *event.Receiver[event.TaskRequest]
	done  chan error
}

func startReader(t *testing.T, src input.Source, keys input.KeyMap, capacity int) *harness {
	t.Helper()
	msgTx, msgRx := event.NewChannel[event.Message](capacity)
	taskTx, taskRx := event.NewChannel[event.TaskRequest](capacity)
	h := &harness{msgs: msgRx, tasks: taskRx, done: make(chan error, 1)}
	go func() {
		h.done <- input.NewReader(src, keys).Run(context.Background(), msgTx, taskTx)
	}()
	return h
}

func (h *harness) wait(t *testing.T) error {
	t.Helper()
	select {
	case err := <-h.done:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("reader did not stop")
		return nil
	}
}

func TestReaderRoutesEvents(t *testing.T) {
	src := testutil.NewScriptedSource(testutil.Keys("x", "t", "?", "t", "q", "t")...)
	h := startReader(t, src, input.DefaultKeyMap(), 16)

	require.NoError(t, h.wait(t))

	msgs := testutil.Drain(t, h.msgs, time.Second)
	require.Len(t, msgs, 3)
	assert.Equal(t, event.UserInteraction{Event: event.Key("x")}, msgs[0])
	assert.Equal(t, event.UserInteraction{Event: event.Key("?")}, msgs[1])
	assert.Equal(t, event.Terminate{}, msgs[2])

	tasks := testutil.Drain(t, h.tasks, time.Second)
	assert.Equal(t, []event.TaskRequest{{Kind: event.TaskDemo}, {Kind: event.TaskDemo}}, tasks)

	assert.Equal(t, 1, src.Remaining(), "events after quit are never read")
}

func TestReaderSendsTerminateExactlyOnce(t *testing.T) {
	src := testutil.NewScriptedSource(testutil.Keys("ctrl+c", "q", "q")...)
	h := startReader(t, src, input.DefaultKeyMap(), 4)
	require.NoError(t, h.wait(t))

	msgs := testutil.Drain(t, h.msgs, time.Second)
	assert.Equal(t, 1, testutil.Count[event.Terminate](msgs))
	assert.Empty(t, testutil.Drain(t, h.tasks, time.Second))
}

func TestReaderStopsSilentlyWhenUIClosed(t *testing.T) {
	src := testutil.NewScriptedSource(testutil.Keys("a", "b", "c")...)
	msgTx, msgRx := event.NewChannel[event.Message](1)
	taskTx, taskRx := event.NewChannel[event.TaskRequest](1)
	msgRx.Close()

	err := input.NewReader(src, input.DefaultKeyMap()).Run(context.Background(), msgTx, taskTx)
	require.NoError(t, err)
	assert.Equal(t, 1, src.Reads())
	assert.Empty(t, testutil.Drain(t, taskRx, time.Second))
}

func TestReaderFailsWhenTaskRequestsClosed(t *testing.T) {
	src := testutil.NewScriptedSource(testutil.Keys("t", "z")...)
	msgTx, msgRx := event.NewChannel[event.Message](1)
	taskTx, taskRx := event.NewChannel[event.TaskRequest](1)
	taskRx.Close()

	err := input.NewReader(src, input.DefaultKeyMap()).Run(context.Background(), msgTx, taskTx)
	require.ErrorIs(t, err, input.ErrTasksClosed)
	assert.ErrorIs(t, err, event.ErrClosed)
	assert.Equal(t, 1, src.Reads())
	assert.Empty(t, testutil.Drain(t, msgRx, time.Second))
}

func TestReaderReadFailureIsFatal(t *testing.T) {
	broken := errors.New("tty gone")
	src := testutil.NewScriptedSource(testutil.Keys("a")...).FailAfterScript(broken)
	h := startReader(t, src, input.DefaultKeyMap(), 4)

	err := h.wait(t)
	require.ErrorIs(t, err, input.ErrReadFailed)
	assert.ErrorIs(t, err, broken)

	msgs := testutil.Drain(t, h.msgs, time.Second)
	assert.Len(t, msgs, 1, "senders are released on failure so the UI sees end of stream")
}

func TestReaderStopsCleanlyWhenSourceClosed(t *testing.T) {
	src := testutil.NewScriptedSource()
	h := startReader(t, src, input.DefaultKeyMap(), 4)
	require.NoError(t, src.Close())
	require.NoError(t, h.wait(t))
	assert.Empty(t, testutil.Drain(t, h.msgs, time.Second))
}

func TestReaderHonoursCustomKeys(t *testing.T) {
	src := testutil.NewScriptedSource(testutil.Keys("q", "l", "x")...)
	h := startReader(t, src, input.NewKeyMap([]string{"x"}, []string{"l"}), 4)
	require.NoError(t, h.wait(t))

	msgs := testutil.Drain(t, h.msgs, time.Second)
	require.Len(t, msgs, 2)
	assert.Equal(t, event.UserInteraction{Event: event.Key("q")}, msgs[0])
	assert.Equal(t, event.Terminate{}, msgs[1])
	assert.Len(t, testutil.Drain(t, h.tasks, time.Second), 1)
}
