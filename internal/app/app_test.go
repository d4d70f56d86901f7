package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azkv-tui/azkv/internal/background"
	"github.com/azkv-tui/azkv/internal/data/dispatcher"
	"github.com/azkv-tui/azkv/internal/event"
	"github.com/azkv-tui/azkv/internal/input"
	"github.com/azkv-tui/azkv/internal/logging"
	"github.com/azkv-tui/azkv/internal/testutil"
)

func testConfig(d time.Duration) Config {
	return Config{
		TaskDuration: d,
		QueueSize:    10,
		QuitKeys:     []string{"q", "ctrl+c"},
		LaunchKeys:   []string{"t"},
		Version:      "test",
	}
}

type result struct {
	report Report
	err    error
}

func runHeadless(t *testing.T, cfg Config, tasks background.Tasks, src *testutil.ScriptedSource) result {
	t.Helper()
	logging.Configure(filepath.Join(t.TempDir(), "azkv.log"))
	t.Cleanup(func() { logging.Configure("") })

	done := make(chan result, 1)
	go func() {
		report, err := run(context.Background(), cfg, nil, tasks, src,
			tea.WithOutput(io.Discard),
			tea.WithoutRenderer(),
			tea.WithoutSignalHandler(),
		)
		done <- result{report: report, err: err}
	}()
	select {
	case res := <-done:
		return res
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return")
		return result{}
	}
}

// gatedTasks counts the units that reached their work and holds them there
// until release is closed.
func gatedTasks(started *atomic.Int32, release <-chan struct{}) background.Tasks {
	return background.Tasks{
		event.TaskDemo: func(ctx context.Context) error {
			started.Add(1)
			<-release
			return nil
		},
	}
}

func TestRunDrainsTasksAfterQuit(t *testing.T) {
	var started atomic.Int32
	release := make(chan struct{})
	src := testutil.NewScriptedSource(testutil.Keys("t", "x", "t", "t")...)
	go func() {
		// A unit reports its increment before its work starts, so once three
		// units are working the increments are queued ahead of the quit key.
		for started.Load() < 3 {
			time.Sleep(2 * time.Millisecond)
		}
		src.Push(event.Key("q"))
		<-src.Done()
		close(release)
	}()

	res := runHeadless(t, testConfig(time.Minute), gatedTasks(&started, release), src)

	require.NoError(t, res.err)
	assert.Equal(t, dispatcher.ReasonTerminate, res.report.QuitReason)
	assert.Equal(t, 3, res.report.ActiveTasksAtExit)
	assert.Equal(t, 3, res.report.Tasks.Spawned)
	assert.Equal(t, 3, res.report.Tasks.Drained)
	assert.Zero(t, res.report.Tasks.Failed)
}

func TestRunEndsWhenInputCloses(t *testing.T) {
	src := testutil.NewScriptedSource(testutil.Keys("t", "t", "t")...)
	cfg := testConfig(300 * time.Millisecond)

	logging.Configure(filepath.Join(t.TempDir(), "azkv.log"))
	t.Cleanup(func() { logging.Configure("") })

	done := make(chan result, 1)
	start := time.Now()
	go func() {
		report, err := run(context.Background(), cfg, nil, background.DefaultTasks(cfg.TaskDuration), src,
			tea.WithOutput(io.Discard),
			tea.WithoutRenderer(),
			tea.WithoutSignalHandler(),
		)
		done <- result{report: report, err: err}
	}()

	testutil.WaitFor(t, time.Second, func() bool { return src.Remaining() == 0 })
	require.NoError(t, src.Close())

	var res result
	select {
	case res = <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return")
	}
	require.NoError(t, res.err)
	// Without a quit key the UI only stops once the tasks have released
	// their senders, so every task ran to completion first.
	assert.Equal(t, dispatcher.ReasonNoProducer, res.report.QuitReason)
	assert.Zero(t, res.report.ActiveTasksAtExit)
	assert.Equal(t, 3, res.report.Tasks.Drained)
	assert.GreaterOrEqual(t, time.Since(start), 300*time.Millisecond)
}

func TestRunReturnsReaderFailure(t *testing.T) {
	broken := errors.New("tty vanished")
	src := testutil.NewScriptedSource(testutil.Keys("t")...).FailAfterScript(broken)
	cfg := testConfig(10 * time.Millisecond)
	res := runHeadless(t, cfg, background.DefaultTasks(cfg.TaskDuration), src)

	require.Error(t, res.err)
	assert.ErrorIs(t, res.err, input.ErrReadFailed)
	assert.ErrorIs(t, res.err, broken)
}

func TestReaderFatal(t *testing.T) {
	logging.Configure(filepath.Join(t.TempDir(), "azkv.log"))
	t.Cleanup(func() { logging.Configure("") })

	assert.False(t, readerFatal(nil))
	assert.False(t, readerFatal(fmt.Errorf("%w: %w", input.ErrTasksClosed, event.ErrClosed)),
		"a closed task queue leaves the UI running")
	assert.True(t, readerFatal(fmt.Errorf("%w: %w", input.ErrReadFailed, errors.New("tty gone"))))
}

func TestLoadProfileFallsBackToNone(t *testing.T) {
	logging.Configure(filepath.Join(t.TempDir(), "azkv.log"))
	t.Cleanup(func() { logging.Configure("") })

	assert.Nil(t, loadProfile(filepath.Join(t.TempDir(), "missing.json")))
}

func TestLoadProfileReadsSubscriptions(t *testing.T) {
	logging.Configure(filepath.Join(t.TempDir(), "azkv.log"))
	t.Cleanup(func() { logging.Configure("") })

	path := filepath.Join(t.TempDir(), "azureProfile.json")
	body := `{"subscriptions":[{"id":"sub-1","name":"Dev","isDefault":false},{"id":"sub-2","name":"Prod","isDefault":true}]}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	profile := loadProfile(path)
	require.NotNil(t, profile)
	sub, ok := profile.Default()
	require.True(t, ok)
	assert.Equal(t, "sub-2", sub.ID)
}
