package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/azkv-tui/azkv/internal/azure"
	"github.com/azkv-tui/azkv/internal/background"
	"github.com/azkv-tui/azkv/internal/event"
	"github.com/azkv-tui/azkv/internal/input"
	"github.com/azkv-tui/azkv/internal/logging"
	"github.com/azkv-tui/azkv/internal/logging/events"
	"github.com/azkv-tui/azkv/internal/state"
	"github.com/azkv-tui/azkv/internal/ui"
)

// Config describes user-provided application options.
type Config struct {
	ProfilePath  string
	TaskDuration time.Duration
	QueueSize    int
	QuitKeys     []string
	LaunchKeys   []string
	Version      string
}

// Report describes how a session ended.
type Report struct {
	QuitReason        string
	ActiveTasksAtExit int
	Tasks             background.Stats
}

// terminal is an input source that can be shut down from another goroutine.
type terminal interface {
	input.Source
	io.Closer
}

// Run bootstraps and executes the Bubble Tea program on the controlling
// terminal, then waits for every background task to finish.
func Run(cfg Config) error {
	src, err := input.OpenTerminal(os.Stdin)
	if err != nil {
		return fmt.Errorf("open terminal: %w", err)
	}
	tasks := background.DefaultTasks(cfg.TaskDuration)
	report, err := run(context.Background(), cfg, loadProfile(cfg.ProfilePath), tasks, src, tea.WithAltScreen())
	if err != nil {
		return err
	}
	if report.Tasks.Failed > 0 {
		logging.Errorf("%d of %d background tasks failed", report.Tasks.Failed, report.Tasks.Spawned)
	}
	return nil
}

func loadProfile(path string) *azure.Profile {
	profile, err := azure.LoadProfile(path)
	if err != nil {
		logging.Error(fmt.Errorf("load azure profile: %w", err))
		return nil
	}
	defaultID := ""
	if sub, ok := profile.Default(); ok {
		defaultID = sub.ID
	}
	events.App.Profile(path, len(profile.Subscriptions), defaultID)
	return profile
}

// run wires the reader, the background manager and the UI together and
// performs the shutdown sequence once the UI loop ends: stop accepting
// messages, stop the reader, then drain the outstanding tasks. A failing
// terminal kills the UI and is returned without waiting for the drain.
func run(ctx context.Context, cfg Config, profile *azure.Profile, tasks background.Tasks, src terminal, opts ...tea.ProgramOption) (Report, error) {
	var report Report
	keys := input.NewKeyMap(cfg.QuitKeys, cfg.LaunchKeys)

	msgTx, msgRx := event.NewChannel[event.Message](cfg.QueueSize)
	reqTx, reqRx := event.NewChannel[event.TaskRequest](cfg.QueueSize)

	model := ui.NewModel(state.New(cfg.Version, profile), keys, msgRx)
	programOpts := append([]tea.ProgramOption{tea.WithInput(nil), tea.WithContext(ctx)}, opts...)
	program := tea.NewProgram(model, programOpts...)

	manager := background.NewManager(tasks)
	go manager.Run(ctx, reqRx, msgTx.Clone())

	var readErr error
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		err := input.NewReader(src, keys).Run(ctx, msgTx, reqTx)
		if !readerFatal(err) {
			return
		}
		readErr = err
		events.App.Fatal(err)
		program.Kill()
	}()

	_, runErr := program.Run()

	msgRx.Close()
	if err := src.Close(); err != nil {
		logging.Error(fmt.Errorf("close terminal: %w", err))
	}
	<-readerDone
	if readErr != nil {
		return report, readErr
	}
	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return report, fmt.Errorf("run ui: %w", runErr)
	}

	report.QuitReason = model.QuitReason()
	report.ActiveTasksAtExit = model.State().ActiveTasks()
	events.App.UIStopped(report.ActiveTasksAtExit)

	manager.Wait()
	report.Tasks = manager.Stats()
	events.App.Drained(report.Tasks.Spawned, report.Tasks.Failed)
	return report, nil
}

// readerFatal reports whether a reader error must end the process. Losing the
// task queue only disables launching; the UI keeps running until its
// producers are gone.
func readerFatal(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, input.ErrTasksClosed) {
		logging.Error(err)
		events.Input.Stop("task requests closed")
		return false
	}
	return true
}
