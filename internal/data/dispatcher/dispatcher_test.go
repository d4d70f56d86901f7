package dispatcher

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/azkv-tui/azkv/internal/azure"
	"github.com/azkv-tui/azkv/internal/event"
	"github.com/azkv-tui/azkv/internal/input"
	"github.com/azkv-tui/azkv/internal/logging"
	"github.com/azkv-tui/azkv/internal/state"
)

func newDispatcher(t *testing.T, profile *azure.Profile) (*Dispatcher, *state.App) {
	t.Helper()
	logging.Configure(filepath.Join(t.TempDir(), "azkv.log"))
	t.Cleanup(func() { logging.Configure("") })
	app := state.New("test", profile)
	return New(app, input.DefaultKeyMap()), app
}

func TestHandleAppliesDeltas(t *testing.T) {
	d, app := newDispatcher(t, nil)
	res := d.Handle(event.Started())
	if res.Err != nil || res.Quit {
		t.Fatalf("unexpected result %#v", res)
	}
	d.Handle(event.Started())
	d.Handle(event.Finished())
	if got := app.ActiveTasks(); got != 1 {
		t.Fatalf("expected 1 active task, got %d", got)
	}
}

func TestHandleClampsUnderflow(t *testing.T) {
	d, app := newDispatcher(t, nil)
	res := d.Handle(event.Finished())
	if !errors.Is(res.Err, state.ErrNegativeTaskCount) {
		t.Fatalf("expected underflow error, got %v", res.Err)
	}
	if res.Quit {
		t.Fatalf("underflow must not end the loop")
	}
	if app.ActiveTasks() != 0 || app.Underflows() != 1 {
		t.Fatalf("expected clamp to zero with one anomaly, got %d/%d", app.ActiveTasks(), app.Underflows())
	}
}

func TestHandleUnknownCounter(t *testing.T) {
	d, app := newDispatcher(t, nil)
	res := d.Handle(event.StateDelta{Counter: "vaults", Delta: 1})
	if !errors.Is(res.Err, state.ErrUnknownCounter) || res.Quit {
		t.Fatalf("unexpected result %#v", res)
	}
	if app.ActiveTasks() != 0 {
		t.Fatalf("unknown counter must not touch active tasks")
	}
}

func TestHandleTerminateQuits(t *testing.T) {
	d, _ := newDispatcher(t, nil)
	d.Handle(event.Started())
	res := d.Handle(event.Terminate{})
	if !res.Quit || res.QuitReason != ReasonTerminate {
		t.Fatalf("expected terminate quit, got %#v", res)
	}
}

func TestHandleInteractions(t *testing.T) {
	profile := &azure.Profile{Subscriptions: []azure.Subscription{
		{ID: "a", Name: "dev"},
		{ID: "b", Name: "prod", IsDefault: true},
	}}
	d, app := newDispatcher(t, profile)

	if res := d.Handle(event.UserInteraction{Event: event.Key("x")}); res != (Result{}) {
		t.Fatalf("expected no-op for unbound key, got %#v", res)
	}

	d.Handle(event.UserInteraction{Event: event.Key("?")})
	if !app.FullHelp() {
		t.Fatalf("expected full help after ?")
	}

	d.Handle(event.UserInteraction{Event: event.Key("tab")})
	if sub, _ := app.Subscription(); sub.ID != "a" {
		t.Fatalf("expected tab to wrap to first subscription, got %q", sub.ID)
	}
	d.Handle(event.UserInteraction{Event: event.Key("shift+tab")})
	if sub, _ := app.Subscription(); sub.ID != "b" {
		t.Fatalf("expected shift+tab to go back, got %q", sub.ID)
	}

	res := d.Handle(event.UserInteraction{Event: event.Key("q")})
	if !res.Quit || res.QuitReason != ReasonKey {
		t.Fatalf("expected quit on q, got %#v", res)
	}
}
