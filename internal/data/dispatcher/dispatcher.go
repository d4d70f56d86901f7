package dispatcher

import (
	"errors"

	"github.com/charmbracelet/bubbles/key"

	"github.com/azkv-tui/azkv/internal/event"
	"github.com/azkv-tui/azkv/internal/input"
	"github.com/azkv-tui/azkv/internal/logging"
	"github.com/azkv-tui/azkv/internal/logging/events"
	"github.com/azkv-tui/azkv/internal/state"
)

const (
	ReasonKey        = "key"
	ReasonTerminate  = "terminate"
	ReasonNoProducer = "messages closed"
)

// Result tells the UI loop what a message did. Err is the state error a
// StateDelta caused, if any; the loop keeps running either way.
type Result struct {
	Quit       bool
	QuitReason string
	Err        error
}

// Dispatcher applies channel messages to the application state. It is only
// ever called from the UI loop.
type Dispatcher struct {
	app  *state.App
	keys input.KeyMap
}

func New(app *state.App, keys input.KeyMap) *Dispatcher {
	return &Dispatcher{app: app, keys: keys}
}

func (d *Dispatcher) Handle(msg event.Message) Result {
	var res Result
	switch msg := msg.(type) {
	case event.StateDelta:
		before := d.app.ActiveTasks()
		err := d.app.Apply(msg)
		switch {
		case errors.Is(err, state.ErrNegativeTaskCount):
			events.State.Underflow(string(msg.Counter), msg.Delta, before)
			logging.Error(err)
		case err != nil:
			logging.Error(err)
		default:
			events.State.Delta(string(msg.Counter), msg.Delta, d.app.ActiveTasks())
		}
		res.Err = err
	case event.UserInteraction:
		res = d.interact(msg.Event)
	case event.Terminate:
		res.Quit = true
		res.QuitReason = ReasonTerminate
	}
	return res
}

func (d *Dispatcher) interact(ev event.RawEvent) Result {
	var res Result
	events.UI.Interaction(ev.String())
	switch {
	case key.Matches(ev, d.keys.Quit):
		res.Quit = true
		res.QuitReason = ReasonKey
	case key.Matches(ev, d.keys.Help):
		d.app.ToggleFullHelp()
	case key.Matches(ev, d.keys.NextSubscription):
		d.cycle(1)
	case key.Matches(ev, d.keys.PrevSubscription):
		d.cycle(-1)
	}
	return res
}

func (d *Dispatcher) cycle(step int) {
	if !d.app.CycleSubscription(step) {
		return
	}
	if sub, ok := d.app.Subscription(); ok {
		events.State.Subscription(sub.ID)
	}
}
