package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/azkv-tui/azkv/internal/event"
)

// Harness drives the UI model programmatically for tests. Commands returned
// by the model run synchronously, so a model wired to a channel keeps
// consuming until the channel is empty and closed or the model quits.
type Harness struct {
	model  *Model
	quit   bool
	frames []string
}

// NewHarness creates a harness for the provided model.
func NewHarness(model *Model) *Harness {
	return &Harness{model: model}
}

// Start runs the model's Init command.
func (h *Harness) Start() {
	if h.model == nil {
		return
	}
	h.processCmd(h.model.Init())
}

// Send routes a message through the model and executes any returned commands.
func (h *Harness) Send(msg tea.Msg) {
	if h.model == nil {
		return
	}
	h.update(msg)
}

// Deliver feeds a channel message to the model as if it had been received.
func (h *Harness) Deliver(msgs ...event.Message) {
	for _, msg := range msgs {
		h.Send(channelMsg{msg: msg})
	}
}

func (h *Harness) update(msg tea.Msg) {
	if _, ok := msg.(tea.QuitMsg); ok {
		h.quit = true
		return
	}
	mdl, cmd := h.model.Update(msg)
	if updated, ok := mdl.(*Model); ok {
		h.model = updated
	}
	h.frames = append(h.frames, h.model.View())
	h.processCmd(cmd)
}

func (h *Harness) processCmd(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	if msg := cmd(); msg != nil {
		h.update(msg)
	}
}

// View returns the current view string.
func (h *Harness) View() string {
	if h.model == nil {
		return ""
	}
	return h.model.View()
}

// Frames returns every frame rendered after an update, in order.
func (h *Harness) Frames() []string {
	return h.frames
}

// Quit reports whether the model asked the program to exit.
func (h *Harness) Quit() bool {
	return h.quit
}

// Model exposes the underlying model.
func (h *Harness) Model() *Model {
	return h.model
}
