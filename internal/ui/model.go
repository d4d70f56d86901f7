package ui

import (
	"reflect"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/azkv-tui/azkv/internal/data/dispatcher"
	"github.com/azkv-tui/azkv/internal/event"
	"github.com/azkv-tui/azkv/internal/input"
	"github.com/azkv-tui/azkv/internal/logging/events"
	"github.com/azkv-tui/azkv/internal/state"
	"github.com/azkv-tui/azkv/internal/theme"
)

var styles = theme.Default()

type msgHandler func(tea.Msg) tea.Cmd

// Model implements the Bubble Tea model for the key vault browser. It is the
// sole owner of the application state.
type Model struct {
	app        *state.App
	keys       input.KeyMap
	help       help.Model
	dispatcher *dispatcher.Dispatcher
	messages   *event.Receiver[event.Message]

	width      int
	height     int
	quitting   bool
	quitReason string
	lastErr    error

	handlers map[reflect.Type]msgHandler
}

// NewModel wires the model to its state and to the receiving end of the
// message channel. A nil receiver leaves the model driven by Update alone.
func NewModel(app *state.App, keys input.KeyMap, messages *event.Receiver[event.Message]) *Model {
	m := &Model{
		app:        app,
		keys:       keys,
		help:       help.New(),
		dispatcher: dispatcher.New(app, keys),
		messages:   messages,
	}
	m.registerHandlers()
	return m
}

// Init is part of the tea.Model interface.
func (m *Model) Init() tea.Cmd {
	if m.messages == nil {
		return nil
	}
	return waitForMessage(m.messages)
}

// Update responds to Bubble Tea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if handler := m.handlerFor(msg); handler != nil {
		return m, handler(msg)
	}
	return m, nil
}

func (m *Model) registerHandlers() {
	m.handlers = map[reflect.Type]msgHandler{
		reflect.TypeOf(tea.WindowSizeMsg{}): m.handleWindowSizeMsg,
		reflect.TypeOf(channelMsg{}):        m.handleChannelMsg,
		reflect.TypeOf(messagesClosedMsg{}): m.handleMessagesClosedMsg,
	}
}

func (m *Model) handlerFor(msg tea.Msg) msgHandler {
	if msg == nil || m.handlers == nil {
		return nil
	}
	t := reflect.TypeOf(msg)
	if handler, ok := m.handlers[t]; ok {
		return handler
	}
	if t.Kind() == reflect.Ptr {
		if handler, ok := m.handlers[t.Elem()]; ok {
			return handler
		}
	}
	return nil
}

func (m *Model) handleWindowSizeMsg(msg tea.Msg) tea.Cmd {
	resize, ok := msg.(tea.WindowSizeMsg)
	if !ok {
		return nil
	}
	m.width = resize.Width
	m.height = resize.Height
	m.help.Width = resize.Width
	events.UI.Resize(resize.Width, resize.Height)
	return nil
}

// State exposes the application state for inspection after the program ends.
func (m *Model) State() *state.App {
	return m.app
}

// QuitReason reports why the loop ended, or "" while it is running.
func (m *Model) QuitReason() string {
	return m.quitReason
}
