package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/azkv-tui/azkv/internal/data/dispatcher"
	"github.com/azkv-tui/azkv/internal/event"
	"github.com/azkv-tui/azkv/internal/logging/events"
)

// waitForMessage receives the next channel message. It returns
// messagesClosedMsg once every producer is gone or the receiver was closed.
func waitForMessage(rx *event.Receiver[event.Message]) tea.Cmd {
	return func() tea.Msg {
		msg, ok := rx.Recv(context.Background())
		if !ok {
			return messagesClosedMsg{}
		}
		return channelMsg{msg: msg}
	}
}

type channelMsg struct {
	msg event.Message
}

type messagesClosedMsg struct{}

func (m *Model) handleChannelMsg(msg tea.Msg) tea.Cmd {
	wrapped, ok := msg.(channelMsg)
	if !ok {
		return nil
	}
	res := m.dispatcher.Handle(wrapped.msg)
	if res.Err != nil {
		m.lastErr = res.Err
	}
	if res.Quit {
		return m.quit(res.QuitReason)
	}
	if m.messages != nil {
		return waitForMessage(m.messages)
	}
	return nil
}

func (m *Model) handleMessagesClosedMsg(tea.Msg) tea.Cmd {
	m.messages = nil
	return m.quit(dispatcher.ReasonNoProducer)
}

func (m *Model) quit(reason string) tea.Cmd {
	if m.quitting {
		return nil
	}
	m.quitting = true
	m.quitReason = reason
	events.UI.Quit(reason)
	return tea.Quit
}
