package input

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// KeyMap holds every binding the application recognises. The reader consumes
// Quit and Launch itself; the rest reach the UI as user interactions.
type KeyMap struct {
	Quit             key.Binding
	Launch           key.Binding
	Help             key.Binding
	NextSubscription key.Binding
	PrevSubscription key.Binding
}

// DefaultKeyMap returns the stock bindings.
func DefaultKeyMap() KeyMap {
	return NewKeyMap([]string{"q", "ctrl+c"}, []string{"t"})
}

// NewKeyMap builds a key map with custom quit and launch keys.
func NewKeyMap(quit, launch []string) KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys(quit...),
			key.WithHelp(helpKeys(quit), "quit"),
		),
		Launch: key.NewBinding(
			key.WithKeys(launch...),
			key.WithHelp(helpKeys(launch), "run demo task"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		NextSubscription: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next subscription"),
		),
		PrevSubscription: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous subscription"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Launch, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Launch, k.Quit},
		{k.NextSubscription, k.PrevSubscription, k.Help},
	}
}

func helpKeys(keys []string) string {
	return strings.Join(keys, "/")
}
