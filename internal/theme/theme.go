package theme

import "github.com/charmbracelet/lipgloss"

// Styles describes reusable Lip Gloss styles shared across the UI.
type Styles struct {
	Label       *lipgloss.Style
	Value       *lipgloss.Style
	Missing     *lipgloss.Style
	Body        *lipgloss.Style
	BodyBorder  *lipgloss.Style
	BodyTitle   *lipgloss.Style
	Placeholder *lipgloss.Style
	Status      *lipgloss.Style
	Busy        *lipgloss.Style
	Warning     *lipgloss.Style
}

var defaultStyles = Styles{
	Label: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true),
	),
	Value: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("255")),
	),
	Missing: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true),
	),
	Body: ptr(
		lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), false, true, true, true).
			BorderForeground(lipgloss.Color("240")),
	),
	BodyBorder: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	),
	BodyTitle: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Bold(true),
	),
	Placeholder: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	),
	Status: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("249")),
	),
	Busy: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("34")).Bold(true),
	),
	Warning: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	),
}

// Default exposes the standard style set used across the application.
func Default() *Styles {
	return &defaultStyles
}

func ptr(style lipgloss.Style) *lipgloss.Style {
	return &style
}
