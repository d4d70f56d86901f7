package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"github.com/azkv-tui/azkv/internal/format/table"
	"github.com/azkv-tui/azkv/internal/state"
)

const (
	defaultWidth    = 60
	defaultBodyRows = 3
	bodyTitle       = " Key Vaults "
	missingValue    = "None"
	emptyBodyText   = "No key vaults loaded."
)

// View implements tea.Model.
func (m *Model) View() string {
	width := m.renderWidth()

	lines := m.metadataLines()
	lines = append(lines, "")
	lines = append(lines, strings.Split(m.helpView(), "\n")...)
	lines = append(lines, "")
	fixed := len(lines) + 3 // body top, body bottom and status
	lines = append(lines, m.bodyLines(width, m.bodyRows(fixed))...)
	lines = append(lines, m.statusLine())

	for i, line := range lines {
		lines[i] = clip(line, width)
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderWidth() int {
	if m.width > 0 {
		return m.width
	}
	return defaultWidth
}

func (m *Model) bodyRows(fixed int) int {
	if m.height <= 0 {
		return defaultBodyRows
	}
	return max(m.height-fixed, 1)
}

func (m *Model) metadataLines() []string {
	subscription := ""
	if sub, ok := m.app.Subscription(); ok {
		subscription = sub.Label()
	}
	pairs := [][2]string{
		{"Subscription:", subscription},
		{"Resource Group:", ""},
		{"Key Vault:", ""},
		{"Version:", m.app.Version()},
	}
	rows := make([][2]string, len(pairs))
	for i, p := range pairs {
		rows[i] = [2]string{p[0], valueOrMissing(p[1])}
	}
	formatted := table.Pairs(rows...)
	out := make([]string, len(formatted))
	for i, line := range formatted {
		label := pairs[i][0]
		rest := strings.TrimPrefix(line, label)
		valueStyle := styles.Value
		if pairs[i][1] == "" {
			valueStyle = styles.Missing
		}
		padding := rest[:len(rest)-len(strings.TrimLeft(rest, " "))]
		out[i] = styles.Label.Render(label) + padding + valueStyle.Render(strings.TrimLeft(rest, " "))
	}
	return out
}

func valueOrMissing(v string) string {
	if strings.TrimSpace(v) == "" {
		return missingValue
	}
	return v
}

func (m *Model) helpView() string {
	h := m.help
	h.ShowAll = m.app.FullHelp()
	return h.View(m.keys)
}

// bodyLines draws the bordered body with its title set into the top edge.
func (m *Model) bodyLines(width, rows int) []string {
	border := lipgloss.RoundedBorder()
	title := styles.BodyTitle.Render(bodyTitle)
	fill := max(width-3-lipgloss.Width(title), 0)
	top := styles.BodyBorder.Render(border.TopLeft+border.Top) +
		title +
		styles.BodyBorder.Render(strings.Repeat(border.Top, fill)+border.TopRight)

	content := make([]string, rows)
	content[0] = styles.Placeholder.Render(emptyBodyText)
	body := styles.Body.
		Width(max(width-2, 1)).
		Height(rows).
		Render(strings.Join(content, "\n"))

	return append([]string{top}, strings.Split(body, "\n")...)
}

func (m *Model) statusLine() string {
	active := m.app.ActiveTasks()
	var status string
	if active == 0 {
		status = styles.Status.Render("Background tasks: idle")
	} else {
		status = styles.Busy.Render(fmt.Sprintf("Background tasks: %d running", active))
	}
	if n := m.app.Underflows(); n > 0 {
		status += "  " + styles.Warning.Render(fmt.Sprintf("task counter anomalies: %d", n))
	}
	// Underflows are already counted above.
	if m.lastErr != nil && !errors.Is(m.lastErr, state.ErrNegativeTaskCount) {
		status += "  " + styles.Warning.Render(m.lastErr.Error())
	}
	return status
}

func clip(line string, width int) string {
	if width <= 0 || lipgloss.Width(line) <= width {
		return line
	}
	return truncate.StringWithTail(line, uint(width-1), "…")
}
