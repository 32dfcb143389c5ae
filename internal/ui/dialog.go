package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// errorDialog is a single-action alert.
type errorDialog struct {
	title   string
	message string
	action  string
}

func newErrorDialog(title, message, action string) errorDialog {
	return errorDialog{title: title, message: message, action: action}
}

// Update closes the dialog on any dismiss key and swallows everything else.
func (d errorDialog) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return d, nil, false
	}
	if key.Matches(km, keys.Dismiss) {
		return d, nil, true
	}
	return d, nil, false
}

// View renders the dialog centered in a width x height box.
func (d errorDialog) View(theme Theme, width, height int) string {
	styles := theme.Styles()

	modalWidth := 50
	if width > 0 && width-4 < modalWidth {
		modalWidth = maxInt(width-4, 20)
	}

	var b strings.Builder
	b.WriteString(styles.DangerText.Render(d.title))
	b.WriteString("\n\n")
	b.WriteString(styles.Text.Width(modalWidth - 6).Render(d.message))
	b.WriteString("\n\n")

	button := lipgloss.NewStyle().
		Background(lipgloss.Color(theme.Accent)).
		Foreground(lipgloss.Color(theme.Background)).
		Bold(true).
		Padding(0, 2).
		Render(d.action)
	b.WriteString(lipgloss.PlaceHorizontal(modalWidth-6, lipgloss.Right, button))

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(theme.Danger)).
		Padding(1, 2).
		Width(modalWidth).
		Render(b.String())

	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		box,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(theme.Background)),
	)
}
