package ui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"
)

// renderHeader renders the status bar: name, connection badge and KPI.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	compact := m.width < LayoutCompactWidth

	parts := []string{bg.Render("technician", styles.Logo)}

	if m.snapshot.IsOffline() {
		parts = append(parts, bg.Render("● "+m.strings.T(keyOffline), styles.WarningText.Bold(true)))
	} else if m.snapshot.HasKPI {
		parts = append(parts, bg.Render("● "+m.strings.T(keyOnline), styles.SuccessText))
	}

	parts = append(parts, m.kpi.View(m.snapshot, m.strings, styles, bg, compact))

	if !compact {
		if ts := m.formatTimestamp(); ts != "" {
			parts = append(parts, bg.Render(ts, styles.FaintText))
		}
	}

	return styles.Header.Width(m.width).Render(bg.Join(parts, "  "))
}

// formatTimestamp returns the time of the last KPI update.
func (m Model) formatTimestamp() string {
	if m.snapshot.LastUpdated.IsZero() {
		return ""
	}
	ts := m.snapshot.LastUpdated.Local()
	if time.Since(ts) > 24*time.Hour {
		return ts.Format("Jan 02 15:04")
	}
	return ts.Format("15:04:05")
}

// renderFooter renders the key help for the active screen.
func (m Model) renderFooter() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)

	h := m.help
	h.Width = m.width - 2
	h.ShowAll = m.showHelp
	h.Styles = help.Styles{
		ShortKey:       styles.AccentText,
		ShortDesc:      styles.MutedText,
		ShortSeparator: styles.FaintText,
		FullKey:        styles.AccentText,
		FullDesc:       styles.MutedText,
		FullSeparator:  styles.FaintText,
		Ellipsis:       styles.FaintText,
	}

	var content string
	if m.current == screenDetail {
		content = h.View(detailKeys{m.keys})
	} else {
		content = h.View(listKeys{m.keys})
	}

	theme := styles.FaintText.Render("T:" + m.theme.Name)
	return styles.Header.Width(m.width).Render(
		lipgloss.JoinHorizontal(lipgloss.Top, content, "  ", theme),
	)
}
