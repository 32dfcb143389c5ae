package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"

	"github.com/five82/technician/internal/state"
)

// kpiHeader shows completed versus total sales orders.
type kpiHeader struct {
	bar progress.Model
}

func newKPIHeader(theme Theme) kpiHeader {
	bar := progress.New(
		progress.WithSolidFill(theme.Success),
		progress.WithoutPercentage(),
		progress.WithWidth(LayoutKPIBarWidth),
	)
	bar.EmptyColor = theme.Border
	return kpiHeader{bar: bar}
}

// recolor follows a theme change.
func (k *kpiHeader) recolor(theme Theme) {
	k.bar.FullColor = theme.Success
	k.bar.EmptyColor = theme.Border
}

// value renders "completed/total", or an en dash before the first poll.
func (k kpiHeader) value(snap state.Snapshot) string {
	if !snap.HasKPI {
		return "–"
	}
	return fmt.Sprintf("%d/%d", snap.KPI.Completed, snap.KPI.Total)
}

// View renders the KPI segment for the header bar.
func (k kpiHeader) View(snap state.Snapshot, strs Catalog, styles Styles, bg BgStyle, compact bool) string {
	label := bg.Render(strs.T(keyKPICompletedOrders), styles.MutedText)
	value := bg.Render(k.value(snap), styles.Text.Bold(true))
	if compact || !snap.HasKPI {
		return label + bg.Spaces(1) + value
	}
	return label + bg.Spaces(1) + value + bg.Spaces(1) + k.bar.ViewAs(snap.KPI.Ratio())
}
