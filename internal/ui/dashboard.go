package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/meteodash/internal/station"
)

const (
	chartWindow = 7 * 24 * time.Hour
	axisWidth   = 9
)

// currentData returns the loaded reports when they belong to the current
// station.
func (m Model) currentData() []station.Report {
	st, ok := m.nav.Current()
	if !ok || st.ID != m.dataStation {
		return nil
	}
	return m.data
}

// renderDashboard renders the chart and statistics for the current station.
func (m Model) renderDashboard() string {
	styles := m.theme.Styles()
	height := m.bodyHeight()
	place := func(s string) string {
		return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center, s)
	}

	st, ok := m.nav.Current()
	if !ok {
		hint := "No stations in the catalog."
		if m.catalogPath != "" {
			hint += "\nAdd stations to " + m.catalogPath
		}
		return place(styles.WarningText.Render(hint))
	}
	if m.dataStation != st.ID {
		return place(styles.MutedText.Render("Loading " + st.Label() + "..."))
	}
	if m.loadErr != nil {
		return place(styles.DangerText.Render("Cannot read stored data: " + m.loadErr.Error()))
	}
	if len(m.data) == 0 {
		msg := "No data yet for " + st.Label() + "."
		if m.busy {
			msg += "\nDownloading..."
		} else {
			msg += "\nPress r to refresh."
		}
		return place(styles.MutedText.Render(msg))
	}

	latest, _ := station.Latest(m.data)
	window := station.Since(m.data, latest.Time.Add(-chartWindow))

	var b strings.Builder
	title := fmt.Sprintf("%s (%s) · last 7 days", m.metric.Title(), m.metric.Unit())
	b.WriteString(styles.AccentText.Bold(true).Render(title))
	b.WriteString("\n\n")
	b.WriteString(m.renderChart(window, styles, max(height-6, 3)))
	b.WriteString("\n\n")
	b.WriteString(m.renderStats(window, latest, styles))

	return lipgloss.NewStyle().Padding(0, 1).Height(height).Render(b.String())
}

// renderChart draws the metric over window with a value axis on the left
// and day markers underneath.
func (m Model) renderChart(window []station.Report, styles Styles, rows int) string {
	values := make([]float64, len(window))
	times := make([]time.Time, len(window))
	for i, r := range window {
		values[i] = m.metric.Value(r)
		times[i] = r.Time
	}
	summary, _ := station.Stats(window, m.metric)

	width := max(m.width-axisWidth-4, 8)
	cols := resample(values, times, width)
	bars := renderBars(cols, min(rows, 12), summary.Min, summary.Max)

	barStyle := styles.MetricStyle(m.metric)
	lines := make([]string, 0, len(bars)+1)
	for i, row := range bars {
		label := ""
		switch i {
		case 0:
			label = formatValue(summary.Max, m.metric)
		case len(bars) - 1:
			label = formatValue(summary.Min, m.metric)
		}
		lines = append(lines, styles.MutedText.Render(padLeft(label, axisWidth-1))+" "+barStyle.Render(row))
	}
	lines = append(lines, strings.Repeat(" ", axisWidth)+styles.FaintText.Render(dayAxis(cols)))
	return strings.Join(lines, "\n")
}

// renderStats renders min, max, average and the latest reading.
func (m Model) renderStats(window []station.Report, latest station.Report, styles Styles) string {
	summary, ok := station.Stats(window, m.metric)
	if !ok {
		return ""
	}
	field := func(label, value string) string {
		return styles.FaintText.Render(label) + " " + styles.Text.Render(value)
	}
	parts := []string{
		field("min", formatValue(summary.Min, m.metric)),
		field("max", formatValue(summary.Max, m.metric)),
		field("avg", formatValue(summary.Mean, m.metric)),
		field("latest", formatValue(m.metric.Value(latest), m.metric)+" at "+latest.DisplayDate),
		styles.MutedText.Render(fmt.Sprintf("(%d readings)", summary.Count)),
	}
	return strings.Join(parts, "   ")
}

func formatValue(v float64, metric station.Metric) string {
	if metric == station.Temperature {
		return fmt.Sprintf("%.1f%s", v, metric.Unit())
	}
	return fmt.Sprintf("%.0f%s", v, metric.Unit())
}

func padLeft(s string, width int) string {
	w := cellWidth(s)
	if w >= width {
		return s
	}
	return strings.Repeat(" ", width-w) + s
}
