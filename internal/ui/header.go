package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/meteodash/internal/station"
	"github.com/five82/meteodash/internal/taskqueue"
)

// renderHeader renders the status bar: station, position, freshness,
// activity and the last refresh outcome.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	sep := "  "

	parts := []string{bg.Render("meteodash", styles.Logo)}

	st, ok := m.nav.Current()
	if !ok {
		parts = append(parts, bg.Render("no stations", styles.WarningText))
		return m.headerBar(bg.Join(parts, sep))
	}

	compact := m.width < 100
	nameLimit := 40
	if compact {
		nameLimit = 24
	}
	parts = append(parts,
		bg.Render(truncate(st.Label(), nameLimit), styles.AccentText.Bold(true)),
		bg.Render(fmt.Sprintf("%d/%d", m.nav.Index()+1, m.nav.Len()), styles.MutedText),
	)

	if latest, ok := station.Latest(m.currentData()); ok {
		parts = append(parts,
			bg.Render("last", styles.FaintText)+bg.Spaces(1)+bg.Render(latest.DisplayDate, styles.Text))
	}

	if m.busy {
		activity := "queued"
		if m.queueState == taskqueue.StateExecuting {
			activity = "refreshing"
		}
		parts = append(parts, bg.Render(m.spinner.View(), styles.InfoText)+bg.Spaces(1)+bg.Render(activity, styles.InfoText))
	}

	if warning := m.formatRefreshWarning(st, compact); warning != "" {
		parts = append(parts, bg.Render(warning, styles.DangerText))
	}

	return m.headerBar(bg.Join(parts, sep))
}

func (m Model) headerBar(content string) string {
	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Surface)).
		Foreground(lipgloss.Color(m.theme.Text)).
		Width(m.width).
		Render(" " + content)
}

// formatRefreshWarning describes a failed last refresh of st and when it
// last succeeded.
func (m Model) formatRefreshWarning(st station.Station, compact bool) string {
	if m.outcomes == nil {
		return ""
	}
	o, ok := m.outcomes.Outcome(st.ID)
	if !ok || !o.Failed() {
		return ""
	}
	since := "never refreshed"
	if !o.LastSuccess.IsZero() {
		since = "last ok " + formatAge(time.Since(o.LastSuccess))
	}
	if compact {
		return "⚠ refresh failed (" + since + ")"
	}
	msg := "⚠ refresh failed"
	if o.IsStale() {
		msg = fmt.Sprintf("⚠ %d refreshes failed", o.ConsecutiveFailures)
	}
	return msg + " (" + since + "): " + truncate(o.ErrorLine(), 48)
}

// formatAge renders d in its largest whole unit.
func formatAge(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d/time.Hour))
	default:
		return fmt.Sprintf("%dd ago", int(d/(24*time.Hour)))
	}
}

// renderFooter shows a flash message or the key hints.
func (m Model) renderFooter() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	if m.flash != "" {
		return bg.FillLine(" "+bg.Render(truncate(m.flash, m.width-2), styles.WarningText), m.width)
	}

	hints := make([]string, 0, len(m.keys.ShortHelp()))
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		hints = append(hints, bg.Render(h.Key, styles.WarningText)+bg.Spaces(1)+bg.Render(strings.ToLower(h.Desc), styles.MutedText))
	}
	return bg.FillLine(" "+bg.Join(hints, "  "), m.width)
}
