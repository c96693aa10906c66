package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/meteodash/internal/logtail"
)

// handleLogsKey scrolls the log view.
func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ToggleFollow):
		m.logFollow = !m.logFollow
		if m.logFollow {
			m.logViewport.GotoBottom()
		}
		return m, nil
	case key.Matches(msg, m.keys.Up):
		m.logFollow = false
		m.logViewport.LineUp(1)
	case key.Matches(msg, m.keys.Down):
		m.logViewport.LineDown(1)
	case key.Matches(msg, m.keys.Top):
		m.logFollow = false
		m.logViewport.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		m.logViewport.GotoBottom()
	default:
		var cmd tea.Cmd
		m.logViewport, cmd = m.logViewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

// updateLogViewport re-renders log entries into the viewport.
func (m *Model) updateLogViewport() {
	if !m.ready {
		return
	}
	styles := m.theme.Styles()
	var lines []string
	switch {
	case m.logErr != nil:
		lines = append(lines, styles.DangerText.Render("cannot read log: "+m.logErr.Error()))
	case len(m.logEntries) == 0:
		lines = append(lines, styles.MutedText.Render("No log entries yet."))
	default:
		lines = make([]string, 0, len(m.logEntries))
		for _, e := range m.logEntries {
			lines = append(lines, m.formatLogEntry(e, styles))
		}
	}
	m.logViewport.SetContent(strings.Join(lines, "\n"))
	if m.logFollow {
		m.logViewport.GotoBottom()
	}
}

func (m Model) formatLogEntry(e logtail.Entry, styles Styles) string {
	if e.Level == "" && e.Time.IsZero() {
		return styles.FaintText.Render(e.Message)
	}
	ts := "--:--:--"
	if !e.Time.IsZero() {
		ts = e.Time.Local().Format("15:04:05")
	}
	var b strings.Builder
	b.WriteString(styles.FaintText.Render(ts))
	b.WriteString(" ")
	b.WriteString(levelStyle(e.Level, styles).Render(padRight(strings.ToUpper(e.Level), 5)))
	b.WriteString(" ")
	b.WriteString(styles.Text.Render(e.Message))
	for _, k := range e.FieldKeys() {
		b.WriteString(" ")
		b.WriteString(styles.MutedText.Render(fmt.Sprintf("%s=%s", k, e.Fields[k])))
	}
	return b.String()
}

func levelStyle(level string, styles Styles) lipgloss.Style {
	switch level {
	case "error", "fatal", "panic":
		return styles.DangerText
	case "warn":
		return styles.WarningText
	case "debug", "trace":
		return styles.FaintText
	default:
		return styles.InfoText
	}
}

// renderLogs renders the log viewport.
func (m Model) renderLogs() string {
	return m.logViewport.View()
}
