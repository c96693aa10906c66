package ui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/meteodash/internal/station"
)

func TestThemesColorEveryMetric(t *testing.T) {
	for _, name := range ThemeNames() {
		th := GetTheme(name)
		if th.Name != name {
			t.Fatalf("GetTheme(%q).Name = %q", name, th.Name)
		}
		for _, m := range station.Metrics {
			if th.MetricColors[m] == "" {
				t.Fatalf("theme %s has no color for %s", name, m)
			}
		}
	}
}

func TestBgStyle_FillLinePadsToWidth(t *testing.T) {
	bg := NewBgStyle(GetTheme("Slate").Background)
	line := bg.FillLine("abc", 10)
	if got := lipgloss.Width(line); got != 10 {
		t.Fatalf("FillLine width = %d, want 10", got)
	}
}
