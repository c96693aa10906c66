package ui

import (
	"strings"
	"testing"
	"time"
)

func hours(n int) []time.Time {
	base := time.Date(2025, 3, 1, 22, 0, 0, 0, time.UTC)
	out := make([]time.Time, n)
	for i := range out {
		out[i] = base.Add(time.Duration(i) * time.Hour)
	}
	return out
}

func TestResample(t *testing.T) {
	times := hours(4)

	cols := resample([]float64{1, 2, 3, 4}, times, 10)
	if len(cols) != 4 || cols[3].value != 4 {
		t.Fatalf("resample wider = %+v, want 4 untouched columns", cols)
	}

	cols = resample([]float64{1, 3, 5, 7}, times, 2)
	if len(cols) != 2 {
		t.Fatalf("len = %d, want 2", len(cols))
	}
	if cols[0].value != 2 || cols[1].value != 6 {
		t.Fatalf("bucket means = %v, %v; want 2, 6", cols[0].value, cols[1].value)
	}
	if !cols[1].at.Equal(times[2]) {
		t.Fatalf("bucket time = %v, want %v", cols[1].at, times[2])
	}

	if resample(nil, nil, 5) != nil {
		t.Fatal("resample(nil) should be nil")
	}
}

func TestRenderBars(t *testing.T) {
	cols := []column{{value: 0}, {value: 5}, {value: 10}}
	rows := renderBars(cols, 2, 0, 10)
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	top := []rune(rows[0])
	bottom := []rune(rows[1])

	if bottom[0] != '▁' || top[0] != ' ' {
		t.Fatalf("min column = %q/%q, want lowest bar", top[0], bottom[0])
	}
	if top[2] != '█' || bottom[2] != '█' {
		t.Fatalf("max column = %q/%q, want full bars", top[2], bottom[2])
	}
	if bottom[1] != '█' || top[1] == '█' {
		t.Fatalf("mid column = %q/%q, want half height", top[1], bottom[1])
	}

	flat := renderBars([]column{{value: 3}, {value: 3}}, 2, 3, 3)
	if flat[1] != "██" || flat[0] != "  " {
		t.Fatalf("flat series = %q, want half height", flat)
	}
}

func TestDayAxis(t *testing.T) {
	times := hours(30) // 22:00 on the 1st through the 3rd
	cols := make([]column, len(times))
	for i, ts := range times {
		cols[i] = column{at: ts}
	}

	axis := []rune(dayAxis(cols))
	if len(axis) != len(cols) {
		t.Fatalf("axis width = %d, want %d", len(axis), len(cols))
	}
	if axis[0] != '|' || axis[2] != '|' || axis[26] != '|' {
		t.Fatalf("axis = %q, want markers at 0, 2 and 26", string(axis))
	}
	if !strings.Contains(string(axis), "02 Mar") {
		t.Fatalf("axis = %q, want a day label", string(axis))
	}
}

func TestTruncateAndPad(t *testing.T) {
	if got := truncate("Toulouse Compans Caffarelli", 10); cellWidth(got) > 10 || !strings.HasSuffix(got, "…") {
		t.Fatalf("truncate = %q, want at most 10 cells ending with an ellipsis", got)
	}
	if got := truncate("  short ", 10); got != "short" {
		t.Fatalf("truncate = %q, want %q", got, "short")
	}
	if got := padRight("ab", 4); got != "ab  " {
		t.Fatalf("padRight = %q, want %q", got, "ab  ")
	}
	if got := padLeft("°C", 4); cellWidth(got) != 4 {
		t.Fatalf("padLeft width = %d, want 4", cellWidth(got))
	}
}

func TestThemeCycle(t *testing.T) {
	names := ThemeNames()
	if len(names) != 3 {
		t.Fatalf("ThemeNames = %v, want 3 themes", names)
	}
	seen := map[string]bool{}
	name := names[0]
	for range names {
		seen[name] = true
		name = NextTheme(name)
	}
	if len(seen) != 3 || name != names[0] {
		t.Fatalf("theme cycle visited %v and ended on %q", seen, name)
	}
	if GetTheme("missing").Name != "Nightfox" {
		t.Fatalf("GetTheme(missing) = %q, want Nightfox", GetTheme("missing").Name)
	}
	if NextTheme("missing") != names[0] {
		t.Fatal("NextTheme(unknown) should restart the cycle")
	}
}
