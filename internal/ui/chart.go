package ui

import (
	"math"
	"strings"
	"time"
)

// Eighth-block levels, lowest first.
var barRunes = []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// column is one rendered chart column.
type column struct {
	value float64
	at    time.Time
}

// resample reduces values to at most width columns by averaging equal-size
// buckets. Each column keeps the time of its first reading.
func resample(values []float64, times []time.Time, width int) []column {
	n := len(values)
	if n == 0 || width <= 0 {
		return nil
	}
	if n <= width {
		cols := make([]column, n)
		for i := range values {
			cols[i] = column{value: values[i], at: times[i]}
		}
		return cols
	}
	cols := make([]column, width)
	for i := 0; i < width; i++ {
		start := i * n / width
		end := (i + 1) * n / width
		if end <= start {
			end = start + 1
		}
		var sum float64
		for _, v := range values[start:end] {
			sum += v
		}
		cols[i] = column{value: sum / float64(end-start), at: times[start]}
	}
	return cols
}

// renderBars draws cols as a bar chart height rows tall, top row first.
// lo and hi bound the vertical scale.
func renderBars(cols []column, height int, lo, hi float64) []string {
	if height <= 0 {
		return nil
	}
	span := hi - lo
	levels := height * 8
	rows := make([][]rune, height)
	for r := range rows {
		rows[r] = make([]rune, len(cols))
	}
	for c, col := range cols {
		// The lowest reading keeps one eighth so it stays visible.
		filled := levels / 2
		if span > 0 {
			filled = 1 + int(math.Round((col.value-lo)/span*float64(levels-1)))
		}
		for r := 0; r < height; r++ {
			// r counts from the bottom
			inRow := filled - r*8
			switch {
			case inRow >= 8:
				rows[height-1-r][c] = barRunes[8]
			case inRow <= 0:
				rows[height-1-r][c] = barRunes[0]
			default:
				rows[height-1-r][c] = barRunes[inRow]
			}
		}
	}
	out := make([]string, height)
	for i, r := range rows {
		out[i] = string(r)
	}
	return out
}

// dayAxis marks each column where the calendar day changes and labels the
// day when the label fits before the next marker.
func dayAxis(cols []column) string {
	line := []rune(strings.Repeat(" ", len(cols)))
	var marks []int
	for i := range cols {
		if i == 0 || !sameDay(cols[i-1].at, cols[i].at) {
			marks = append(marks, i)
		}
	}
	for k, i := range marks {
		line[i] = '|'
		end := len(line)
		if k+1 < len(marks) {
			end = marks[k+1]
		}
		label := []rune(cols[i].at.Format("02 Jan"))
		if i+1+len(label) <= end {
			copy(line[i+1:], label)
		}
	}
	return string(line)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
