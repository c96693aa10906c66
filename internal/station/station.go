// Package station holds the weather station catalog and report model.
package station

import (
	"fmt"
	"strings"
	"time"
)

// Station is a weather station from the open-data catalog.
type Station struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Equal reports whether two stations are the same catalog entry.
func (s Station) Equal(other Station) bool {
	return s.ID == other.ID
}

// Label returns the display name, falling back to the ID.
func (s Station) Label() string {
	if name := strings.TrimSpace(s.Name); name != "" {
		return name
	}
	return s.ID
}

// Report is one hourly reading.
type Report struct {
	Time        time.Time `json:"time"`
	Temperature float64   `json:"temperature"`
	Humidity    int       `json:"humidity"`
	Pressure    int       `json:"pressure"`
	DisplayDate string    `json:"display_date"`
}

// Metric selects one measured quantity of a Report.
type Metric int

const (
	Temperature Metric = iota
	Humidity
	Pressure
)

// Metrics lists the metrics in display order.
var Metrics = []Metric{Temperature, Humidity, Pressure}

func (m Metric) String() string {
	switch m {
	case Humidity:
		return "humidity"
	case Pressure:
		return "pressure"
	default:
		return "temperature"
	}
}

// Title is the capitalized label used in headings.
func (m Metric) Title() string {
	switch m {
	case Humidity:
		return "Humidity"
	case Pressure:
		return "Pressure"
	default:
		return "Temperature"
	}
}

// Unit returns the display unit.
func (m Metric) Unit() string {
	switch m {
	case Humidity:
		return "%"
	case Pressure:
		return "Pa"
	default:
		return "°C"
	}
}

// Value extracts the metric from a report.
func (m Metric) Value(r Report) float64 {
	switch m {
	case Humidity:
		return float64(r.Humidity)
	case Pressure:
		return float64(r.Pressure)
	default:
		return r.Temperature
	}
}

// Next cycles to the following metric.
func (m Metric) Next() Metric {
	return Metrics[(int(m)+1)%len(Metrics)]
}

// ParseMetric maps a config key to a Metric.
func ParseMetric(name string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "temperature":
		return Temperature, nil
	case "humidity":
		return Humidity, nil
	case "pressure":
		return Pressure, nil
	}
	return 0, fmt.Errorf("unknown metric %q", name)
}

// Summary holds min/max/mean of one metric.
type Summary struct {
	Metric Metric
	Min    float64
	Max    float64
	Mean   float64
	Count  int
}

// Stats summarizes a metric across reports. It returns false when reports is empty.
func Stats(reports []Report, m Metric) (Summary, bool) {
	if len(reports) == 0 {
		return Summary{}, false
	}
	sum := Summary{Metric: m, Min: m.Value(reports[0]), Max: m.Value(reports[0])}
	var total float64
	for _, r := range reports {
		v := m.Value(r)
		if v < sum.Min {
			sum.Min = v
		}
		if v > sum.Max {
			sum.Max = v
		}
		total += v
	}
	sum.Count = len(reports)
	sum.Mean = total / float64(len(reports))
	return sum, true
}

// Latest returns the report with the most recent timestamp.
func Latest(reports []Report) (Report, bool) {
	if len(reports) == 0 {
		return Report{}, false
	}
	latest := reports[0]
	for _, r := range reports[1:] {
		if r.Time.After(latest.Time) {
			latest = r
		}
	}
	return latest, true
}

// Since keeps reports at or after cutoff, preserving order.
func Since(reports []Report, cutoff time.Time) []Report {
	out := make([]Report, 0, len(reports))
	for _, r := range reports {
		if !r.Time.Before(cutoff) {
			out = append(out, r)
		}
	}
	return out
}
