package pipeline

import (
	"errors"
	"fmt"

	"github.com/five82/meteodash/internal/station"
)

// ErrOutOfRange marks a reading outside its plausible range.
var ErrOutOfRange = errors.New("value out of range")

// Range is an inclusive bound.
type Range struct {
	Min float64
	Max float64
}

// Contains reports whether v lies within the range.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Rules maps a metric to its accepted range. Metrics without a rule are not
// checked.
type Rules map[station.Metric]Range

// DefaultRules returns the plausible ranges for a temperate climate station.
// Pressure is in pascals.
func DefaultRules() Rules {
	return Rules{
		station.Temperature: {Min: -50, Max: 60},
		station.Humidity:    {Min: 0, Max: 100},
		station.Pressure:    {Min: 85000, Max: 110000},
	}
}

// Validate checks every report against rules and returns the first violation.
func Validate(reports []station.Report, rules Rules) error {
	for _, r := range reports {
		for _, m := range station.Metrics {
			bound, ok := rules[m]
			if !ok {
				continue
			}
			if v := m.Value(r); !bound.Contains(v) {
				return fmt.Errorf("%w: %s %g at %s not in [%g, %g]", ErrOutOfRange, m, v, r.DisplayDate, bound.Min, bound.Max)
			}
		}
	}
	return nil
}
