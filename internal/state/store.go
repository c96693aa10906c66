package state

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// Outcome describes the most recent refresh of one station.
type Outcome struct {
	StationID           string
	At                  time.Time
	LastError           error
	LastSuccess         time.Time
	ConsecutiveFailures int // Number of refreshes failed in a row
	Attempts            int
}

// Failed reports whether the most recent refresh failed.
func (o Outcome) Failed() bool {
	return o.LastError != nil
}

// ErrorLine returns the first line of the last error, or "" after a success.
func (o Outcome) ErrorLine() string {
	if o.LastError == nil {
		return ""
	}
	line, _, _ := strings.Cut(o.LastError.Error(), "\n")
	return line
}

// IsStale returns true when refreshes have failed repeatedly.
func (o Outcome) IsStale() bool {
	return o.ConsecutiveFailures >= 2
}

// Store coordinates concurrent updates to per-station outcomes.
type Store struct {
	mu       sync.RWMutex
	outcomes map[string]Outcome
	now      func() time.Time
}

// Record stores the result of a refresh. When err is non-nil the last success
// time is kept and the failure streak grows.
func (s *Store) Record(stationID string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.outcomes == nil {
		s.outcomes = make(map[string]Outcome)
	}
	now := time.Now()
	if s.now != nil {
		now = s.now()
	}

	o := s.outcomes[stationID]
	o.StationID = stationID
	o.At = now
	o.Attempts++
	if err != nil {
		o.LastError = err
		o.ConsecutiveFailures++
	} else {
		o.LastError = nil
		o.LastSuccess = now
		o.ConsecutiveFailures = 0
	}
	s.outcomes[stationID] = o
}

// Outcome returns a copy of the latest outcome for stationID.
func (s *Store) Outcome(stationID string) (Outcome, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.outcomes[stationID]
	return o, ok
}

// Failures returns the outcomes whose latest refresh failed, ordered by
// station ID.
func (s *Store) Failures() []Outcome {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Outcome
	for _, o := range s.outcomes {
		if o.Failed() {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StationID < out[j].StationID })
	return out
}
