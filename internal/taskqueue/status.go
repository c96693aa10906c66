package taskqueue

import "sync/atomic"

// Status is the refresh signal shared between the queue worker and the
// dashboard loop. It is a level, not an event count: several completions
// before the next poll collapse into one pending refresh.
//
// The worker only raises the level; the poller only clears it.
type Status struct {
	refreshNeeded atomic.Bool
}

// Signal marks that a task finished and the view should reload.
func (s *Status) Signal() {
	if s == nil {
		return
	}
	s.refreshNeeded.Store(true)
}

// RefreshNeeded reports the level without clearing it.
func (s *Status) RefreshNeeded() bool {
	if s == nil {
		return false
	}
	return s.refreshNeeded.Load()
}

// Consume clears the level and reports whether it was set.
func (s *Status) Consume() bool {
	if s == nil {
		return false
	}
	return s.refreshNeeded.CompareAndSwap(true, false)
}
