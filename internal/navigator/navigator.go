package navigator

import (
	"errors"
	"fmt"

	"github.com/five82/meteodash/internal/station"
)

// ErrStationNotFound is returned by SetCurrent when no station in the ring matches.
var ErrStationNotFound = errors.New("station not found in navigator")

// Navigator keeps a single cursor over a fixed, circular sequence of stations.
//
// Navigator is not safe for concurrent use. It is owned by the UI goroutine;
// code running elsewhere must receive station values, not the navigator.
type Navigator struct {
	stations []station.Station
	current  int
}

// New builds a navigator in input order with the cursor on the first station.
// An empty list yields a navigator that stays empty.
func New(stations []station.Station) *Navigator {
	ring := make([]station.Station, len(stations))
	copy(ring, stations)
	return &Navigator{stations: ring}
}

// Len returns the number of stations in the ring.
func (n *Navigator) Len() int {
	return len(n.stations)
}

// Index returns the zero-based cursor position, or -1 when empty.
func (n *Navigator) Index() int {
	if len(n.stations) == 0 {
		return -1
	}
	return n.current
}

// Current returns the station under the cursor. ok is false when the ring is empty.
func (n *Navigator) Current() (s station.Station, ok bool) {
	if len(n.stations) == 0 {
		return station.Station{}, false
	}
	return n.stations[n.current], true
}

// Next advances the cursor, wrapping from the last station to the first.
func (n *Navigator) Next() (station.Station, bool) {
	if len(n.stations) == 0 {
		return station.Station{}, false
	}
	n.current = (n.current + 1) % len(n.stations)
	return n.stations[n.current], true
}

// Previous moves the cursor back, wrapping from the first station to the last.
func (n *Navigator) Previous() (station.Station, bool) {
	size := len(n.stations)
	if size == 0 {
		return station.Station{}, false
	}
	n.current = (n.current - 1 + size) % size
	return n.stations[n.current], true
}

// HasNext reports whether Next can move. Any non-empty ring always can.
func (n *Navigator) HasNext() bool {
	return len(n.stations) > 0
}

// HasPrevious reports whether Previous can move.
func (n *Navigator) HasPrevious() bool {
	return len(n.stations) > 0
}

// SetCurrent moves the cursor to the station equal to s. The lookup scans
// from the head, so it is O(n) in the number of stations.
func (n *Navigator) SetCurrent(s station.Station) error {
	for i, candidate := range n.stations {
		if candidate.Equal(s) {
			n.current = i
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrStationNotFound, s.ID)
}

// SetCurrentID is SetCurrent keyed by station ID.
func (n *Navigator) SetCurrentID(id string) error {
	return n.SetCurrent(station.Station{ID: id})
}

// All returns a copy of every station in construction order, starting at the head.
func (n *Navigator) All() []station.Station {
	out := make([]station.Station, len(n.stations))
	copy(out, n.stations)
	return out
}
