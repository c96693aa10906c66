package watch

import (
	"sync"
	"time"
)

// DefaultDebounce is the quiet period before changes are reported.
const DefaultDebounce = 250 * time.Millisecond

// debouncer coalesces rapid triggers into one callback.
type debouncer struct {
	duration time.Duration
	timer    *time.Timer
	mu       sync.Mutex
}

func newDebouncer(d time.Duration) *debouncer {
	if d <= 0 {
		d = DefaultDebounce
	}
	return &debouncer{duration: d}
}

// trigger schedules fn after the quiet period, replacing any pending call.
func (d *debouncer) trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.duration, fn)
}

func (d *debouncer) cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
