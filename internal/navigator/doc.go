// Package navigator provides the station cursor behind the dashboard's
// previous/next controls and station picker.
//
// # Model
//
// The stations form a ring: moving past the last station wraps to the first
// and moving before the first wraps to the last. The ring is fixed when the
// navigator is built; only the cursor moves. With a single station, Next and
// Previous keep returning that station.
//
// The ring is stored as a slice plus a cursor index, so next and previous are
// modular arithmetic on the index and no node graph is kept.
//
// # Empty catalogs
//
// A navigator built from zero stations is a valid resting state (first start
// before a catalog is installed). Current, Next and Previous return ok=false
// and never fail. SetCurrent on an empty navigator returns ErrStationNotFound,
// like any other miss, so a stale selection in the UI is never silently kept.
//
// # Concurrency
//
// Navigator has no internal locking. The dashboard touches it only from the
// Bubble Tea Update loop; background refresh tasks capture station values.
// Add a lock before sharing a Navigator with the task queue worker.
package navigator
