// Package state records how each station's latest refresh went.
//
// The task queue worker writes an Outcome after every refresh attempt and the
// dashboard reads it on each tick to decide whether to show a failure
// warning in the header:
//
//	worker:  Refresher.Refresh -> store.Record(id, err)
//	ui:      store.Outcome(current.ID) -> header warning
//	cli:     store.Failures() -> summary of failing stations
//
// Store guards its map with a sync.RWMutex. Outcomes are returned by value so
// readers never share memory with the writer.
//
// A failed refresh never clears LastSuccess, so the header warning can still
// say when the station last refreshed successfully. ConsecutiveFailures resets on the next success.
package state
