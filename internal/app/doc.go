// Package app is the composition root of meteodash.
//
// # Overview
//
// newServices loads the config, opens the log file, reads the station catalog
// and builds the shared collaborators:
//
//	config.Load() ──> logging.New() ──> station.LoadCatalog()
//	      │
//	      ├─> opendata.Client    fetches station records
//	      ├─> storage.Store      one JSON file per station
//	      ├─> state.Store        last refresh outcome per station
//	      ├─> taskqueue.Queue    single worker, raises taskqueue.Status
//	      └─> pipeline.Refresher fetch, transform, validate, save
//
// Three entry points share them:
//
//   - Run starts the dashboard. Station refreshes go through the queue; the
//     UI polls the queue status and reloads the current station when a task
//     has finished. A watch.Watcher on the data directory forwards files
//     written by other processes to the UI.
//   - Refresh runs the same refresh tasks headless and prints a summary. With
//     a non-zero Every it repeats, backing off exponentially after failed
//     rounds (see calculateBackoff).
//   - ListStations prints the catalog and what is stored for each station.
//
// # Error Handling
//
// Setup failures (config, log file, catalog) are returned to the caller.
// Failed station refreshes are logged and recorded in the outcome store; the
// dashboard keeps running and Refresh returns ErrRefreshFailed after printing
// the summary.
package app
