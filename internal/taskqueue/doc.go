// Package taskqueue runs slow dashboard work (fetching and saving station
// data) on a single background worker so the UI never blocks on the network.
//
// # Lifecycle
//
//	q := taskqueue.New(taskqueue.Options{Status: status, Logger: log})
//	q.Start(ctx)   // no-op when a worker is already alive
//	q.Add(task)    // non-blocking; ErrQueueFull when the buffer is full
//	q.Stop()       // waits for the current task, then the worker exits
//
// Start and Stop are both idempotent. Stop never cancels the task in flight
// and leaves pending tasks in the buffer; nothing is persisted across
// restarts. The worker counts as alive until it has exited, so a Start that
// races a Stop waits for the old worker instead of running beside it.
//
// # Ordering
//
// Tasks run strictly in the order they were added and never concurrently.
// IsWorking stays true from Add until the task's cleanup has run, so a poller
// that sees false knows every task it added has finished.
//
// # Failures
//
// A task that returns an error or panics is logged and dropped; it is never
// retried and never stops the worker. After every attempt the worker raises
// Status and then runs the task's OnComplete callback. Status therefore tells
// the dashboard that data may have changed, not that the refresh succeeded.
//
// # Status
//
// Status is a single atomic level shared by reference. The worker raises it;
// the dashboard loop clears it with Consume. Do not add fields to Status
// that must change together without adding a lock.
package taskqueue
