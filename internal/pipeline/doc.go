// Package pipeline turns open-data records into stored station reports.
//
// A refresh is fetch, Transform, Validate and Save, in that order. Each step
// reports failure as an error wrapping one of the package sentinels
// (ErrInvalidFormat, ErrOutOfRange) or the underlying client and storage
// errors. Refresher is safe to call from the task queue worker; it holds no
// mutable state of its own.
package pipeline
