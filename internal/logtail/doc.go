// Package logtail reads the tail of the application log for the dashboard's
// log view.
//
// Lines extracts the last N lines of a file with a ring buffer, so memory is
// bounded by N rather than by the file size. Read then decodes each line as
// a zerolog JSON object into an Entry; lines that are not JSON (a stack trace
// written by a crash, for example) are kept as message-only entries.
//
//	entries, err := logtail.Read(logPath, 200)
//	for _, e := range entries {
//		fmt.Println(e.Time.Format(time.TimeOnly), e.Level, e.Message)
//	}
//
// A missing log file is not an error; it simply yields no entries.
package logtail
