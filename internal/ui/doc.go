// Package ui implements the terminal dashboard with Bubble Tea.
//
// # Event Loop
//
// The model never blocks. Refreshes run on the task queue worker; the UI only
// enqueues them and watches for results:
//
//	key n/p/r/enter ──► navigator moves ──► queue.Add(refresh task)
//	                                   └──► loadReportsCmd (stored data)
//	tickMsg (500ms) ──► queue.IsWorking() drives the spinner
//	                └──► status.Consume() ──► loadReportsCmd (fresh data)
//	DataChangedMsg  ──► reload when the current station's file changed
//
// Reports are loaded in a tea.Cmd and applied only if they still belong to
// the current station, so fast navigation never shows another station's
// chart.
//
// # Views
//
//   - Dashboard: header, a bar chart of the selected metric over the last
//     seven days with day markers, then min/max/average and latest reading
//   - Logs: tail of the application log, following new entries by default
//   - Picker: filterable station list (bubbles/list)
//   - Help: key binding overlay
//
// The navigator is owned by the UI goroutine; tea.Cmds capture station values
// instead of touching it.
package ui
