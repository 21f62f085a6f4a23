// Package ui provides the terminal interface for the lead console.
//
// # Architecture Overview
//
// The UI is a single Bubble Tea model. It never owns lead data: every frame is
// drawn from a state.Snapshot taken from the Store, and every mutation goes
// through the Store's operations. Slow Store calls (load and save) run inside
// tea.Cmds so the event loop keeps redrawing while the simulated latency
// elapses, which is what lets optimistic edits show up before they are
// confirmed.
//
// # Package Structure
//
//   - app.go: Model, Update dispatch, snapshot handling and the Run entry point
//   - leads.go: lead list, detail pane, search and filter handling
//   - forms.go: huh forms for editing and converting a lead
//   - opportunities.go: opportunity table
//   - activity.go: tail of the structured log file
//   - header.go: status line and command bar
//   - help.go, keys.go: key bindings and the help overlay
//   - theme.go, style_helpers.go: color themes and background painting
//
// # Views
//
// Three views are available:
//
//   - Leads: the visible leads (search, status filter and score sort applied)
//     with a detail pane for the selected lead
//   - Opportunities: opportunities created by conversion, newest first
//   - Activity: recent store operations read from the log file
//
// # Data Flow
//
// A ticker polls the Store for a fresh snapshot at the refresh interval.
// Completed operations also push a snapshot directly. Selection is tracked by
// lead ID, so rows keep their highlight when sorting or a rollback reorders
// the list.
//
// # Keyboard Shortcuts
//
//   - l/o/a, Tab: switch views
//   - /: search by name or company, Esc restores the previous query
//   - f: cycle the status filter, s: toggle score sort
//   - Enter: edit the selected lead, c: convert it to an opportunity
//   - r: reload leads, T: cycle theme, h/?: help, e: quit
package ui
