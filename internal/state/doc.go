// Package state owns the lead and opportunity collections for the console.
//
// # Overview
//
// The Store is the only place leads and opportunities change. The UI and the
// CLI read Snapshots and call Store methods; they never edit the slices they
// receive. Every remote-looking step (the initial load and the confirmation
// of an edit) goes through a simulate.Simulator, so tests pin outcomes by
// passing simulate.Always() or simulate.Never().
//
// # Operations
//
//	Load(ctx)                          loading=true → deliver dataset → leads
//	VisibleLeads()                     search → status → stable score sort
//	UpdateLeadOptimistic(ctx, id, p)   patch now, confirm later, roll back on failure
//	ConvertLeadToOpportunity(id, amt)  new Prospecting opportunity, lead marked Converted
//	SetSearch / SetFilterStatus / SetSortDescending
//
// # Optimistic Updates
//
// An update copies the whole lead collection, applies the patch, and releases
// the lock while the saver decides. On failure the copy is put back as-is:
//
//	t0  A: copy{v0}, apply A  → v1
//	t1  B: copy{v1}, apply B  → v2
//	t2  A: confirmed          → v2
//	t3  B: failed, restore    → v1   (A survives)
//
//	t0  A: copy{v0}, apply A  → v1
//	t1  B: copy{v1}, apply B  → v2
//	t2  B: confirmed          → v2
//	t3  A: failed, restore    → v0   (B is lost too)
//
// The second ordering drops a confirmed edit. That is a known property of
// whole-collection rollback and is kept on purpose; tests cover it.
//
// # Errors
//
// Nothing escapes the Store as an error value. Load and update failures set
// Snapshot.LastError and return a result the caller can show. Unknown ids are
// silent: updates succeed with NotFound set and leave LastError alone, and
// conversions return nil.
//
// # Preferences
//
// The view preferences come from the prefs.Slot passed in Options and are
// written back synchronously on every setter call. Write failures are sent to
// the Observer and otherwise ignored.
package state
