package state

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/five82/leadconsole/internal/lead"
	"github.com/five82/leadconsole/internal/prefs"
	"github.com/five82/leadconsole/internal/simulate"
)

const (
	loadFailedFallback = "failed to load leads"
	rollbackMessage    = "Failed to save changes. Changes reverted."
)

// Options configure a Store.
type Options struct {
	// Dataset is what the initial load delivers, normally the expanded seed.
	Dataset []lead.Lead
	// Loader simulates the initial fetch; nil delivers immediately.
	Loader *simulate.Simulator
	// Saver simulates update confirmation; nil confirms immediately.
	Saver *simulate.Simulator
	// Prefs holds the persisted view preferences. Nil keeps them in memory.
	Prefs prefs.Slot
	// Observer receives operation events. Nil discards them.
	Observer Observer
	// NewID generates opportunity ids. Nil uses random UUIDs.
	NewID func() string
}

// UpdateResult reports the outcome of an optimistic update. Updating an
// unknown id is a successful no-op with NotFound set.
type UpdateResult struct {
	Success  bool
	NotFound bool
	Message  string
}

// Snapshot is a copy of the store state, safe to read without locking.
type Snapshot struct {
	Leads         []lead.Lead
	Opportunities []lead.Opportunity // most recent first
	Loading       bool
	Loaded        bool
	LastError     string
	View          prefs.View
	PendingSaves  int
	Version       uint64
}

// VisibleLeads returns the filtered and sorted projection of the snapshot.
func (s Snapshot) VisibleLeads() []lead.Lead {
	return Visible(s.Leads, s.View)
}

// Lead returns the lead with the given id.
func (s Snapshot) Lead(id string) (lead.Lead, bool) {
	for _, l := range s.Leads {
		if l.ID == id {
			return l, true
		}
	}
	return lead.Lead{}, false
}

// Store owns the lead and opportunity collections. Callers read snapshots and
// change state only through the Store's methods.
type Store struct {
	mu sync.RWMutex

	dataset  []lead.Lead
	loader   *simulate.Simulator
	saver    *simulate.Simulator
	slot     prefs.Slot
	observer Observer
	newID    func() string

	leads         []lead.Lead
	opportunities []lead.Opportunity
	loading       bool
	loaded        bool
	lastError     string
	view          prefs.View
	pendingSaves  int
	version       uint64
}

// New builds a Store and reads the persisted view preferences.
func New(opts Options) *Store {
	newID := opts.NewID
	if newID == nil {
		newID = func() string { return "opp-" + uuid.NewString() }
	}
	observer := opts.Observer
	if observer == nil {
		observer = NoopObserver{}
	}
	return &Store{
		dataset:  cloneLeads(opts.Dataset),
		loader:   opts.Loader,
		saver:    opts.Saver,
		slot:     opts.Prefs,
		observer: observer,
		newID:    newID,
		view:     prefs.LoadView(opts.Prefs),
	}
}

// Load delivers the dataset through the loader. On failure LastError is set
// and the collection is left as it was. Load never retries on its own; call
// it again to retry.
func (s *Store) Load(ctx context.Context) {
	start := time.Now()

	s.mu.Lock()
	s.loading = true
	s.lastError = ""
	data := cloneLeads(s.dataset)
	loader := s.loader
	s.bump()
	s.mu.Unlock()

	delivered, err := simulate.Call(ctx, loader, data)

	s.mu.Lock()
	s.loading = false
	if err != nil {
		s.lastError = errorMessage(err, loadFailedFallback)
	} else {
		s.leads = delivered
		s.loaded = true
	}
	count := len(s.leads)
	s.bump()
	s.mu.Unlock()

	s.observer.Observe(ctx, Event{
		Op:       OpLoad,
		Duration: time.Since(start),
		Err:      err,
		Fields:   map[string]any{"leads": count},
	})
}

// VisibleLeads returns the current derived view.
func (s *Store) VisibleLeads() []lead.Lead {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Visible(s.leads, s.view)
}

// UpdateLeadOptimistic applies patch to the lead immediately and then waits
// for the saver to confirm. On failure the whole collection is restored to the
// copy taken just before the patch, so a concurrent update that finished in
// between is lost as well. An unknown id changes nothing and skips the saver.
func (s *Store) UpdateLeadOptimistic(ctx context.Context, id string, patch lead.Patch) UpdateResult {
	start := time.Now()

	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		s.observer.Observe(ctx, Event{Op: OpUpdate, LeadID: id, Duration: time.Since(start), Fields: map[string]any{"found": false}})
		return UpdateResult{Success: true, NotFound: true}
	}
	s.lastError = ""
	before := cloneLeads(s.leads)
	s.leads[idx] = patch.Apply(s.leads[idx])
	s.pendingSaves++
	saver := s.saver
	s.bump()
	s.mu.Unlock()

	_, err := simulate.Call(ctx, saver, struct{}{})

	s.mu.Lock()
	s.pendingSaves--
	if err != nil {
		s.leads = before
		s.lastError = rollbackMessage
	}
	s.bump()
	s.mu.Unlock()

	if err != nil {
		s.observer.Observe(ctx, Event{Op: OpRollback, LeadID: id, Duration: time.Since(start), Err: err})
		return UpdateResult{Success: false, Message: errorMessage(err, rollbackMessage)}
	}
	s.observer.Observe(ctx, Event{Op: OpUpdate, LeadID: id, Duration: time.Since(start), Fields: map[string]any{"found": true}})
	return UpdateResult{Success: true}
}

// ConvertLeadToOpportunity creates a Prospecting opportunity from the lead and
// marks the lead converted. It returns nil when the id is unknown. Converting
// the same lead twice creates two opportunities.
func (s *Store) ConvertLeadToOpportunity(leadID string, amount *float64) *lead.Opportunity {
	s.mu.Lock()
	idx := s.indexOf(leadID)
	if idx < 0 {
		s.mu.Unlock()
		s.observer.Observe(context.Background(), Event{Op: OpConvert, LeadID: leadID, Fields: map[string]any{"found": false}})
		return nil
	}
	source := s.leads[idx]
	opp := lead.Opportunity{
		ID:          s.newID(),
		Name:        source.Name,
		AccountName: source.Company,
		Stage:       lead.StageProspecting,
		Amount:      amount,
		LeadID:      source.ID,
	}.Clone()

	s.leads[idx].Status = lead.StatusConverted
	s.opportunities = append([]lead.Opportunity{opp}, s.opportunities...)
	s.bump()
	s.mu.Unlock()

	fields := map[string]any{"found": true, "opportunity_id": opp.ID}
	if amount != nil {
		fields["amount"] = *amount
	}
	s.observer.Observe(context.Background(), Event{Op: OpConvert, LeadID: leadID, Fields: fields})

	out := opp.Clone()
	return &out
}

// SetSearch updates the search term and persists the preferences.
func (s *Store) SetSearch(term string) {
	s.updateView(func(v *prefs.View) { v.Search = term })
}

// SetFilterStatus updates the status filter and persists the preferences.
// Unknown values reset the filter to "all".
func (s *Store) SetFilterStatus(status string) {
	s.updateView(func(v *prefs.View) { v.FilterStatus = prefs.NormalizeFilter(status) })
}

// SetSortDescending updates the sort direction and persists the preferences.
func (s *Store) SetSortDescending(desc bool) {
	s.updateView(func(v *prefs.View) { v.SortDescending = desc })
}

// View returns the current view preferences.
func (s *Store) View() prefs.View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Snapshot{
		Leads:         cloneLeads(s.leads),
		Opportunities: cloneOpportunities(s.opportunities),
		Loading:       s.loading,
		Loaded:        s.loaded,
		LastError:     s.lastError,
		View:          s.view,
		PendingSaves:  s.pendingSaves,
		Version:       s.version,
	}
}

func (s *Store) updateView(apply func(*prefs.View)) {
	s.mu.Lock()
	apply(&s.view)
	view := s.view
	s.bump()
	s.mu.Unlock()

	if s.slot == nil {
		return
	}
	if err := prefs.SaveView(s.slot, view); err != nil {
		s.observer.Observe(context.Background(), Event{Op: OpSavePrefs, Err: err})
	}
}

func (s *Store) indexOf(id string) int {
	for i, l := range s.leads {
		if l.ID == id {
			return i
		}
	}
	return -1
}

// bump must be called with mu held.
func (s *Store) bump() {
	s.version++
}

func errorMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.Canceled) {
		return "request cancelled"
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return fallback
}

func cloneLeads(items []lead.Lead) []lead.Lead {
	if len(items) == 0 {
		return nil
	}
	dup := make([]lead.Lead, len(items))
	copy(dup, items)
	return dup
}

func cloneOpportunities(items []lead.Opportunity) []lead.Opportunity {
	if len(items) == 0 {
		return nil
	}
	dup := make([]lead.Opportunity, len(items))
	for i, o := range items {
		dup[i] = o.Clone()
	}
	return dup
}
