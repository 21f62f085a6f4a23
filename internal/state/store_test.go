package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/leadconsole/internal/dataset"
	"github.com/five82/leadconsole/internal/lead"
	"github.com/five82/leadconsole/internal/prefs"
	"github.com/five82/leadconsole/internal/simulate"
)

func fourLeads(t *testing.T) []lead.Lead {
	t.Helper()
	seed := []lead.Lead{
		{ID: "l1", Name: "Ann", Company: "Acme", Email: "ann@acme.io", Score: 40, Status: lead.StatusNew},
		{ID: "l2", Name: "Bob", Company: "Beta", Email: "bob@beta.io", Score: 90, Status: lead.StatusQualified},
	}
	out, err := dataset.Expand(seed, 4)
	require.NoError(t, err)
	return out
}

func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("opp-%d", n)
	}
}

type recordingObserver struct {
	mu     sync.Mutex
	events []Event
}

func (r *recordingObserver) Observe(_ context.Context, e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingObserver) ops() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Op
	}
	return out
}

func loadedStore(t *testing.T, opts Options) *Store {
	t.Helper()
	if opts.Dataset == nil {
		opts.Dataset = fourLeads(t)
	}
	if opts.Loader == nil {
		opts.Loader = simulate.Always()
	}
	if opts.NewID == nil {
		opts.NewID = sequentialIDs()
	}
	s := New(opts)
	s.Load(context.Background())
	require.Empty(t, s.Snapshot().LastError)
	return s
}

func setSaver(s *Store, sim *simulate.Simulator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saver = sim
}

func TestLoad_SuccessDeliversDataset(t *testing.T) {
	data := fourLeads(t)
	obs := &recordingObserver{}
	s := New(Options{Dataset: data, Loader: simulate.Always(), Observer: obs})

	before := s.Snapshot()
	assert.False(t, before.Loading)
	assert.Empty(t, before.Leads)

	s.Load(context.Background())

	snap := s.Snapshot()
	assert.False(t, snap.Loading)
	assert.True(t, snap.Loaded)
	assert.Empty(t, snap.LastError)
	assert.Equal(t, data, snap.Leads)
	assert.Equal(t, []string{OpLoad}, obs.ops())
}

func TestLoad_FailureSetsErrorAndLeavesLeadsEmpty(t *testing.T) {
	s := New(Options{Dataset: fourLeads(t), Loader: simulate.Never()})
	s.Load(context.Background())

	snap := s.Snapshot()
	assert.False(t, snap.Loading)
	assert.False(t, snap.Loaded)
	assert.Empty(t, snap.Leads)
	assert.Equal(t, "simulated server error", snap.LastError)
}

func TestLoad_ManualRetryClearsError(t *testing.T) {
	s := New(Options{Dataset: fourLeads(t), Loader: simulate.Never()})
	s.Load(context.Background())
	require.NotEmpty(t, s.Snapshot().LastError)

	s.mu.Lock()
	s.loader = simulate.Always()
	s.mu.Unlock()
	s.Load(context.Background())

	snap := s.Snapshot()
	assert.Empty(t, snap.LastError)
	assert.Len(t, snap.Leads, 4)
}

func TestLoad_IsLoadingWhileInFlight(t *testing.T) {
	slow, err := simulate.New(150*time.Millisecond, 0, nil)
	require.NoError(t, err)
	s := New(Options{Dataset: fourLeads(t), Loader: slow})

	done := make(chan struct{})
	go func() {
		s.Load(context.Background())
		close(done)
	}()

	require.Eventually(t, func() bool { return s.Snapshot().Loading }, time.Second, 5*time.Millisecond)
	<-done
	assert.False(t, s.Snapshot().Loading)
}

func TestLoad_CancelledContextReportsError(t *testing.T) {
	slow, err := simulate.New(time.Hour, 0, nil)
	require.NoError(t, err)
	s := New(Options{Dataset: fourLeads(t), Loader: slow})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.Load(ctx)

	assert.Equal(t, "request cancelled", s.Snapshot().LastError)
}

func TestVisibleLeads_SearchAnnSortedDesc(t *testing.T) {
	s := loadedStore(t, Options{})
	s.SetSearch("ann")

	got := s.VisibleLeads()
	require.Len(t, got, 2)
	assert.Equal(t, "Ann 1", got[0].Name)
	assert.Equal(t, 41, got[0].Score)
	assert.Equal(t, "Ann", got[1].Name)
}

func TestVisibleLeads_DoesNotMutateCollection(t *testing.T) {
	s := loadedStore(t, Options{})
	before := s.Snapshot().Leads
	s.SetSortDescending(false)
	_ = s.VisibleLeads()
	assert.Equal(t, before, s.Snapshot().Leads)
}

func TestUpdateLeadOptimistic_PatchVisibleBeforeConfirmation(t *testing.T) {
	s := loadedStore(t, Options{})
	slow, err := simulate.New(200*time.Millisecond, 0, nil)
	require.NoError(t, err)
	setSaver(s, slow)

	score := 99
	done := make(chan UpdateResult, 1)
	go func() {
		done <- s.UpdateLeadOptimistic(context.Background(), "l1", lead.Patch{Score: &score})
	}()

	require.Eventually(t, func() bool { return s.Snapshot().PendingSaves == 1 }, time.Second, 5*time.Millisecond)
	l, ok := s.Snapshot().Lead("l1")
	require.True(t, ok)
	assert.Equal(t, 99, l.Score)

	res := <-done
	assert.True(t, res.Success)
	assert.Zero(t, s.Snapshot().PendingSaves)
}

func TestUpdateLeadOptimistic_SuccessKeepsPatch(t *testing.T) {
	s := loadedStore(t, Options{Saver: simulate.Always()})

	name := "Ann Updated"
	status := lead.StatusContacted
	res := s.UpdateLeadOptimistic(context.Background(), "l1", lead.Patch{Name: &name, Status: &status})

	assert.True(t, res.Success)
	assert.Empty(t, res.Message)
	snap := s.Snapshot()
	assert.Empty(t, snap.LastError)
	l, _ := snap.Lead("l1")
	assert.Equal(t, "Ann Updated", l.Name)
	assert.Equal(t, lead.StatusContacted, l.Status)
}

func TestUpdateLeadOptimistic_FailureRestoresSnapshot(t *testing.T) {
	obs := &recordingObserver{}
	s := loadedStore(t, Options{Saver: simulate.Never(), Observer: obs})
	before := s.Snapshot().Leads

	score := 5
	res := s.UpdateLeadOptimistic(context.Background(), "l2", lead.Patch{Score: &score})

	assert.False(t, res.Success)
	assert.Equal(t, "simulated server error", res.Message)
	snap := s.Snapshot()
	assert.Equal(t, before, snap.Leads)
	assert.Equal(t, rollbackMessage, snap.LastError)
	assert.Contains(t, obs.ops(), OpRollback)
}

func TestUpdateLeadOptimistic_ClearsPreviousError(t *testing.T) {
	s := loadedStore(t, Options{Saver: simulate.Never()})
	score := 1
	s.UpdateLeadOptimistic(context.Background(), "l1", lead.Patch{Score: &score})
	require.NotEmpty(t, s.Snapshot().LastError)

	setSaver(s, simulate.Always())
	res := s.UpdateLeadOptimistic(context.Background(), "l1", lead.Patch{Score: &score})
	assert.True(t, res.Success)
	assert.Empty(t, s.Snapshot().LastError)
}

func TestUpdateLeadOptimistic_UnknownIDIsNoop(t *testing.T) {
	s := loadedStore(t, Options{Saver: simulate.Never()})
	before := s.Snapshot()

	name := "ghost"
	res := s.UpdateLeadOptimistic(context.Background(), "nope", lead.Patch{Name: &name})

	assert.Equal(t, UpdateResult{Success: true, NotFound: true}, res)
	after := s.Snapshot()
	assert.Equal(t, before.Leads, after.Leads)
	assert.Empty(t, after.LastError)
	assert.Zero(t, after.PendingSaves)
}

func TestUpdateLeadOptimistic_UnknownIDKeepsLastError(t *testing.T) {
	s := loadedStore(t, Options{Saver: simulate.Never()})
	score := 5
	s.UpdateLeadOptimistic(context.Background(), "l1", lead.Patch{Score: &score})
	require.Equal(t, rollbackMessage, s.Snapshot().LastError)

	res := s.UpdateLeadOptimistic(context.Background(), "nope", lead.Patch{Score: &score})
	assert.True(t, res.Success)
	assert.Equal(t, rollbackMessage, s.Snapshot().LastError, "a no-op update leaves state untouched")
}

// An earlier update that fails after a later one succeeded restores the
// copy taken before either, discarding the confirmed edit.
func TestUpdateLeadOptimistic_LateRollbackDiscardsConfirmedUpdate(t *testing.T) {
	s := loadedStore(t, Options{})
	original, _ := s.Snapshot().Lead("l1")

	slowFail, err := simulate.New(150*time.Millisecond, 1, nil)
	require.NoError(t, err)
	setSaver(s, slowFail)

	firstScore := 11
	first := make(chan UpdateResult, 1)
	go func() {
		first <- s.UpdateLeadOptimistic(context.Background(), "l1", lead.Patch{Score: &firstScore})
	}()
	require.Eventually(t, func() bool { return s.Snapshot().PendingSaves == 1 }, time.Second, 5*time.Millisecond)

	setSaver(s, simulate.Always())
	name := "Bob Confirmed"
	second := s.UpdateLeadOptimistic(context.Background(), "l2", lead.Patch{Name: &name})
	require.True(t, second.Success)

	l2, _ := s.Snapshot().Lead("l2")
	require.Equal(t, "Bob Confirmed", l2.Name)

	res := <-first
	assert.False(t, res.Success)

	snap := s.Snapshot()
	l1, _ := snap.Lead("l1")
	l2, _ = snap.Lead("l2")
	assert.Equal(t, original.Score, l1.Score)
	assert.Equal(t, "Bob", l2.Name, "confirmed update is lost by the whole-collection rollback")
}

func TestUpdateLeadOptimistic_LaterRollbackKeepsEarlierUpdate(t *testing.T) {
	s := loadedStore(t, Options{})

	slowOK, err := simulate.New(150*time.Millisecond, 0, nil)
	require.NoError(t, err)
	setSaver(s, slowOK)

	firstScore := 11
	first := make(chan UpdateResult, 1)
	go func() {
		first <- s.UpdateLeadOptimistic(context.Background(), "l1", lead.Patch{Score: &firstScore})
	}()
	require.Eventually(t, func() bool { return s.Snapshot().PendingSaves == 1 }, time.Second, 5*time.Millisecond)

	setSaver(s, simulate.Never())
	name := "Bob Failed"
	second := s.UpdateLeadOptimistic(context.Background(), "l2", lead.Patch{Name: &name})
	require.False(t, second.Success)

	require.True(t, (<-first).Success)

	snap := s.Snapshot()
	l1, _ := snap.Lead("l1")
	l2, _ := snap.Lead("l2")
	assert.Equal(t, 11, l1.Score)
	assert.Equal(t, "Bob", l2.Name)
}

func TestConvertLeadToOpportunity_CreatesProspect(t *testing.T) {
	s := loadedStore(t, Options{})

	amount := 2500.0
	opp := s.ConvertLeadToOpportunity("l2", &amount)
	require.NotNil(t, opp)

	assert.Equal(t, "opp-1", opp.ID)
	assert.Equal(t, "Bob", opp.Name)
	assert.Equal(t, "Beta", opp.AccountName)
	assert.Equal(t, lead.StageProspecting, opp.Stage)
	require.NotNil(t, opp.Amount)
	assert.Equal(t, 2500.0, *opp.Amount)

	snap := s.Snapshot()
	require.Len(t, snap.Opportunities, 1)
	assert.Equal(t, *opp, snap.Opportunities[0])

	l2, ok := snap.Lead("l2")
	require.True(t, ok, "converted lead stays in the collection")
	assert.Equal(t, lead.StatusConverted, l2.Status)
	assert.Len(t, snap.Leads, 4)
}

func TestConvertLeadToOpportunity_NilAmountAndPrepend(t *testing.T) {
	s := loadedStore(t, Options{})

	first := s.ConvertLeadToOpportunity("l1", nil)
	second := s.ConvertLeadToOpportunity("l2", nil)
	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Nil(t, first.Amount)

	opps := s.Snapshot().Opportunities
	require.Len(t, opps, 2)
	assert.Equal(t, second.ID, opps[0].ID)
	assert.Equal(t, first.ID, opps[1].ID)
}

func TestConvertLeadToOpportunity_TwiceMakesTwoRecords(t *testing.T) {
	s := loadedStore(t, Options{NewID: nil})

	a := s.ConvertLeadToOpportunity("l1", nil)
	b := s.ConvertLeadToOpportunity("l1", nil)
	require.NotNil(t, a)
	require.NotNil(t, b)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Len(t, s.Snapshot().Opportunities, 2)
}

func TestConvertLeadToOpportunity_DefaultIDsAreUnique(t *testing.T) {
	s := New(Options{Dataset: fourLeads(t)})
	s.Load(context.Background())

	a := s.ConvertLeadToOpportunity("l1", nil)
	b := s.ConvertLeadToOpportunity("l1", nil)
	require.NotNil(t, a)
	require.NotNil(t, b)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Regexp(t, `^opp-`, a.ID)
}

func TestConvertLeadToOpportunity_UnknownID(t *testing.T) {
	s := loadedStore(t, Options{})
	before := s.Snapshot()

	assert.Nil(t, s.ConvertLeadToOpportunity("missing", nil))

	after := s.Snapshot()
	assert.Equal(t, before.Leads, after.Leads)
	assert.Empty(t, after.Opportunities)
}

func TestConvertLeadToOpportunity_ReturnedCopyIsDetached(t *testing.T) {
	s := loadedStore(t, Options{})
	amount := 10.0
	opp := s.ConvertLeadToOpportunity("l1", &amount)
	require.NotNil(t, opp)

	*opp.Amount = 999
	amount = 555
	assert.Equal(t, 10.0, *s.Snapshot().Opportunities[0].Amount)
}

func TestSetters_PersistPreferences(t *testing.T) {
	slot := prefs.NewMemorySlot()
	s := New(Options{Prefs: slot})

	s.SetSearch("acme")
	s.SetFilterStatus("qualified")
	s.SetSortDescending(false)

	want := prefs.View{Search: "acme", FilterStatus: "Qualified", SortDescending: false}
	assert.Equal(t, want, s.View())
	assert.Equal(t, want, prefs.LoadView(slot))

	raw, ok, err := slot.Get(prefs.ViewKey)
	require.NoError(t, err)
	require.True(t, ok)
	var wire map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &wire))
	assert.Equal(t, map[string]any{"search": "acme", "filterStatus": "Qualified", "sortDesc": false}, wire)
}

func TestNew_ReadsPersistedPreferences(t *testing.T) {
	slot := prefs.NewMemorySlot()
	require.NoError(t, prefs.SaveView(slot, prefs.View{Search: "beta", FilterStatus: "all", SortDescending: false}))

	s := New(Options{Prefs: slot})
	assert.Equal(t, prefs.View{Search: "beta", FilterStatus: "all", SortDescending: false}, s.View())
}

func TestNew_CorruptPreferencesUseDefaults(t *testing.T) {
	slot := prefs.NewMemorySlot()
	require.NoError(t, slot.Set(prefs.ViewKey, "{{{"))
	s := New(Options{Prefs: slot})
	assert.Equal(t, prefs.DefaultView(), s.View())
}

type failingSlot struct{}

func (failingSlot) Get(string) (string, bool, error) { return "", false, errors.New("read denied") }
func (failingSlot) Set(string, string) error         { return errors.New("write denied") }

func TestSetters_WriteFailureIsObservedNotRaised(t *testing.T) {
	obs := &recordingObserver{}
	s := New(Options{Prefs: failingSlot{}, Observer: obs})

	s.SetSearch("x")

	assert.Equal(t, "x", s.View().Search)
	assert.Equal(t, []string{OpSavePrefs}, obs.ops())
	assert.Empty(t, s.Snapshot().LastError)
}

func TestSnapshot_ReturnsIndependentCopies(t *testing.T) {
	s := loadedStore(t, Options{})
	amount := 1.0
	s.ConvertLeadToOpportunity("l1", &amount)

	snap := s.Snapshot()
	snap.Leads[0].Name = "mutated"
	*snap.Opportunities[0].Amount = 42

	again := s.Snapshot()
	assert.NotEqual(t, "mutated", again.Leads[0].Name)
	assert.Equal(t, 1.0, *again.Opportunities[0].Amount)
}

func TestSnapshot_VersionAdvancesOnChange(t *testing.T) {
	s := loadedStore(t, Options{})
	v1 := s.Snapshot().Version
	s.SetSearch("a")
	v2 := s.Snapshot().Version
	assert.Greater(t, v2, v1)
}
