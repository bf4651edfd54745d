package calendar

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/slimclinic/slimclinic/internal/domain/patient"
	"github.com/slimclinic/slimclinic/internal/domain/treatment"
)

// -- Fake Store --

type fakeStore struct {
	mu sync.Mutex

	patients   []*patient.Patient
	injections map[uuid.UUID][]*treatment.Injection
	steps      map[uuid.UUID][]*treatment.Step

	listErr  error
	fetchErr map[uuid.UUID]error

	// blockFetch, when non-nil, is closed to release in-flight fetches.
	blockFetch chan struct{}
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		injections: make(map[uuid.UUID][]*treatment.Injection),
		steps:      make(map[uuid.UUID][]*treatment.Step),
		fetchErr:   make(map[uuid.UUID]error),
	}
}

func (f *fakeStore) addPatient(firstName, lastName string) *patient.Patient {
	p := &patient.Patient{ID: uuid.New(), FirstName: firstName, LastName: lastName, Status: "active"}
	f.patients = append(f.patients, p)
	return p
}

func (f *fakeStore) addInjection(patientID uuid.UUID, date string, dosage float64) *treatment.Injection {
	applied, _ := time.ParseInLocation("2006-01-02", date, time.Local)
	inj := &treatment.Injection{ID: uuid.New(), PatientID: patientID, AppliedAt: applied, DosageMG: dosage, Status: "applied"}
	f.injections[patientID] = append(f.injections[patientID], inj)
	return inj
}

func (f *fakeStore) addStep(patientID uuid.UUID, date, status string, dosage float64) *treatment.Step {
	st := &treatment.Step{ID: uuid.New(), PatientID: patientID, Date: date, Status: status, DosageMG: dosage}
	f.steps[patientID] = append(f.steps[patientID], st)
	return st
}

func (f *fakeStore) ListPatients(_ context.Context) ([]*patient.Patient, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.patients, nil
}

func (f *fakeStore) InjectionsInRange(_ context.Context, patientID uuid.UUID, from, to string) ([]*treatment.Injection, error) {
	f.mu.Lock()
	gate := f.blockFetch
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fetchErr[patientID]; err != nil {
		return nil, err
	}
	var result []*treatment.Injection
	for _, inj := range f.injections[patientID] {
		d := inj.DateOnly()
		if d >= from && d <= to {
			result = append(result, inj)
		}
	}
	return result, nil
}

func (f *fakeStore) StepsInRange(_ context.Context, patientID uuid.UUID, from, to string) ([]*treatment.Step, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fetchErr[patientID]; err != nil {
		return nil, err
	}
	var result []*treatment.Step
	for _, st := range f.steps[patientID] {
		if st.Date >= from && st.Date <= to {
			result = append(result, st)
		}
	}
	return result, nil
}

func newTestConsolidator(store Store) *Consolidator {
	return NewConsolidator(store, zerolog.Nop(), 7, 14)
}

func mustLoad(t *testing.T, c *Consolidator, anchor time.Time) {
	t.Helper()
	if err := c.LoadRange(context.Background(), anchor); err != nil {
		t.Fatalf("LoadRange: %v", err)
	}
}

func anchorMay2024() time.Time {
	return time.Date(2024, time.May, 15, 0, 0, 0, 0, time.Local)
}

// -- Window --

func TestRangeForMonth_PaddedWindow(t *testing.T) {
	c := newTestConsolidator(newFakeStore())
	from, to := c.RangeForMonth(anchorMay2024())
	if from != "2024-04-24" {
		t.Errorf("expected fetch start 2024-04-24, got %s", from)
	}
	if to != "2024-06-14" {
		t.Errorf("expected fetch end 2024-06-14, got %s", to)
	}
}

func TestRangeForMonth_FebruaryLeapYear(t *testing.T) {
	c := newTestConsolidator(newFakeStore())
	from, to := c.RangeForMonth(time.Date(2024, time.February, 10, 0, 0, 0, 0, time.Local))
	if from != "2024-01-25" {
		t.Errorf("expected fetch start 2024-01-25, got %s", from)
	}
	if to != "2024-03-14" {
		t.Errorf("expected fetch end 2024-03-14, got %s", to)
	}
}

// -- NormalizeDateOnly --

func TestNormalizeDateOnly(t *testing.T) {
	cases := []struct {
		raw string
		ok  bool
	}{
		{"2024-05-06", true},
		{"2024-12-31", true},
		{"2024-02-29", true},
		{"2023-02-29", false},
		{"2024-13-01", false},
		{"2024-00-10", false},
		{"2024-05-32", false},
		{"2024-05", false},
		{"05/06/2024", false},
		{"", false},
		{"garbage", false},
		{"2024-aa-06", false},
	}
	for _, tc := range cases {
		got, ok := NormalizeDateOnly(tc.raw)
		if ok != tc.ok {
			t.Errorf("NormalizeDateOnly(%q): ok=%v, want %v", tc.raw, ok, tc.ok)
			continue
		}
		if !ok {
			continue
		}
		if got.Hour() != 12 {
			t.Errorf("NormalizeDateOnly(%q): hour=%d, want 12", tc.raw, got.Hour())
		}
		if got.Format("2006-01-02") != tc.raw {
			t.Errorf("NormalizeDateOnly(%q) round-tripped to %s", tc.raw, got.Format("2006-01-02"))
		}
	}
}

// -- GroupByDay --

func TestGroupByDay(t *testing.T) {
	day1, _ := NormalizeDateOnly("2024-05-06")
	day2, _ := NormalizeDateOnly("2024-05-07")
	p1, p2 := uuid.New(), uuid.New()
	events := []Event{
		{ID: uuid.New(), Date: day1, PatientID: p1, Type: EventTypeInjection},
		{ID: uuid.New(), Date: day2, PatientID: p1, Type: EventTypeForecast},
		{ID: uuid.New(), Date: day1, PatientID: p2, Type: EventTypeForecast},
	}

	grouped := GroupByDay(events)
	if len(grouped) != 2 {
		t.Fatalf("expected 2 day buckets, got %d", len(grouped))
	}
	total := 0
	for _, bucket := range grouped {
		total += len(bucket)
	}
	if total != len(events) {
		t.Errorf("grouping must be total: %d events in, %d out", len(events), total)
	}
	bucket := grouped[DayKeyFor(day1)]
	if len(bucket) != 2 {
		t.Fatalf("expected 2 events on day1, got %d", len(bucket))
	}
	if bucket[0].ID != events[0].ID || bucket[1].ID != events[2].ID {
		t.Error("input order must be preserved within a bucket")
	}
}

// -- Dedupe --

func TestDedupe_InjectionSuppressesForecast(t *testing.T) {
	p := uuid.New()
	day := []Event{
		{ID: uuid.New(), PatientID: p, Type: EventTypeForecast, Status: "scheduled"},
		{ID: uuid.New(), PatientID: p, Type: EventTypeInjection, Status: "applied"},
	}
	result := Dedupe(day)
	if len(result) != 1 {
		t.Fatalf("expected 1 event after dedupe, got %d", len(result))
	}
	if result[0].Type != EventTypeInjection {
		t.Errorf("expected the injection to survive, got %s", result[0].Type)
	}
}

func TestDedupe_CancelledForecastRetained(t *testing.T) {
	p := uuid.New()
	day := []Event{
		{ID: uuid.New(), PatientID: p, Type: EventTypeInjection, Status: "applied"},
		{ID: uuid.New(), PatientID: p, Type: EventTypeForecast, Status: "cancelled", Cancelled: true},
	}
	result := Dedupe(day)
	if len(result) != 2 {
		t.Fatalf("cancelled forecast must be retained: got %d events", len(result))
	}
}

func TestDedupe_OtherPatientsUnaffected(t *testing.T) {
	p1, p2 := uuid.New(), uuid.New()
	day := []Event{
		{ID: uuid.New(), PatientID: p1, Type: EventTypeInjection},
		{ID: uuid.New(), PatientID: p1, Type: EventTypeForecast},
		{ID: uuid.New(), PatientID: p2, Type: EventTypeForecast},
	}
	result := Dedupe(day)
	if len(result) != 2 {
		t.Fatalf("expected 2 events, got %d", len(result))
	}
	for _, ev := range result {
		if ev.PatientID == p2 && ev.Type != EventTypeForecast {
			t.Error("p2's forecast should be untouched")
		}
	}
}

// -- LoadRange --

func TestLoadRange_ConsolidatesAcrossPatients(t *testing.T) {
	store := newFakeStore()
	alice := store.addPatient("Alice", "Andersson")
	bob := store.addPatient("Bob", "Berg")
	store.addInjection(alice.ID, "2024-05-06", 0.5)
	store.addStep(alice.ID, "2024-05-06", "scheduled", 0.5) // superseded
	store.addStep(alice.ID, "2024-05-13", "scheduled", 0.5)
	store.addStep(bob.ID, "2024-05-06", "scheduled", 0.25)

	c := newTestConsolidator(store)
	mustLoad(t, c, anchorMay2024())

	day6, _ := NormalizeDateOnly("2024-05-06")
	events := c.EventsForDay(DayKeyFor(day6))
	if len(events) != 2 {
		t.Fatalf("expected 2 events on 2024-05-06 (alice injection + bob forecast), got %d", len(events))
	}
	byPatient := map[uuid.UUID]string{}
	for _, ev := range events {
		byPatient[ev.PatientID] = ev.Type
	}
	if byPatient[alice.ID] != EventTypeInjection {
		t.Errorf("alice should show her injection, got %s", byPatient[alice.ID])
	}
	if byPatient[bob.ID] != EventTypeForecast {
		t.Errorf("bob should keep his forecast, got %s", byPatient[bob.ID])
	}

	day13, _ := NormalizeDateOnly("2024-05-13")
	if got := c.EventsForDay(DayKeyFor(day13)); len(got) != 1 {
		t.Errorf("expected alice's 2024-05-13 forecast, got %d events", len(got))
	}
}

func TestLoadRange_WindowBoundsInclusive(t *testing.T) {
	store := newFakeStore()
	p := store.addPatient("Cara", "Chen")
	store.addStep(p.ID, "2024-04-23", "scheduled", 0.25) // before window
	store.addStep(p.ID, "2024-04-24", "scheduled", 0.25) // first day
	store.addStep(p.ID, "2024-06-14", "scheduled", 0.25) // last day
	store.addStep(p.ID, "2024-06-15", "scheduled", 0.25) // after window

	c := newTestConsolidator(store)
	mustLoad(t, c, anchorMay2024())

	if got := c.LastLoad().EventCount; got != 2 {
		t.Errorf("expected 2 events inside inclusive window, got %d", got)
	}
}

func TestLoadRange_MalformedDateDropsRecordOnly(t *testing.T) {
	store := newFakeStore()
	p := store.addPatient("Dan", "Dahl")
	store.addStep(p.ID, "2024-05-06", "scheduled", 0.25)
	// malformed dates pass the fake's string range filter but must be
	// dropped during normalization without failing the load
	st := &treatment.Step{ID: uuid.New(), PatientID: p.ID, Date: "2024-05-XX", Status: "scheduled"}
	store.steps[p.ID] = append(store.steps[p.ID], st)

	c := newTestConsolidator(store)
	mustLoad(t, c, anchorMay2024())

	if got := c.LastLoad().EventCount; got != 1 {
		t.Errorf("expected malformed record dropped, valid one kept: got %d events", got)
	}
}

func TestLoadRange_PatientListFailureIsTotal(t *testing.T) {
	store := newFakeStore()
	p := store.addPatient("Eve", "Ek")
	store.addInjection(p.ID, "2024-05-06", 0.5)

	c := newTestConsolidator(store)
	mustLoad(t, c, anchorMay2024())
	if c.LastLoad().EventCount != 1 {
		t.Fatal("precondition: first load should have one event")
	}

	store.listErr = fmt.Errorf("connection refused")
	if err := c.LoadRange(context.Background(), anchorMay2024()); err == nil {
		t.Fatal("expected error when patient list fails")
	}
	if got := len(c.Days()); got != 0 {
		t.Errorf("failed load must leave an empty calendar, got %d days", got)
	}
}

func TestLoadRange_PerPatientFailureIsPartial(t *testing.T) {
	store := newFakeStore()
	ok1 := store.addPatient("Fay", "Falk")
	bad := store.addPatient("Gus", "Gran")
	ok2 := store.addPatient("Hed", "Holm")
	store.addInjection(ok1.ID, "2024-05-06", 0.5)
	store.addInjection(bad.ID, "2024-05-06", 0.5)
	store.addStep(ok2.ID, "2024-05-07", "scheduled", 0.25)
	store.fetchErr[bad.ID] = fmt.Errorf("timeout")

	c := newTestConsolidator(store)
	mustLoad(t, c, anchorMay2024())

	stats := c.LastLoad()
	if stats.EventCount != 2 {
		t.Errorf("expected 2 events from healthy patients, got %d", stats.EventCount)
	}
	if len(stats.FailedIDs) != 1 || stats.FailedIDs[0] != bad.ID {
		t.Errorf("expected exactly the failed patient recorded, got %v", stats.FailedIDs)
	}
	for _, events := range c.Days() {
		for _, ev := range events {
			if ev.PatientID == bad.ID {
				t.Error("failed patient must contribute zero events")
			}
		}
	}
}

func TestLoadRange_StaleLoadDiscarded(t *testing.T) {
	store := newFakeStore()
	p := store.addPatient("Ida", "Ivarsson")
	store.addInjection(p.ID, "2024-05-06", 0.5)
	store.blockFetch = make(chan struct{})

	c := newTestConsolidator(store)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		// slow load, started first
		_ = c.LoadRange(context.Background(), anchorMay2024())
	}()
	// let the slow load park inside the store
	time.Sleep(20 * time.Millisecond)

	// fast load for June, started second; its store calls must not block
	store.mu.Lock()
	blocked := store.blockFetch
	store.blockFetch = nil
	store.mu.Unlock()
	mustLoad(t, c, time.Date(2024, time.June, 1, 0, 0, 0, 0, time.Local))
	juneStats := c.LastLoad()

	close(blocked)
	wg.Wait()

	if got := c.LastLoad(); got.From != juneStats.From || got.To != juneStats.To {
		t.Errorf("stale May load overwrote the June load: window %s..%s", got.From, got.To)
	}
}

func TestEventsForDay_EmptyWhenNone(t *testing.T) {
	c := newTestConsolidator(newFakeStore())
	mustLoad(t, c, anchorMay2024())
	day, _ := NormalizeDateOnly("2024-05-06")
	events := c.EventsForDay(DayKeyFor(day))
	if events == nil || len(events) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", events)
	}
}

func TestLoading_FlagDuringLoad(t *testing.T) {
	store := newFakeStore()
	store.addPatient("Jon", "Juhl")
	store.blockFetch = make(chan struct{})

	c := newTestConsolidator(store)
	done := make(chan struct{})
	go func() {
		_ = c.LoadRange(context.Background(), anchorMay2024())
		close(done)
	}()
	time.Sleep(20 * time.Millisecond)
	if !c.Loading() {
		t.Error("Loading() should be true while a load is in flight")
	}
	close(store.blockFetch)
	<-done
	if c.Loading() {
		t.Error("Loading() should be false after the load completes")
	}
}
