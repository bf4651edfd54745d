package calendar

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/slimclinic/slimclinic/internal/domain/patient"
	"github.com/slimclinic/slimclinic/internal/domain/treatment"
)

// Consolidator merges injections and forecast medication steps into a
// single per-day event table for one month-sized view at a time. Loads
// replace the whole table; there is no incremental update.
type Consolidator struct {
	store     Store
	log       zerolog.Logger
	pastPad   int
	futurePad int

	// gen orders concurrent loads; only the latest started load may
	// publish its result, stale completions are discarded.
	gen     atomic.Uint64
	loading atomic.Int32

	mu       sync.RWMutex
	table    map[DayKey][]Event
	lastLoad LoadStats
}

// LoadStats describes the most recently applied load.
type LoadStats struct {
	From       string      `json:"from"`
	To         string      `json:"to"`
	Patients   int         `json:"patients"`
	FailedIDs  []uuid.UUID `json:"failed_patient_ids,omitempty"`
	EventCount int         `json:"event_count"`
	LoadedAt   time.Time   `json:"loaded_at"`
}

func NewConsolidator(store Store, log zerolog.Logger, pastPadDays, futurePadDays int) *Consolidator {
	if pastPadDays <= 0 {
		pastPadDays = 7
	}
	if futurePadDays <= 0 {
		futurePadDays = 14
	}
	return &Consolidator{
		store:     store,
		log:       log.With().Str("component", "calendar").Logger(),
		pastPad:   pastPadDays,
		futurePad: futurePadDays,
		table:     make(map[DayKey][]Event),
	}
}

// RangeForMonth computes the padded fetch window around the anchor's
// month: the month's first day minus the past pad through the month's
// last day plus the future pad, so edge days of the rendered grid and
// upcoming doses are present without a second fetch.
func (c *Consolidator) RangeForMonth(anchor time.Time) (from, to string) {
	monthStart := time.Date(anchor.Year(), anchor.Month(), 1, 12, 0, 0, 0, time.Local)
	monthEnd := monthStart.AddDate(0, 1, -1)
	fetchStart := monthStart.AddDate(0, 0, -c.pastPad)
	fetchEnd := monthEnd.AddDate(0, 0, c.futurePad)
	return fetchStart.Format("2006-01-02"), fetchEnd.Format("2006-01-02")
}

// NormalizeDateOnly parses a YYYY-MM-DD string into a local time at
// noon. Noon keeps day arithmetic stable across DST transitions. The
// second return is false for anything malformed; callers drop such
// records rather than fail the load.
func NormalizeDateOnly(raw string) (time.Time, bool) {
	parts := strings.Split(raw, "-")
	if len(parts) != 3 {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil || year < 1 {
		return time.Time{}, false
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(parts[2])
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 12, 0, 0, 0, time.Local)
	// time.Date normalizes overflow (Feb 31 -> Mar 2); reject those.
	if t.Year() != year || t.Month() != time.Month(month) || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

// patientResult carries one patient's fetch outcome through the fan-in
// barrier. A non-nil err means the patient contributes zero events.
type patientResult struct {
	patientID uuid.UUID
	events    []Event
	err       error
}

// LoadRange fetches and consolidates all events in the padded window
// around the anchor's month, then atomically replaces the event table.
// A failure listing patients fails the whole load and empties the
// table; a failure fetching one patient's records only drops that
// patient from the result.
func (c *Consolidator) LoadRange(ctx context.Context, anchor time.Time) error {
	gen := c.gen.Add(1)
	c.loading.Add(1)
	defer c.loading.Add(-1)

	from, to := c.RangeForMonth(anchor)

	patients, err := c.store.ListPatients(ctx)
	if err != nil {
		c.publish(gen, map[DayKey][]Event{}, LoadStats{From: from, To: to, LoadedAt: time.Now()})
		return fmt.Errorf("list patients: %w", err)
	}

	results := make([]patientResult, len(patients))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range patients {
		i, p := i, p
		g.Go(func() error {
			results[i] = c.fetchPatient(gctx, p, from, to)
			return nil
		})
	}
	g.Wait()

	var events []Event
	var failed []uuid.UUID
	for _, res := range results {
		if res.err != nil {
			failed = append(failed, res.patientID)
			c.log.Warn().
				Err(res.err).
				Str("patient_id", res.patientID.String()).
				Str("from", from).
				Str("to", to).
				Msg("patient fetch failed, excluded from calendar")
			continue
		}
		events = append(events, res.events...)
	}

	table := make(map[DayKey][]Event)
	for key, dayEvents := range GroupByDay(events) {
		table[key] = Dedupe(dayEvents)
	}
	count := 0
	for _, dayEvents := range table {
		count += len(dayEvents)
	}

	applied := c.publish(gen, table, LoadStats{
		From:       from,
		To:         to,
		Patients:   len(patients),
		FailedIDs:  failed,
		EventCount: count,
		LoadedAt:   time.Now(),
	})
	if !applied {
		c.log.Debug().Uint64("generation", gen).Msg("stale load discarded")
	}
	return nil
}

// publish swaps in a completed load unless a newer load has started
// since; stale results are dropped so a slow early load can never
// overwrite a fresher one.
func (c *Consolidator) publish(gen uint64, table map[DayKey][]Event, stats LoadStats) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen.Load() {
		return false
	}
	c.table = table
	c.lastLoad = stats
	return true
}

func (c *Consolidator) fetchPatient(ctx context.Context, p *patient.Patient, from, to string) patientResult {
	injections, err := c.store.InjectionsInRange(ctx, p.ID, from, to)
	if err != nil {
		return patientResult{patientID: p.ID, err: fmt.Errorf("injections: %w", err)}
	}
	steps, err := c.store.StepsInRange(ctx, p.ID, from, to)
	if err != nil {
		return patientResult{patientID: p.ID, err: fmt.Errorf("steps: %w", err)}
	}

	events := make([]Event, 0, len(injections)+len(steps))
	for _, inj := range injections {
		ev, ok := c.injectionEvent(p, inj)
		if !ok {
			continue
		}
		events = append(events, ev)
	}
	for _, st := range steps {
		ev, ok := c.stepEvent(p, st)
		if !ok {
			continue
		}
		events = append(events, ev)
	}
	return patientResult{patientID: p.ID, events: events}
}

func (c *Consolidator) injectionEvent(p *patient.Patient, inj *treatment.Injection) (Event, bool) {
	date, ok := NormalizeDateOnly(inj.DateOnly())
	if !ok {
		c.log.Warn().
			Str("injection_id", inj.ID.String()).
			Str("raw_date", inj.DateOnly()).
			Msg("dropping injection with malformed date")
		return Event{}, false
	}
	return Event{
		ID:              inj.ID,
		Date:            date,
		PatientID:       p.ID,
		PatientName:     p.FullName(),
		PatientInitials: p.Initials(),
		PatientAvatar:   strDeref(p.AvatarURL),
		PatientTags:     p.TagIDs,
		Type:            EventTypeInjection,
		Status:          inj.Status,
		DosageMG:        inj.DosageMG,
	}, true
}

func (c *Consolidator) stepEvent(p *patient.Patient, st *treatment.Step) (Event, bool) {
	date, ok := NormalizeDateOnly(st.Date)
	if !ok {
		c.log.Warn().
			Str("step_id", st.ID.String()).
			Str("raw_date", st.Date).
			Msg("dropping forecast step with malformed date")
		return Event{}, false
	}
	return Event{
		ID:              st.ID,
		Date:            date,
		PatientID:       p.ID,
		PatientName:     p.FullName(),
		PatientInitials: p.Initials(),
		PatientAvatar:   strDeref(p.AvatarURL),
		PatientTags:     p.TagIDs,
		Type:            EventTypeForecast,
		Status:          st.Status,
		DosageMG:        st.DosageMG,
		Cancelled:       st.Status == "cancelled" || st.IsSkipped,
		Details:         st.Details,
		Progress:        st.Progress,
		CurrentWeek:     st.CurrentWeek,
		TotalWeeks:      st.TotalWeeks,
		OrderIndex:      st.OrderIndex,
	}, true
}

func strDeref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// GroupByDay buckets events by calendar day. Every event lands in
// exactly one bucket and relative order within a bucket follows input
// order.
func GroupByDay(events []Event) map[DayKey][]Event {
	grouped := make(map[DayKey][]Event)
	for _, ev := range events {
		key := DayKeyFor(ev.Date)
		grouped[key] = append(grouped[key], ev)
	}
	return grouped
}

// Dedupe removes the forecast events of patients that already have an
// injection on the same day: the administered dose supersedes the
// forecast. Cancelled forecasts are kept so the day still shows what
// was called off.
func Dedupe(dayEvents []Event) []Event {
	injected := make(map[uuid.UUID]bool)
	for _, ev := range dayEvents {
		if ev.Type == EventTypeInjection {
			injected[ev.PatientID] = true
		}
	}
	result := make([]Event, 0, len(dayEvents))
	for _, ev := range dayEvents {
		if ev.Type == EventTypeForecast && !ev.Cancelled && injected[ev.PatientID] {
			continue
		}
		result = append(result, ev)
	}
	return result
}

// EventsForDay returns the consolidated events for one day, empty when
// the day has none or falls outside the loaded window.
func (c *Consolidator) EventsForDay(day DayKey) []Event {
	c.mu.RLock()
	defer c.mu.RUnlock()
	events := c.table[day]
	out := make([]Event, len(events))
	copy(out, events)
	return out
}

// Days returns the full consolidated table keyed by YYYY-MM-DD.
func (c *Consolidator) Days() map[string][]Event {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string][]Event, len(c.table))
	for key, events := range c.table {
		dayEvents := make([]Event, len(events))
		copy(dayEvents, events)
		out[key.String()] = dayEvents
	}
	return out
}

// Loading reports whether any load is currently in flight.
func (c *Consolidator) Loading() bool {
	return c.loading.Load() > 0
}

// LastLoad returns the stats of the most recently applied load.
func (c *Consolidator) LastLoad() LoadStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastLoad
}
