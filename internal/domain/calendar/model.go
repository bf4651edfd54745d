package calendar

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeInjection = "injection"
	EventTypeForecast  = "forecast"
)

// Event is a single calendar entry, either an administered injection or
// a forecast medication step, flattened with the owning patient's
// display fields so the HTTP layer never re-joins.
type Event struct {
	ID              uuid.UUID   `json:"id"`
	Date            time.Time   `json:"date"`
	PatientID       uuid.UUID   `json:"patient_id"`
	PatientName     string      `json:"patient_name"`
	PatientInitials string      `json:"patient_initials"`
	PatientAvatar   string      `json:"patient_avatar,omitempty"`
	PatientTags     []uuid.UUID `json:"patient_tags,omitempty"`
	Type            string      `json:"type"`
	Status          string      `json:"status"`
	DosageMG        float64     `json:"dosage_mg"`
	// Cancelled is meaningful for forecast events only.
	Cancelled bool `json:"cancelled"`

	// Forecast metadata; zero for injections.
	Details     string `json:"details,omitempty"`
	Progress    int    `json:"progress,omitempty"`
	CurrentWeek int    `json:"current_week,omitempty"`
	TotalWeeks  int    `json:"total_weeks,omitempty"`
	OrderIndex  int    `json:"order_index,omitempty"`
}

// DayKey identifies one calendar day independent of time-of-day and
// location quirks in the underlying timestamps.
type DayKey struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
	Day   int        `json:"day"`
}

// DayKeyFor buckets a time into its calendar day.
func DayKeyFor(t time.Time) DayKey {
	return DayKey{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// String renders the key in YYYY-MM-DD form for JSON map keys.
func (k DayKey) String() string {
	return time.Date(k.Year, k.Month, k.Day, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
}
