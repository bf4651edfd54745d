package treatment

import (
	"time"

	"github.com/google/uuid"
)

// Plan is a patient's dosing programme for one medication. Steps are
// generated against the plan and carry the per-week escalation.
type Plan struct {
	ID           uuid.UUID `json:"id"`
	PatientID    uuid.UUID `json:"patient_id"`
	MedicationID uuid.UUID `json:"medication_id"`
	Status       string    `json:"status"`
	StartDate    string    `json:"start_date"`
	TotalWeeks   int       `json:"total_weeks"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Step is one forecast dosing event on a plan. Date is date-only in
// YYYY-MM-DD form; time-of-day is not tracked for forecasts.
type Step struct {
	ID          uuid.UUID `json:"id"`
	PlanID      uuid.UUID `json:"plan_id"`
	PatientID   uuid.UUID `json:"patient_id"`
	Date        string    `json:"date"`
	DosageMG    float64   `json:"dosage_mg"`
	Status      string    `json:"status"`
	Details     string    `json:"details,omitempty"`
	Progress    int       `json:"progress"`
	CurrentWeek int       `json:"current_week"`
	TotalWeeks  int       `json:"total_weeks"`
	IsSkipped   bool      `json:"is_skipped"`
	OrderIndex  int       `json:"order_index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Injection is an administered dose. Unlike forecast steps it records
// the actual application timestamp.
type Injection struct {
	ID        uuid.UUID `json:"id"`
	PatientID uuid.UUID `json:"patient_id"`
	PlanID    *uuid.UUID `json:"plan_id,omitempty"`
	AppliedAt time.Time `json:"applied_at"`
	DosageMG  float64   `json:"dosage_mg"`
	Status    string    `json:"status"`
	LotNumber string    `json:"lot_number,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// DateOnly returns the injection's application date in YYYY-MM-DD form.
func (i *Injection) DateOnly() string {
	return i.AppliedAt.Format("2006-01-02")
}
