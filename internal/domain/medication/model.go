package medication

import (
	"time"

	"github.com/google/uuid"
)

// Medication maps to the medication table (clinic drug catalog).
type Medication struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	GenericName *string   `db:"generic_name" json:"generic_name,omitempty"`
	Form        string    `db:"form" json:"form"` // injection-pen, vial, tablet
	Status      string    `db:"status" json:"status"`
	Description *string   `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// DoseTier maps to the medication_dose_tier table. Each tier is a purchasable
// dosage step with its price; the ordered tiers form the escalation ladder
// used by treatment plans.
type DoseTier struct {
	ID           uuid.UUID `db:"id" json:"id"`
	MedicationID uuid.UUID `db:"medication_id" json:"medication_id"`
	DosageMG     float64   `db:"dosage_mg" json:"dosage_mg"`
	PriceCents   int64     `db:"price_cents" json:"price_cents"`
	OrderIndex   int       `db:"order_index" json:"order_index"`
}

// StockLevel maps to the medication_stock table. Stock is tracked per
// medication and dosage so pens of different strengths count separately.
type StockLevel struct {
	ID           uuid.UUID `db:"id" json:"id"`
	MedicationID uuid.UUID `db:"medication_id" json:"medication_id"`
	DosageMG     float64   `db:"dosage_mg" json:"dosage_mg"`
	Quantity     int       `db:"quantity" json:"quantity"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
