package medication

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, m *Medication) error
	GetByID(ctx context.Context, id uuid.UUID) (*Medication, error)
	Update(ctx context.Context, m *Medication) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Medication, int, error)
	// Dose tiers
	AddDoseTier(ctx context.Context, dt *DoseTier) error
	GetDoseTiers(ctx context.Context, medicationID uuid.UUID) ([]*DoseTier, error)
	RemoveDoseTier(ctx context.Context, id uuid.UUID) error
}

type StockRepository interface {
	Get(ctx context.Context, medicationID uuid.UUID, dosageMG float64) (*StockLevel, error)
	ListByMedication(ctx context.Context, medicationID uuid.UUID) ([]*StockLevel, error)
	// Adjust atomically applies delta to the stock row, creating it when
	// absent, and returns the resulting level. Implementations must reject
	// adjustments that would drive the quantity negative.
	Adjust(ctx context.Context, medicationID uuid.UUID, dosageMG float64, delta int) (*StockLevel, error)
}
