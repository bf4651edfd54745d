package medication

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	medications Repository
	stock       StockRepository
}

func NewService(medications Repository, stock StockRepository) *Service {
	return &Service{medications: medications, stock: stock}
}

var validForms = map[string]bool{
	"injection-pen": true, "vial": true, "tablet": true,
}

var validMedicationStatuses = map[string]bool{
	"active": true, "discontinued": true,
}

func (s *Service) CreateMedication(ctx context.Context, m *Medication) error {
	if m.Name == "" {
		return fmt.Errorf("medication name is required")
	}
	if m.Form == "" {
		m.Form = "injection-pen"
	}
	if !validForms[m.Form] {
		return fmt.Errorf("invalid medication form: %s", m.Form)
	}
	if m.Status == "" {
		m.Status = "active"
	}
	if !validMedicationStatuses[m.Status] {
		return fmt.Errorf("invalid medication status: %s", m.Status)
	}
	return s.medications.Create(ctx, m)
}

func (s *Service) GetMedication(ctx context.Context, id uuid.UUID) (*Medication, error) {
	return s.medications.GetByID(ctx, id)
}

func (s *Service) UpdateMedication(ctx context.Context, m *Medication) error {
	if m.Status != "" && !validMedicationStatuses[m.Status] {
		return fmt.Errorf("invalid medication status: %s", m.Status)
	}
	return s.medications.Update(ctx, m)
}

func (s *Service) DeleteMedication(ctx context.Context, id uuid.UUID) error {
	return s.medications.Delete(ctx, id)
}

func (s *Service) ListMedications(ctx context.Context, limit, offset int) ([]*Medication, int, error) {
	return s.medications.List(ctx, limit, offset)
}

// -- Dose tiers --

func (s *Service) AddDoseTier(ctx context.Context, dt *DoseTier) error {
	if dt.MedicationID == uuid.Nil {
		return fmt.Errorf("medication_id is required")
	}
	if dt.DosageMG <= 0 {
		return fmt.Errorf("dosage_mg must be positive")
	}
	if dt.PriceCents < 0 {
		return fmt.Errorf("price_cents must not be negative")
	}
	return s.medications.AddDoseTier(ctx, dt)
}

func (s *Service) GetDoseTiers(ctx context.Context, medicationID uuid.UUID) ([]*DoseTier, error) {
	return s.medications.GetDoseTiers(ctx, medicationID)
}

func (s *Service) RemoveDoseTier(ctx context.Context, id uuid.UUID) error {
	return s.medications.RemoveDoseTier(ctx, id)
}

// PriceForDose looks up the price of the tier matching the given dosage.
func (s *Service) PriceForDose(ctx context.Context, medicationID uuid.UUID, dosageMG float64) (int64, error) {
	tiers, err := s.medications.GetDoseTiers(ctx, medicationID)
	if err != nil {
		return 0, err
	}
	for _, dt := range tiers {
		if dt.DosageMG == dosageMG {
			return dt.PriceCents, nil
		}
	}
	return 0, fmt.Errorf("no dose tier for %.2f mg", dosageMG)
}

// -- Stock --

func (s *Service) GetStock(ctx context.Context, medicationID uuid.UUID, dosageMG float64) (*StockLevel, error) {
	return s.stock.Get(ctx, medicationID, dosageMG)
}

func (s *Service) ListStock(ctx context.Context, medicationID uuid.UUID) ([]*StockLevel, error) {
	return s.stock.ListByMedication(ctx, medicationID)
}

// AdjustStock applies a signed delta to the stock of one medication dosage.
// A zero delta is rejected so accidental no-op submissions surface as errors.
func (s *Service) AdjustStock(ctx context.Context, medicationID uuid.UUID, dosageMG float64, delta int) (*StockLevel, error) {
	if medicationID == uuid.Nil {
		return nil, fmt.Errorf("medication_id is required")
	}
	if dosageMG <= 0 {
		return nil, fmt.Errorf("dosage_mg must be positive")
	}
	if delta == 0 {
		return nil, fmt.Errorf("delta must not be zero")
	}
	return s.stock.Adjust(ctx, medicationID, dosageMG, delta)
}
