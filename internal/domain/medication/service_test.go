package medication

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
)

// -- Mock Repositories --

type mockRepo struct {
	meds  map[uuid.UUID]*Medication
	tiers map[uuid.UUID]*DoseTier
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		meds:  make(map[uuid.UUID]*Medication),
		tiers: make(map[uuid.UUID]*DoseTier),
	}
}

func (m *mockRepo) Create(_ context.Context, med *Medication) error {
	med.ID = uuid.New()
	med.CreatedAt = time.Now()
	med.UpdatedAt = time.Now()
	m.meds[med.ID] = med
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Medication, error) {
	med, ok := m.meds[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return med, nil
}

func (m *mockRepo) Update(_ context.Context, med *Medication) error {
	m.meds[med.ID] = med
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.meds, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Medication, int, error) {
	var result []*Medication
	for _, med := range m.meds {
		result = append(result, med)
	}
	return result, len(result), nil
}

func (m *mockRepo) AddDoseTier(_ context.Context, dt *DoseTier) error {
	dt.ID = uuid.New()
	m.tiers[dt.ID] = dt
	return nil
}

func (m *mockRepo) GetDoseTiers(_ context.Context, medicationID uuid.UUID) ([]*DoseTier, error) {
	var result []*DoseTier
	for _, dt := range m.tiers {
		if dt.MedicationID == medicationID {
			result = append(result, dt)
		}
	}
	return result, nil
}

func (m *mockRepo) RemoveDoseTier(_ context.Context, id uuid.UUID) error {
	delete(m.tiers, id)
	return nil
}

type mockStockRepo struct {
	levels map[string]*StockLevel
}

func newMockStockRepo() *mockStockRepo {
	return &mockStockRepo{levels: make(map[string]*StockLevel)}
}

func stockKey(medicationID uuid.UUID, dosageMG float64) string {
	return fmt.Sprintf("%s/%.2f", medicationID, dosageMG)
}

func (m *mockStockRepo) Get(_ context.Context, medicationID uuid.UUID, dosageMG float64) (*StockLevel, error) {
	s, ok := m.levels[stockKey(medicationID, dosageMG)]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return s, nil
}

func (m *mockStockRepo) ListByMedication(_ context.Context, medicationID uuid.UUID) ([]*StockLevel, error) {
	var result []*StockLevel
	for _, s := range m.levels {
		if s.MedicationID == medicationID {
			result = append(result, s)
		}
	}
	return result, nil
}

func (m *mockStockRepo) Adjust(_ context.Context, medicationID uuid.UUID, dosageMG float64, delta int) (*StockLevel, error) {
	key := stockKey(medicationID, dosageMG)
	s, ok := m.levels[key]
	if !ok {
		if delta < 0 {
			return nil, fmt.Errorf("insufficient stock: have 0, want %d", -delta)
		}
		s = &StockLevel{ID: uuid.New(), MedicationID: medicationID, DosageMG: dosageMG, Quantity: delta}
		m.levels[key] = s
		return s, nil
	}
	if s.Quantity+delta < 0 {
		return nil, fmt.Errorf("insufficient stock: have %d, want %d", s.Quantity, -delta)
	}
	s.Quantity += delta
	return s, nil
}

// -- Tests --

func newTestService() *Service {
	return NewService(newMockRepo(), newMockStockRepo())
}

func TestCreateMedication_Defaults(t *testing.T) {
	svc := newTestService()
	m := &Medication{Name: "Semaglutide"}
	if err := svc.CreateMedication(context.Background(), m); err != nil {
		t.Fatalf("CreateMedication: %v", err)
	}
	if m.Form != "injection-pen" {
		t.Errorf("expected default form, got %q", m.Form)
	}
	if m.Status != "active" {
		t.Errorf("expected default status, got %q", m.Status)
	}
}

func TestCreateMedication_RequiresName(t *testing.T) {
	svc := newTestService()
	if err := svc.CreateMedication(context.Background(), &Medication{}); err == nil {
		t.Fatal("expected error for medication without name")
	}
}

func TestCreateMedication_RejectsBadForm(t *testing.T) {
	svc := newTestService()
	m := &Medication{Name: "X", Form: "syrup"}
	if err := svc.CreateMedication(context.Background(), m); err == nil {
		t.Fatal("expected error for invalid form")
	}
}

func TestPriceForDose(t *testing.T) {
	svc := newTestService()
	m := &Medication{Name: "Semaglutide"}
	if err := svc.CreateMedication(context.Background(), m); err != nil {
		t.Fatal(err)
	}
	tiers := []struct {
		dosage float64
		price  int64
	}{
		{0.25, 24900},
		{0.5, 24900},
		{1.0, 29900},
		{2.4, 39900},
	}
	for i, tt := range tiers {
		dt := &DoseTier{MedicationID: m.ID, DosageMG: tt.dosage, PriceCents: tt.price, OrderIndex: i}
		if err := svc.AddDoseTier(context.Background(), dt); err != nil {
			t.Fatal(err)
		}
	}

	price, err := svc.PriceForDose(context.Background(), m.ID, 1.0)
	if err != nil {
		t.Fatalf("PriceForDose: %v", err)
	}
	if price != 29900 {
		t.Errorf("expected 29900, got %d", price)
	}

	if _, err := svc.PriceForDose(context.Background(), m.ID, 5.0); err == nil {
		t.Error("expected error for unknown dosage")
	}
}

func TestAddDoseTier_Validation(t *testing.T) {
	svc := newTestService()
	cases := []*DoseTier{
		{DosageMG: 1, PriceCents: 100},                                   // missing medication
		{MedicationID: uuid.New(), DosageMG: 0, PriceCents: 100},         // zero dosage
		{MedicationID: uuid.New(), DosageMG: 1, PriceCents: -5},          // negative price
	}
	for i, dt := range cases {
		if err := svc.AddDoseTier(context.Background(), dt); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}

func TestAdjustStock(t *testing.T) {
	svc := newTestService()
	medID := uuid.New()

	level, err := svc.AdjustStock(context.Background(), medID, 1.0, 10)
	if err != nil {
		t.Fatalf("AdjustStock: %v", err)
	}
	if level.Quantity != 10 {
		t.Errorf("expected 10, got %d", level.Quantity)
	}

	level, err = svc.AdjustStock(context.Background(), medID, 1.0, -3)
	if err != nil {
		t.Fatalf("AdjustStock: %v", err)
	}
	if level.Quantity != 7 {
		t.Errorf("expected 7, got %d", level.Quantity)
	}
}

func TestAdjustStock_RefusesNegative(t *testing.T) {
	svc := newTestService()
	medID := uuid.New()

	if _, err := svc.AdjustStock(context.Background(), medID, 1.0, 5); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AdjustStock(context.Background(), medID, 1.0, -6); err == nil {
		t.Fatal("expected error driving stock negative")
	}
}

func TestAdjustStock_Validation(t *testing.T) {
	svc := newTestService()
	if _, err := svc.AdjustStock(context.Background(), uuid.Nil, 1.0, 1); err == nil {
		t.Error("expected error for nil medication id")
	}
	if _, err := svc.AdjustStock(context.Background(), uuid.New(), 0, 1); err == nil {
		t.Error("expected error for zero dosage")
	}
	if _, err := svc.AdjustStock(context.Background(), uuid.New(), 1.0, 0); err == nil {
		t.Error("expected error for zero delta")
	}
}
