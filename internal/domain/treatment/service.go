package treatment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/slimclinic/slimclinic/internal/domain/medication"
)

// StockAdjuster is the slice of the medication service the treatment
// service needs: recording an injection consumes one unit of stock.
type StockAdjuster interface {
	AdjustStock(ctx context.Context, medicationID uuid.UUID, dosageMG float64, delta int) (*medication.StockLevel, error)
}

type Service struct {
	plans      PlanRepository
	steps      StepRepository
	injections InjectionRepository
	stock      StockAdjuster
}

func NewService(plans PlanRepository, steps StepRepository, injections InjectionRepository, stock StockAdjuster) *Service {
	return &Service{plans: plans, steps: steps, injections: injections, stock: stock}
}

var validPlanStatuses = map[string]bool{
	"active": true, "paused": true, "completed": true, "cancelled": true,
}

var validStepStatuses = map[string]bool{
	"scheduled": true, "completed": true, "cancelled": true,
}

var validInjectionStatuses = map[string]bool{
	"applied": true, "cancelled": true,
}

func validDateOnly(raw string) bool {
	_, err := time.Parse("2006-01-02", raw)
	return err == nil
}

// -- Plans --

func (s *Service) CreatePlan(ctx context.Context, p *Plan) error {
	if p.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if p.MedicationID == uuid.Nil {
		return fmt.Errorf("medication_id is required")
	}
	if !validDateOnly(p.StartDate) {
		return fmt.Errorf("start_date must be YYYY-MM-DD")
	}
	if p.TotalWeeks <= 0 {
		return fmt.Errorf("total_weeks must be positive")
	}
	if p.Status == "" {
		p.Status = "active"
	}
	if !validPlanStatuses[p.Status] {
		return fmt.Errorf("invalid plan status: %s", p.Status)
	}
	return s.plans.Create(ctx, p)
}

func (s *Service) GetPlan(ctx context.Context, id uuid.UUID) (*Plan, error) {
	return s.plans.GetByID(ctx, id)
}

func (s *Service) UpdatePlan(ctx context.Context, p *Plan) error {
	if p.Status != "" && !validPlanStatuses[p.Status] {
		return fmt.Errorf("invalid plan status: %s", p.Status)
	}
	if p.StartDate != "" && !validDateOnly(p.StartDate) {
		return fmt.Errorf("start_date must be YYYY-MM-DD")
	}
	return s.plans.Update(ctx, p)
}

func (s *Service) DeletePlan(ctx context.Context, id uuid.UUID) error {
	return s.plans.Delete(ctx, id)
}

func (s *Service) ListPlansByPatient(ctx context.Context, patientID uuid.UUID) ([]*Plan, error) {
	return s.plans.ListByPatient(ctx, patientID)
}

// GenerateSteps creates one scheduled step per week of the plan,
// starting on the plan's start date, dosed from the medication's tiers
// in order. When the plan outlasts the tier ladder the last tier's
// dosage is held for the remaining weeks.
func (s *Service) GenerateSteps(ctx context.Context, planID uuid.UUID, tiers []*medication.DoseTier) ([]*Step, error) {
	p, err := s.plans.GetByID(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("load plan: %w", err)
	}
	if len(tiers) == 0 {
		return nil, fmt.Errorf("medication has no dose tiers")
	}
	start, err := time.ParseInLocation("2006-01-02", p.StartDate, time.Local)
	if err != nil {
		return nil, fmt.Errorf("plan start_date: %w", err)
	}

	steps := make([]*Step, 0, p.TotalWeeks)
	for week := 0; week < p.TotalWeeks; week++ {
		tier := tiers[len(tiers)-1]
		if week < len(tiers) {
			tier = tiers[week]
		}
		steps = append(steps, &Step{
			PlanID:      p.ID,
			PatientID:   p.PatientID,
			Date:        start.AddDate(0, 0, week*7).Format("2006-01-02"),
			DosageMG:    tier.DosageMG,
			Status:      "scheduled",
			Progress:    (week * 100) / p.TotalWeeks,
			CurrentWeek: week + 1,
			TotalWeeks:  p.TotalWeeks,
			OrderIndex:  week,
		})
	}
	if err := s.steps.CreateBatch(ctx, steps); err != nil {
		return nil, fmt.Errorf("create steps: %w", err)
	}
	return steps, nil
}

// -- Steps --

func (s *Service) CreateStep(ctx context.Context, st *Step) error {
	if st.PlanID == uuid.Nil {
		return fmt.Errorf("plan_id is required")
	}
	if st.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if !validDateOnly(st.Date) {
		return fmt.Errorf("date must be YYYY-MM-DD")
	}
	if st.DosageMG <= 0 {
		return fmt.Errorf("dosage_mg must be positive")
	}
	if st.Status == "" {
		st.Status = "scheduled"
	}
	if !validStepStatuses[st.Status] {
		return fmt.Errorf("invalid step status: %s", st.Status)
	}
	return s.steps.Create(ctx, st)
}

func (s *Service) GetStep(ctx context.Context, id uuid.UUID) (*Step, error) {
	return s.steps.GetByID(ctx, id)
}

func (s *Service) UpdateStep(ctx context.Context, st *Step) error {
	if st.Status != "" && !validStepStatuses[st.Status] {
		return fmt.Errorf("invalid step status: %s", st.Status)
	}
	if st.Date != "" && !validDateOnly(st.Date) {
		return fmt.Errorf("date must be YYYY-MM-DD")
	}
	return s.steps.Update(ctx, st)
}

func (s *Service) DeleteStep(ctx context.Context, id uuid.UUID) error {
	return s.steps.Delete(ctx, id)
}

func (s *Service) ListStepsByPlan(ctx context.Context, planID uuid.UUID) ([]*Step, error) {
	return s.steps.ListByPlan(ctx, planID)
}

// SkipStep cancels a single forecast step without touching the rest of
// the plan.
func (s *Service) SkipStep(ctx context.Context, id uuid.UUID) (*Step, error) {
	st, err := s.steps.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	st.IsSkipped = true
	st.Status = "cancelled"
	if err := s.steps.Update(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

// -- Injections --

// RecordInjection persists an administered dose and decrements stock
// for the plan's medication. Stock is consumed first so an
// insufficient-stock condition fails the whole operation; if the
// injection row itself cannot be written the unit is returned to stock.
func (s *Service) RecordInjection(ctx context.Context, inj *Injection) error {
	if inj.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if inj.DosageMG <= 0 {
		return fmt.Errorf("dosage_mg must be positive")
	}
	if inj.AppliedAt.IsZero() {
		inj.AppliedAt = time.Now()
	}
	if inj.Status == "" {
		inj.Status = "applied"
	}
	if !validInjectionStatuses[inj.Status] {
		return fmt.Errorf("invalid injection status: %s", inj.Status)
	}

	var medID uuid.UUID
	if inj.PlanID != nil {
		p, err := s.plans.GetByID(ctx, *inj.PlanID)
		if err != nil {
			return fmt.Errorf("load plan: %w", err)
		}
		medID = p.MedicationID
		if _, err := s.stock.AdjustStock(ctx, medID, inj.DosageMG, -1); err != nil {
			return fmt.Errorf("consume stock: %w", err)
		}
	}

	if err := s.injections.Create(ctx, inj); err != nil {
		if medID != uuid.Nil {
			if _, rerr := s.stock.AdjustStock(ctx, medID, inj.DosageMG, 1); rerr != nil {
				return fmt.Errorf("record injection: %v (stock restore failed: %w)", err, rerr)
			}
		}
		return fmt.Errorf("record injection: %w", err)
	}
	return nil
}

func (s *Service) GetInjection(ctx context.Context, id uuid.UUID) (*Injection, error) {
	return s.injections.GetByID(ctx, id)
}

func (s *Service) UpdateInjection(ctx context.Context, inj *Injection) error {
	if inj.Status != "" && !validInjectionStatuses[inj.Status] {
		return fmt.Errorf("invalid injection status: %s", inj.Status)
	}
	return s.injections.Update(ctx, inj)
}

func (s *Service) DeleteInjection(ctx context.Context, id uuid.UUID) error {
	return s.injections.Delete(ctx, id)
}

func (s *Service) ListInjectionsByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Injection, int, error) {
	return s.injections.ListByPatient(ctx, patientID, limit, offset)
}
