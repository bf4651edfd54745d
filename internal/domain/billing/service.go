package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	payments Repository
}

func NewService(payments Repository) *Service {
	return &Service{payments: payments}
}

var validPaymentStatuses = map[string]bool{
	"pending": true, "paid": true,
}

var validPaymentMethods = map[string]bool{
	"card": true, "cash": true, "transfer": true,
}

func (s *Service) CreatePayment(ctx context.Context, p *Payment) error {
	if p.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if p.AmountCents <= 0 {
		return fmt.Errorf("amount_cents must be positive")
	}
	if p.Method == "" {
		p.Method = "card"
	}
	if !validPaymentMethods[p.Method] {
		return fmt.Errorf("invalid payment method: %s", p.Method)
	}
	if p.Status == "" {
		p.Status = "pending"
	}
	if !validPaymentStatuses[p.Status] {
		return fmt.Errorf("invalid payment status: %s", p.Status)
	}
	if p.Status == "paid" && p.PaidAt == nil {
		now := time.Now()
		p.PaidAt = &now
	}
	return s.payments.Create(ctx, p)
}

func (s *Service) GetPayment(ctx context.Context, id uuid.UUID) (*Payment, error) {
	return s.payments.GetByID(ctx, id)
}

func (s *Service) UpdatePayment(ctx context.Context, p *Payment) error {
	if p.Status != "" && !validPaymentStatuses[p.Status] {
		return fmt.Errorf("invalid payment status: %s", p.Status)
	}
	if p.Method != "" && !validPaymentMethods[p.Method] {
		return fmt.Errorf("invalid payment method: %s", p.Method)
	}
	return s.payments.Update(ctx, p)
}

func (s *Service) DeletePayment(ctx context.Context, id uuid.UUID) error {
	return s.payments.Delete(ctx, id)
}

func (s *Service) ListPayments(ctx context.Context, status string, limit, offset int) ([]*Payment, int, error) {
	if status != "" && !validPaymentStatuses[status] {
		return nil, 0, fmt.Errorf("invalid payment status: %s", status)
	}
	return s.payments.List(ctx, status, limit, offset)
}

func (s *Service) ListPaymentsByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Payment, int, error) {
	return s.payments.ListByPatient(ctx, patientID, limit, offset)
}

// TogglePaid flips a payment between pending and paid. Marking paid
// stamps PaidAt; reverting to pending clears it.
func (s *Service) TogglePaid(ctx context.Context, id uuid.UUID) (*Payment, error) {
	p, err := s.payments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.IsPaid() {
		p.Status = "pending"
		p.PaidAt = nil
	} else {
		p.Status = "paid"
		now := time.Now()
		p.PaidAt = &now
	}
	if err := s.payments.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
