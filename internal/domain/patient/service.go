package patient

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	patients Repository
	tags     TagRepository
}

func NewService(patients Repository, tags TagRepository) *Service {
	return &Service{patients: patients, tags: tags}
}

var validPatientStatuses = map[string]bool{
	"active": true, "paused": true, "completed": true, "archived": true,
}

func (s *Service) CreatePatient(ctx context.Context, p *Patient) error {
	if p.FirstName == "" && p.LastName == "" {
		return fmt.Errorf("patient name is required")
	}
	if p.Status == "" {
		p.Status = "active"
	}
	if !validPatientStatuses[p.Status] {
		return fmt.Errorf("invalid patient status: %s", p.Status)
	}
	if p.HeightCM != nil && *p.HeightCM <= 0 {
		return fmt.Errorf("height_cm must be positive")
	}
	if p.WeightKG != nil && *p.WeightKG <= 0 {
		return fmt.Errorf("weight_kg must be positive")
	}
	return s.patients.Create(ctx, p)
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

func (s *Service) UpdatePatient(ctx context.Context, p *Patient) error {
	if p.Status != "" && !validPatientStatuses[p.Status] {
		return fmt.Errorf("invalid patient status: %s", p.Status)
	}
	return s.patients.Update(ctx, p)
}

func (s *Service) DeletePatient(ctx context.Context, id uuid.UUID) error {
	return s.patients.Delete(ctx, id)
}

func (s *Service) ListPatients(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.patients.List(ctx, limit, offset)
}

func (s *Service) SearchPatients(ctx context.Context, name string, limit, offset int) ([]*Patient, int, error) {
	return s.patients.Search(ctx, name, limit, offset)
}

func (s *Service) AssignTags(ctx context.Context, patientID uuid.UUID, tagIDs []uuid.UUID) error {
	if patientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	for _, tagID := range tagIDs {
		if _, err := s.tags.GetByID(ctx, tagID); err != nil {
			return fmt.Errorf("unknown tag %s", tagID)
		}
	}
	return s.patients.SetTags(ctx, patientID, tagIDs)
}

// -- Tags --

func (s *Service) CreateTag(ctx context.Context, t *Tag) error {
	if t.Name == "" {
		return fmt.Errorf("tag name is required")
	}
	if t.Color == "" {
		t.Color = "#94a3b8"
	}
	return s.tags.Create(ctx, t)
}

func (s *Service) GetTag(ctx context.Context, id uuid.UUID) (*Tag, error) {
	return s.tags.GetByID(ctx, id)
}

func (s *Service) UpdateTag(ctx context.Context, t *Tag) error {
	if t.Name == "" {
		return fmt.Errorf("tag name is required")
	}
	return s.tags.Update(ctx, t)
}

func (s *Service) DeleteTag(ctx context.Context, id uuid.UUID) error {
	return s.tags.Delete(ctx, id)
}

func (s *Service) ListTags(ctx context.Context) ([]*Tag, error) {
	return s.tags.List(ctx)
}
