package calendar

import (
	"context"

	"github.com/google/uuid"

	"github.com/slimclinic/slimclinic/internal/domain/patient"
	"github.com/slimclinic/slimclinic/internal/domain/treatment"
)

// storeRepos adapts the patient and treatment repositories to the
// consolidator's Store interface.
type storeRepos struct {
	patients   patient.Repository
	steps      treatment.StepRepository
	injections treatment.InjectionRepository
}

func NewStore(patients patient.Repository, steps treatment.StepRepository, injections treatment.InjectionRepository) Store {
	return &storeRepos{patients: patients, steps: steps, injections: injections}
}

func (s *storeRepos) ListPatients(ctx context.Context) ([]*patient.Patient, error) {
	return s.patients.ListAll(ctx)
}

func (s *storeRepos) InjectionsInRange(ctx context.Context, patientID uuid.UUID, from, to string) ([]*treatment.Injection, error) {
	return s.injections.InRange(ctx, patientID, from, to)
}

func (s *storeRepos) StepsInRange(ctx context.Context, patientID uuid.UUID, from, to string) ([]*treatment.Step, error) {
	return s.steps.InRange(ctx, patientID, from, to)
}
