package calendar

import (
	"context"

	"github.com/google/uuid"

	"github.com/slimclinic/slimclinic/internal/domain/patient"
	"github.com/slimclinic/slimclinic/internal/domain/treatment"
)

// Store is the storage capability the consolidator depends on. It is
// injected so tests can run against in-memory fakes; range bounds are
// inclusive YYYY-MM-DD strings.
type Store interface {
	ListPatients(ctx context.Context) ([]*patient.Patient, error)
	InjectionsInRange(ctx context.Context, patientID uuid.UUID, from, to string) ([]*treatment.Injection, error)
	StepsInRange(ctx context.Context, patientID uuid.UUID, from, to string) ([]*treatment.Step, error)
}
