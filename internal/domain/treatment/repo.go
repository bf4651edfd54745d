package treatment

import (
	"context"

	"github.com/google/uuid"
)

type PlanRepository interface {
	Create(ctx context.Context, p *Plan) error
	GetByID(ctx context.Context, id uuid.UUID) (*Plan, error)
	Update(ctx context.Context, p *Plan) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Plan, error)
}

type StepRepository interface {
	Create(ctx context.Context, st *Step) error
	CreateBatch(ctx context.Context, steps []*Step) error
	GetByID(ctx context.Context, id uuid.UUID) (*Step, error)
	Update(ctx context.Context, st *Step) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByPlan(ctx context.Context, planID uuid.UUID) ([]*Step, error)
	// InRange returns a patient's steps whose date falls inside
	// [from, to] inclusive. Bounds are YYYY-MM-DD strings.
	InRange(ctx context.Context, patientID uuid.UUID, from, to string) ([]*Step, error)
}

type InjectionRepository interface {
	Create(ctx context.Context, inj *Injection) error
	GetByID(ctx context.Context, id uuid.UUID) (*Injection, error)
	Update(ctx context.Context, inj *Injection) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Injection, int, error)
	// InRange returns a patient's injections applied inside
	// [from, to] inclusive on the application date.
	InRange(ctx context.Context, patientID uuid.UUID, from, to string) ([]*Injection, error)
}
