package patient

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Patient, int, error)
	// ListAll returns every non-archived patient. The calendar fans out
	// one fetch per patient, so it needs the full roster in one call.
	ListAll(ctx context.Context) ([]*Patient, error)
	Search(ctx context.Context, name string, limit, offset int) ([]*Patient, int, error)
	// Tags
	SetTags(ctx context.Context, patientID uuid.UUID, tagIDs []uuid.UUID) error
	GetTagIDs(ctx context.Context, patientID uuid.UUID) ([]uuid.UUID, error)
}

type TagRepository interface {
	Create(ctx context.Context, t *Tag) error
	GetByID(ctx context.Context, id uuid.UUID) (*Tag, error)
	Update(ctx context.Context, t *Tag) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*Tag, error)
}
