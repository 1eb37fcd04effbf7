package disease

import (
	"context"

	"github.com/google/uuid"
)

type DiseaseRepository interface {
	Create(ctx context.Context, d *Disease) error
	GetByID(ctx context.Context, id uuid.UUID) (*Disease, error)
	Update(ctx context.Context, d *Disease) error
	Delete(ctx context.Context, id uuid.UUID) error
	// List returns all diseases ordered by English name.
	List(ctx context.Context, limit, offset int) ([]*Disease, int, error)
}
