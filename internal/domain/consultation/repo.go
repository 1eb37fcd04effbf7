package consultation

import (
	"context"

	"github.com/google/uuid"

	"github.com/AdhamBanishamsah/dronline-connect-sub000/internal/domain/disease"
	"github.com/AdhamBanishamsah/dronline-connect-sub000/internal/domain/identity"
)

type ConsultationRepository interface {
	Create(ctx context.Context, c *Consultation) error
	GetByID(ctx context.Context, id uuid.UUID) (*Consultation, error)
	Update(ctx context.Context, c *Consultation) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Consultation, int, error)
	// ListWorklist returns the doctor's assigned consultations together with
	// every unassigned pending one, newest first, without duplicates.
	ListWorklist(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Consultation, int, error)
	ListAll(ctx context.Context, status string, limit, offset int) ([]*Consultation, int, error)
	AddComment(ctx context.Context, cm *Comment) error
	ListComments(ctx context.Context, consultationID uuid.UUID) ([]*Comment, error)
}

// UserLookup is the slice of the identity repository the service needs to
// vet doctors and comment authors.
type UserLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*identity.User, error)
}

// DiseaseLookup resolves disease references on create and in detail views.
type DiseaseLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*disease.Disease, error)
}
