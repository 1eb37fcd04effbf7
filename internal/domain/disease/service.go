package disease

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/AdhamBanishamsah/dronline-connect-sub000/internal/platform/auth"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrForbidden  = errors.New("forbidden")
	ErrNotFound   = errors.New("disease not found")
	ErrConflict   = errors.New("conflict")
)

type Service struct {
	diseases DiseaseRepository
}

func NewService(diseases DiseaseRepository) *Service {
	return &Service{diseases: diseases}
}

type DiseaseInput struct {
	NameEN string `json:"name_en"`
	NameAR string `json:"name_ar"`
}

// Create adds a disease to the reference list. Admin only; both language
// names are required.
func (s *Service) Create(ctx context.Context, actor auth.Actor, in DiseaseInput) (*Disease, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	in.NameEN = strings.TrimSpace(in.NameEN)
	in.NameAR = strings.TrimSpace(in.NameAR)
	if in.NameEN == "" || in.NameAR == "" {
		return nil, fmt.Errorf("%w: both english and arabic names are required", ErrValidation)
	}
	d := &Disease{NameEN: in.NameEN, NameAR: in.NameAR}
	if err := s.diseases.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Disease, error) {
	return s.diseases.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Disease, int, error) {
	return s.diseases.List(ctx, limit, offset)
}

// Update renames a disease. Admin only; a name may be changed independently
// but neither may become empty.
func (s *Service) Update(ctx context.Context, actor auth.Actor, id uuid.UUID, in DiseaseInput) (*Disease, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	d, err := s.diseases.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.NameEN != "" {
		d.NameEN = strings.TrimSpace(in.NameEN)
	}
	if in.NameAR != "" {
		d.NameAR = strings.TrimSpace(in.NameAR)
	}
	if d.NameEN == "" || d.NameAR == "" {
		return nil, fmt.Errorf("%w: names cannot be empty", ErrValidation)
	}
	if err := s.diseases.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Delete removes a disease. Admin only; deleting one still referenced by a
// consultation surfaces ErrConflict from the repository.
func (s *Service) Delete(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	if _, err := s.diseases.GetByID(ctx, id); err != nil {
		return err
	}
	return s.diseases.Delete(ctx, id)
}
