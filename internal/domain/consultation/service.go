package consultation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/AdhamBanishamsah/dronline-connect-sub000/internal/platform/auth"
	"github.com/AdhamBanishamsah/dronline-connect-sub000/internal/platform/i18n"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrForbidden  = errors.New("forbidden")
	ErrNotFound   = errors.New("consultation not found")
	ErrConflict   = errors.New("conflict")
)

type Service struct {
	consultations ConsultationRepository
	users         UserLookup
	diseases      DiseaseLookup
}

func NewService(consultations ConsultationRepository, users UserLookup, diseases DiseaseLookup) *Service {
	return &Service{consultations: consultations, users: users, diseases: diseases}
}

type CreateInput struct {
	DiseaseID   uuid.UUID `json:"disease_id"`
	Description string    `json:"description"`
	Symptoms    string    `json:"symptoms"`
	Images      []string  `json:"images"`
	VoiceMemo   *string   `json:"voice_memo,omitempty"`
}

// Create opens a consultation for the acting patient. It starts pending and
// unassigned regardless of input.
func (s *Service) Create(ctx context.Context, actor auth.Actor, in CreateInput) (*Consultation, error) {
	if !actor.IsPatient() {
		return nil, fmt.Errorf("%w: only patients open consultations", ErrForbidden)
	}
	if strings.TrimSpace(in.Description) == "" {
		return nil, fmt.Errorf("%w: description is required", ErrValidation)
	}
	if len(in.Images) > MaxImages {
		return nil, fmt.Errorf("%w: at most %d images", ErrValidation, MaxImages)
	}
	if _, err := s.diseases.GetByID(ctx, in.DiseaseID); err != nil {
		return nil, fmt.Errorf("%w: unknown disease", ErrValidation)
	}
	if in.Images == nil {
		in.Images = []string{}
	}
	c := &Consultation{
		PatientID:   actor.ID,
		DiseaseID:   in.DiseaseID,
		Description: strings.TrimSpace(in.Description),
		Symptoms:    strings.TrimSpace(in.Symptoms),
		Status:      StatusPending,
		Images:      in.Images,
		VoiceMemo:   in.VoiceMemo,
	}
	if err := s.consultations.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// ListForActor returns the consultations the actor may see: patients their
// own, doctors their worklist, admins everything (optionally by status).
func (s *Service) ListForActor(ctx context.Context, actor auth.Actor, status string, limit, offset int) ([]*Consultation, int, error) {
	if status != "" && !ValidStatus(status) {
		return nil, 0, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	switch {
	case actor.IsAdmin():
		return s.consultations.ListAll(ctx, status, limit, offset)
	case actor.IsDoctor():
		return s.consultations.ListWorklist(ctx, actor.ID, limit, offset)
	default:
		return s.consultations.ListByPatient(ctx, actor.ID, limit, offset)
	}
}

func (s *Service) canRead(actor auth.Actor, c *Consultation) bool {
	if actor.IsAdmin() || c.PatientID == actor.ID {
		return true
	}
	if actor.IsDoctor() {
		if c.DoctorID != nil {
			return *c.DoctorID == actor.ID
		}
		return c.Status == StatusPending
	}
	return false
}

// Detail is the full consultation view: the row, its comment thread and the
// disease display name in the requested language.
type Detail struct {
	Consultation *Consultation `json:"consultation"`
	DiseaseName  string        `json:"disease_name"`
	Direction    string        `json:"direction"`
	Comments     []*Comment    `json:"comments"`
}

// GetDetail loads one consultation with comments. Access follows the same
// rules as listing; anything out of reach is reported as not found only when
// the row truly does not exist, otherwise forbidden.
func (s *Service) GetDetail(ctx context.Context, actor auth.Actor, id uuid.UUID, lang i18n.Lang) (*Detail, error) {
	c, err := s.consultations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.canRead(actor, c) {
		return nil, ErrForbidden
	}
	comments, err := s.consultations.ListComments(ctx, id)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []*Comment{}
	}
	d := &Detail{Consultation: c, Direction: lang.Direction(), Comments: comments}
	if dis, err := s.diseases.GetByID(ctx, c.DiseaseID); err == nil {
		d.DiseaseName = dis.LocalizedName(lang)
	}
	return d, nil
}

// Assign puts a doctor on a consultation and moves it to in_progress. A
// doctor may only claim an unassigned pending consultation for themselves,
// and only once approved. Admins may force-assign any doctor at any point.
func (s *Service) Assign(ctx context.Context, actor auth.Actor, id, doctorID uuid.UUID) (*Consultation, error) {
	c, err := s.consultations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	doc, err := s.users.GetByID(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown doctor", ErrValidation)
	}
	if doc.Role != auth.RoleDoctor {
		return nil, fmt.Errorf("%w: assignee is not a doctor", ErrValidation)
	}

	switch {
	case actor.IsAdmin():
		// force-assign allowed at any status
	case actor.IsDoctor():
		if doctorID != actor.ID {
			return nil, fmt.Errorf("%w: doctors may only claim for themselves", ErrForbidden)
		}
		if !doc.IsApproved || doc.IsBlocked {
			return nil, fmt.Errorf("%w: doctor is not approved", ErrForbidden)
		}
		if c.Assigned() || c.Status != StatusPending {
			return nil, fmt.Errorf("%w: consultation is already taken", ErrConflict)
		}
	default:
		return nil, ErrForbidden
	}

	c.DoctorID = &doctorID
	c.Status = StatusInProgress
	if err := s.consultations.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateStatus moves a consultation along its lifecycle. Doctors move their
// own consultations forward only; admins may set any status.
func (s *Service) UpdateStatus(ctx context.Context, actor auth.Actor, id uuid.UUID, status string) (*Consultation, error) {
	if !ValidStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	c, err := s.consultations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch {
	case actor.IsAdmin():
	case actor.IsDoctor():
		if c.DoctorID == nil || *c.DoctorID != actor.ID {
			return nil, fmt.Errorf("%w: not your consultation", ErrForbidden)
		}
		if statusRank[status] <= statusRank[c.Status] {
			return nil, fmt.Errorf("%w: cannot move from %s back to %s", ErrValidation, c.Status, status)
		}
	default:
		return nil, ErrForbidden
	}
	c.Status = status
	if err := s.consultations.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// AddComment appends to the thread. Only the owning patient, the assigned
// doctor or an admin may write; the author's role is captured with the row.
func (s *Service) AddComment(ctx context.Context, actor auth.Actor, id uuid.UUID, content string) (*Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: comment cannot be empty", ErrValidation)
	}
	c, err := s.consultations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	participant := actor.IsAdmin() || c.PatientID == actor.ID ||
		(c.DoctorID != nil && *c.DoctorID == actor.ID)
	if !participant {
		return nil, fmt.Errorf("%w: only participants may comment", ErrForbidden)
	}
	cm := &Comment{
		ConsultationID: id,
		AuthorID:       actor.ID,
		AuthorRole:     actor.Role,
		Content:        content,
	}
	if err := s.consultations.AddComment(ctx, cm); err != nil {
		return nil, err
	}
	return cm, nil
}

type UpdateInput struct {
	Images    *[]string  `json:"images,omitempty"`
	VoiceMemo *string    `json:"voice_memo,omitempty"`
	DiseaseID *uuid.UUID `json:"disease_id,omitempty"`
	DoctorID  *uuid.UUID `json:"doctor_id,omitempty"`
	Status    *string    `json:"status,omitempty"`
}

func (in UpdateInput) empty() bool {
	return in.Images == nil && in.VoiceMemo == nil && in.DiseaseID == nil &&
		in.DoctorID == nil && in.Status == nil
}

// UpdateFields applies a partial update. The owning patient may change
// attachments while the consultation is open; disease, doctor and status are
// admin territory. PatientID and CreatedAt are never writable.
func (s *Service) UpdateFields(ctx context.Context, actor auth.Actor, id uuid.UUID, in UpdateInput) (*Consultation, error) {
	if in.empty() {
		return nil, fmt.Errorf("%w: no fields to update", ErrValidation)
	}
	c, err := s.consultations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	patientEdit := in.Images != nil || in.VoiceMemo != nil
	adminEdit := in.DiseaseID != nil || in.DoctorID != nil || in.Status != nil

	if adminEdit && !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: field requires admin", ErrForbidden)
	}
	if patientEdit && !actor.IsAdmin() {
		if c.PatientID != actor.ID {
			return nil, ErrForbidden
		}
		if c.Status == StatusCompleted {
			return nil, fmt.Errorf("%w: consultation is completed", ErrConflict)
		}
	}

	if in.Images != nil {
		if len(*in.Images) > MaxImages {
			return nil, fmt.Errorf("%w: at most %d images", ErrValidation, MaxImages)
		}
		c.Images = *in.Images
	}
	if in.VoiceMemo != nil {
		c.VoiceMemo = in.VoiceMemo
	}
	if in.DiseaseID != nil {
		if _, err := s.diseases.GetByID(ctx, *in.DiseaseID); err != nil {
			return nil, fmt.Errorf("%w: unknown disease", ErrValidation)
		}
		c.DiseaseID = *in.DiseaseID
	}
	if in.DoctorID != nil {
		doc, err := s.users.GetByID(ctx, *in.DoctorID)
		if err != nil || doc.Role != auth.RoleDoctor {
			return nil, fmt.Errorf("%w: unknown doctor", ErrValidation)
		}
		c.DoctorID = in.DoctorID
	}
	if in.Status != nil {
		if !ValidStatus(*in.Status) {
			return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, *in.Status)
		}
		c.Status = *in.Status
	}

	if err := s.consultations.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes a consultation and its comments. Admin only.
func (s *Service) Delete(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	if _, err := s.consultations.GetByID(ctx, id); err != nil {
		return err
	}
	return s.consultations.Delete(ctx, id)
}
