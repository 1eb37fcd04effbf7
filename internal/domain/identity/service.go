package identity

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AdhamBanishamsah/dronline-connect-sub000/internal/platform/auth"
	"github.com/AdhamBanishamsah/dronline-connect-sub000/internal/platform/i18n"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("user not found")
	ErrConflict     = errors.New("conflict")
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type Service struct {
	users  UserRepository
	issuer *auth.TokenIssuer
}

func NewService(users UserRepository, issuer *auth.TokenIssuer) *Service {
	return &Service{users: users, issuer: issuer}
}

type RegisterInput struct {
	Email             string     `json:"email"`
	Password          string     `json:"password"`
	FullName          string     `json:"full_name"`
	Role              string     `json:"role"`
	Phone             *string    `json:"phone,omitempty"`
	DateOfBirth       *time.Time `json:"date_of_birth,omitempty"`
	Specialty         *string    `json:"specialty,omitempty"`
	PreferredLanguage string     `json:"preferred_language,omitempty"`
}

// Register creates a patient or doctor account. Doctors start unapproved and
// must be approved by an admin before they can take on consultations.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if !emailPattern.MatchString(in.Email) {
		return nil, fmt.Errorf("%w: invalid email", ErrValidation)
	}
	if strings.TrimSpace(in.FullName) == "" {
		return nil, fmt.Errorf("%w: full name is required", ErrValidation)
	}
	if in.Role != auth.RolePatient && in.Role != auth.RoleDoctor {
		return nil, fmt.Errorf("%w: role must be %s or %s", ErrValidation, auth.RolePatient, auth.RoleDoctor)
	}
	lang := i18n.LangEnglish
	if in.PreferredLanguage != "" {
		lang = i18n.Parse(in.PreferredLanguage)
		if !lang.Valid() {
			return nil, fmt.Errorf("%w: unsupported language %q", ErrValidation, in.PreferredLanguage)
		}
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		return nil, fmt.Errorf("%w: email already registered", ErrConflict)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	u := &User{
		Email:             in.Email,
		PasswordHash:      hash,
		FullName:          strings.TrimSpace(in.FullName),
		Role:              in.Role,
		Phone:             in.Phone,
		DateOfBirth:       in.DateOfBirth,
		Specialty:         in.Specialty,
		IsApproved:        in.Role == auth.RolePatient,
		PreferredLanguage: string(lang),
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Authenticate verifies credentials and returns the user with a signed token.
// Blocked accounts cannot sign in. An unapproved doctor may sign in; approval
// gates claiming work, not access to the account.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, string, error) {
	u, err := s.users.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, "", fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
		}
		return nil, "", err
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return nil, "", fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}
	if u.IsBlocked {
		return nil, "", fmt.Errorf("%w: account is blocked", ErrForbidden)
	}
	token, err := s.issuer.Issue(u.ID, u.Role, u.Email)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// GetUser returns a profile. Anyone may read their own profile or an approved
// doctor's; everything else is admin-only.
func (s *Service) GetUser(ctx context.Context, actor auth.Actor, id uuid.UUID) (*User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.IsAdmin() || actor.ID == id {
		return u, nil
	}
	if u.Role == auth.RoleDoctor && u.IsApproved && !u.IsBlocked {
		return u, nil
	}
	return nil, ErrForbidden
}

// ListUsers is the admin user index, optionally restricted to one role.
func (s *Service) ListUsers(ctx context.Context, actor auth.Actor, role string, limit, offset int) ([]*User, int, error) {
	if !actor.IsAdmin() {
		return nil, 0, ErrForbidden
	}
	if role != "" {
		if !auth.ValidRole(role) {
			return nil, 0, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
		}
		return s.users.ListByRole(ctx, role, limit, offset)
	}
	return s.users.List(ctx, limit, offset)
}

// ListDoctors is the directory of approved, unblocked doctors. Open to any
// signed-in user.
func (s *Service) ListDoctors(ctx context.Context, limit, offset int) ([]*User, int, error) {
	return s.users.ListApprovedDoctors(ctx, limit, offset)
}

// SetApproval approves or un-approves a doctor. Admin only.
func (s *Service) SetApproval(ctx context.Context, actor auth.Actor, id uuid.UUID, approved bool) (*User, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Role != auth.RoleDoctor {
		return nil, fmt.Errorf("%w: approval applies to doctors only", ErrValidation)
	}
	u.IsApproved = approved
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Reject removes an unapproved doctor account. Admin only.
func (s *Service) Reject(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if u.Role != auth.RoleDoctor {
		return fmt.Errorf("%w: only doctor accounts can be rejected", ErrValidation)
	}
	if u.IsApproved {
		return fmt.Errorf("%w: doctor is already approved", ErrConflict)
	}
	return s.users.Delete(ctx, id)
}

// SetBlocked blocks or unblocks an account. Admin only; admins cannot block
// themselves.
func (s *Service) SetBlocked(ctx context.Context, actor auth.Actor, id uuid.UUID, blocked bool) (*User, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	if actor.ID == id && blocked {
		return nil, fmt.Errorf("%w: cannot block your own account", ErrValidation)
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	u.IsBlocked = blocked
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

type UpdateProfileInput struct {
	FullName          *string    `json:"full_name,omitempty"`
	Phone             *string    `json:"phone,omitempty"`
	DateOfBirth       *time.Time `json:"date_of_birth,omitempty"`
	Specialty         *string    `json:"specialty,omitempty"`
	PreferredLanguage *string    `json:"preferred_language,omitempty"`
}

func (in UpdateProfileInput) empty() bool {
	return in.FullName == nil && in.Phone == nil && in.DateOfBirth == nil &&
		in.Specialty == nil && in.PreferredLanguage == nil
}

// UpdateProfile applies a partial profile update. Self or admin.
func (s *Service) UpdateProfile(ctx context.Context, actor auth.Actor, id uuid.UUID, in UpdateProfileInput) (*User, error) {
	if !actor.IsAdmin() && actor.ID != id {
		return nil, ErrForbidden
	}
	if in.empty() {
		return nil, fmt.Errorf("%w: no fields to update", ErrValidation)
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.FullName != nil {
		if strings.TrimSpace(*in.FullName) == "" {
			return nil, fmt.Errorf("%w: full name cannot be empty", ErrValidation)
		}
		u.FullName = strings.TrimSpace(*in.FullName)
	}
	if in.Phone != nil {
		u.Phone = in.Phone
	}
	if in.DateOfBirth != nil {
		u.DateOfBirth = in.DateOfBirth
	}
	if in.Specialty != nil {
		u.Specialty = in.Specialty
	}
	if in.PreferredLanguage != nil {
		lang := i18n.Parse(*in.PreferredLanguage)
		if !lang.Valid() {
			return nil, fmt.Errorf("%w: unsupported language %q", ErrValidation, *in.PreferredLanguage)
		}
		u.PreferredLanguage = string(lang)
	}
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}
