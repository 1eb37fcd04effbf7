package identity

import (
	"time"

	"github.com/google/uuid"

	"github.com/AdhamBanishamsah/dronline-connect-sub000/internal/platform/auth"
)

// User maps to the app_user table.
type User struct {
	ID                uuid.UUID  `db:"id" json:"id"`
	Email             string     `db:"email" json:"email"`
	PasswordHash      string     `db:"password_hash" json:"-"`
	FullName          string     `db:"full_name" json:"full_name"`
	Role              string     `db:"role" json:"role"`
	Phone             *string    `db:"phone" json:"phone,omitempty"`
	DateOfBirth       *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Specialty         *string    `db:"specialty" json:"specialty,omitempty"`
	IsApproved        bool       `db:"is_approved" json:"is_approved"`
	IsBlocked         bool       `db:"is_blocked" json:"is_blocked"`
	PreferredLanguage string     `db:"preferred_language" json:"preferred_language"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`
}

// Approved reports whether the user may act in their role. Approval only
// gates doctors; patients and admins are approved by construction.
func (u *User) Approved() bool {
	return u.Role != auth.RoleDoctor || u.IsApproved
}
