package auth

import (
	"context"

	"github.com/google/uuid"
)

// Role names used across the application. Every authenticated identity has
// exactly one role.
const (
	RolePatient = "patient"
	RoleDoctor  = "doctor"
	RoleAdmin   = "admin"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r string) bool {
	return r == RolePatient || r == RoleDoctor || r == RoleAdmin
}

// Actor identifies who is performing an operation. Services take the acting
// identity explicitly and enforce role checks themselves rather than trusting
// the routing layer alone.
type Actor struct {
	ID   uuid.UUID
	Role string
}

// IsAdmin reports whether the actor has the admin role.
func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// IsDoctor reports whether the actor has the doctor role.
func (a Actor) IsDoctor() bool { return a.Role == RoleDoctor }

// IsPatient reports whether the actor has the patient role.
func (a Actor) IsPatient() bool { return a.Role == RolePatient }

type contextKey string

const (
	UserIDKey    contextKey = "user_id"
	UserRoleKey  contextKey = "user_role"
	UserEmailKey contextKey = "user_email"
)

// WithActor returns a context carrying the actor's identity and role.
func WithActor(ctx context.Context, actor Actor, email string) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, actor.ID.String())
	ctx = context.WithValue(ctx, UserRoleKey, actor.Role)
	ctx = context.WithValue(ctx, UserEmailKey, email)
	return ctx
}

func UserIDFromContext(ctx context.Context) string {
	uid, _ := ctx.Value(UserIDKey).(string)
	return uid
}

func RoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(UserRoleKey).(string)
	return role
}

func EmailFromContext(ctx context.Context) string {
	email, _ := ctx.Value(UserEmailKey).(string)
	return email
}

// ActorFromContext extracts the authenticated actor from a request context.
// The second return value is false when no valid identity is present.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	uid, err := uuid.Parse(UserIDFromContext(ctx))
	if err != nil {
		return Actor{}, false
	}
	role := RoleFromContext(ctx)
	if !ValidRole(role) {
		return Actor{}, false
	}
	return Actor{ID: uid, Role: role}, true
}
