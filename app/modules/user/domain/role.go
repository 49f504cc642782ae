package userdomain

import "github.com/google/uuid"

// Role represents a user's role for authorization purposes.
type Role string

const (
	RoleViewer    Role = "viewer"
	RoleEvaluator Role = "evaluator"
	RoleAdmin     Role = "admin"
)

// SystemActorName is recorded on entries written by background jobs.
const SystemActorName = "system"

// IsValid checks if the role is a valid value.
func (r Role) IsValid() bool {
	switch r {
	case RoleViewer, RoleEvaluator, RoleAdmin:
		return true
	default:
		return false
	}
}

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// Actor is a resolved caller identity.
type Actor struct {
	UUID uuid.UUID
	Name string
	Role Role
}

// IsAdmin is the single capability check for administrator-only operations.
func IsAdmin(a *Actor) bool {
	return a != nil && a.Role == RoleAdmin
}

// System returns the actor used for unattended reconciliation and resets.
func System(id uuid.UUID) *Actor {
	return &Actor{UUID: id, Name: SystemActorName, Role: RoleAdmin}
}
