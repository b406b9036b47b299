package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is the closed set of admin roles. Keeping this a named type (rather
// than a bare string) means a typo in a role check fails validation instead
// of silently denying or granting access.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// Admin is an administrator account. An admin authenticates with a password,
// a GitHub identity, or both; at least one must be present (enforced by
// queries.AdminQueries.Create).
type Admin struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	Username       string     `json:"username" db:"username"`
	Email          *string    `json:"email,omitempty" db:"email"`
	PasswordHash   *string    `json:"-" db:"password_hash"` // Never include in JSON
	GitHubID       *string    `json:"-" db:"github_id"`
	GitHubUsername *string    `json:"github_username,omitempty" db:"github_username"`
	Role           Role       `json:"role" db:"role"`
	IsActive       bool       `json:"is_active" db:"is_active"`
	LastLogin      *time.Time `json:"last_login" db:"last_login"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

// HasPassword reports whether a password is set for this account.
// GitHub-only admins have no password hash.
func (a *Admin) HasPassword() bool {
	return a.PasswordHash != nil && *a.PasswordHash != ""
}
