// Package auth implements membership accounts: registration with email
// confirmation, credential login with signed session tokens, and the
// password reset workflow.
package auth

import (
	"time"

	"github.com/google/uuid"
)

const maxNameLen = 100

// User represents a member account.
type User struct {
	ID             uuid.UUID
	Email          string
	Name           string
	PasswordHash   []byte
	EmailConfirmed bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// PublicUser is the wire representation of a user, stripped of credentials.
type PublicUser struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	Name           string `json:"name,omitempty"`
	EmailConfirmed bool   `json:"email_confirmed"`
	CreatedAt      string `json:"created_at"`
}

// Public converts a User to its wire representation.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:             u.ID.String(),
		Email:          u.Email,
		Name:           u.Name,
		EmailConfirmed: u.EmailConfirmed,
		CreatedAt:      u.CreatedAt.UTC().Format(time.RFC3339),
	}
}
