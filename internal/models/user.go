package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	PasswordHash string     `json:"-"`
	GoogleID     *string    `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

// Snapshot returns the JSON-shaped view of the user used for audit
// before/after data. The password hash is deliberately absent.
func (u *User) Snapshot() map[string]any {
	return map[string]any{
		"id":    u.ID.String(),
		"email": u.Email,
		"name":  u.Name,
	}
}
