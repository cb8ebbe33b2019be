package models

import (
	"time"

	"github.com/google/uuid"
)

type Member struct {
	ID             uuid.UUID `json:"id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	UserID         uuid.UUID `json:"user_id"`
	Role           string    `json:"role"`
	CreatedAt      time.Time `json:"created_at"`

	// Joined display fields, not stored on the membership row.
	UserEmail string `json:"user_email,omitempty"`
	UserName  string `json:"user_name,omitempty"`
}

func (m *Member) Snapshot() map[string]any {
	return map[string]any{
		"id":              m.ID.String(),
		"organization_id": m.OrganizationID.String(),
		"user_id":         m.UserID.String(),
		"role":            m.Role,
	}
}
