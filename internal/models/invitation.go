package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	InvitationPending  = "pending"
	InvitationAccepted = "accepted"
	InvitationRevoked  = "revoked"
	InvitationExpired  = "expired"
)

type Invitation struct {
	ID             uuid.UUID `json:"id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	Email          string    `json:"email"`
	Role           string    `json:"role"`
	Token          string    `json:"token,omitempty"`
	Status         string    `json:"status"`
	InvitedBy      uuid.UUID `json:"invited_by"`
	ExpiresAt      time.Time `json:"expires_at"`
	CreatedAt      time.Time `json:"created_at"`
}

func (i *Invitation) Snapshot() map[string]any {
	return map[string]any{
		"id":              i.ID.String(),
		"organization_id": i.OrganizationID.String(),
		"email":           i.Email,
		"role":            i.Role,
		"status":          i.Status,
	}
}
