package models

import (
	"time"

	"github.com/google/uuid"
)

type Organization struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Website     *string   `json:"website,omitempty"`
	Description *string   `json:"description,omitempty"`
	// SiteTitle/SiteDescription are filled best-effort from the
	// organization's website metadata.
	SiteTitle       *string   `json:"site_title,omitempty"`
	SiteDescription *string   `json:"site_description,omitempty"`
	OwnerUserID     uuid.UUID `json:"owner_user_id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (o *Organization) Snapshot() map[string]any {
	m := map[string]any{
		"id":            o.ID.String(),
		"name":          o.Name,
		"owner_user_id": o.OwnerUserID.String(),
	}
	if o.Website != nil {
		m["website"] = *o.Website
	}
	if o.Description != nil {
		m["description"] = *o.Description
	}
	return m
}
