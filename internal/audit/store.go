package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/orghub/backend/internal/models"
)

// LogFilter narrows a Query. Zero-value fields are ignored.
type LogFilter struct {
	UserID         *uuid.UUID
	OrganizationID *uuid.UUID
	Action         string
	TargetType     string
	Status         string
	Severity       string
	Category       string
	CorrelationID  string
	From           *time.Time
	To             *time.Time
}

// Page controls Query pagination and ordering.
type Page struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

// Store is the persistence contract for audit entries. The production
// implementation is repositories.AuditRepo over Postgres. The Find and
// Stats reads take an optional organization scope; nil means the
// unscoped platform view, which no tenant-facing caller may use.
type Store interface {
	Create(ctx context.Context, e *models.AuditLogEntry) error
	BulkCreate(ctx context.Context, entries []*models.AuditLogEntry) error
	Query(ctx context.Context, f LogFilter, p Page) ([]models.AuditLogEntry, int64, error)
	FindByUser(ctx context.Context, userID uuid.UUID, orgID *uuid.UUID, limit int) ([]models.AuditLogEntry, error)
	FindRecent(ctx context.Context, orgID *uuid.UUID, limit int) ([]models.AuditLogEntry, error)
	FindSecurityEvents(ctx context.Context, orgID *uuid.UUID, from, to time.Time, limit int) ([]models.AuditLogEntry, error)
	FindFailedActions(ctx context.Context, orgID *uuid.UUID, limit int) ([]models.AuditLogEntry, error)
	DeleteOldLogs(ctx context.Context, retentionDays int) (int64, error)
	Stats(ctx context.Context, orgID *uuid.UUID, from, to time.Time) (*models.AuditStats, error)
}
