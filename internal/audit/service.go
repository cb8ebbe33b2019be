package audit

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/orghub/backend/internal/models"
	"go.uber.org/zap"
)

const (
	// DefaultRetentionDays bounds how long entries are kept.
	DefaultRetentionDays = 90
	// ExportLimit caps bulk exports so one request cannot pull the
	// whole table into memory.
	ExportLimit = 10000
)

// Service orchestrates redaction, diffing, classification and
// persistence. Log and the convenience loggers are best-effort: a
// store failure is logged operationally and swallowed, never returned
// into the request path. Cleanup is the deliberate exception.
type Service struct {
	store Store
	log   *zap.Logger
}

func NewService(store Store, log *zap.Logger) *Service {
	return &Service{store: store, log: log}
}

// NewCorrelationID returns a fresh correlation id for callers that want
// to group related entries.
func (s *Service) NewCorrelationID() string {
	return uuid.New().String()
}

// Log finalizes and persists one entry: redacts payloads, computes the
// change diff when both snapshots are present and the caller did not
// supply one, and fills status/severity/category/created_at defaults.
// Explicit caller values always win over derived ones.
//
// Returns the persisted entry, or nil when persistence failed.
func (s *Service) Log(ctx context.Context, e *models.AuditLogEntry) *models.AuditLogEntry {
	if e == nil {
		return nil
	}

	e.BeforeData = SanitizeMap(e.BeforeData)
	e.AfterData = SanitizeMap(e.AfterData)
	e.RequestBody = SanitizeMap(e.RequestBody)

	if e.Changes == nil && e.BeforeData != nil && e.AfterData != nil {
		e.Changes = Diff(e.BeforeData, e.AfterData)
	}

	if e.LogID == uuid.Nil {
		e.LogID = uuid.New()
	}
	if e.Status == "" {
		e.Status = models.AuditStatusSuccess
	}
	if e.Severity == "" {
		e.Severity = models.SeverityInfo
	}
	if e.Category == "" {
		e.Category = CategoryFor(e.Action)
	}
	if e.TargetTable == "" {
		e.TargetTable = TableFor(e.TargetType)
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	if err := s.store.Create(ctx, e); err != nil {
		s.log.Error("audit entry not persisted",
			zap.String("action", e.Action),
			zap.Error(err),
		)
		return nil
	}
	return e
}

// LogAuth records an authentication event. Failed auth actions are
// warnings, everything else info.
func (s *Service) LogAuth(ctx context.Context, action string, userID *uuid.UUID, email, name, ip, userAgent string, extra map[string]any) *models.AuditLogEntry {
	severity := models.SeverityInfo
	if strings.Contains(action, "FAILED") {
		severity = models.SeverityWarning
	}
	return s.Log(ctx, &models.AuditLogEntry{
		UserID:     userID,
		UserEmail:  email,
		UserName:   name,
		Action:     action,
		TargetType: models.TargetUser,
		IPAddress:  ip,
		UserAgent:  userAgent,
		Severity:   severity,
		Category:   models.CategorySecurity,
		Metadata:   extra,
	})
}

// LogDataChange records a before/after mutation of a stored entity.
// orgID attributes the entry to a tenant; the org-scoped read API can
// only surface entries that carry it.
func (s *Service) LogDataChange(ctx context.Context, action, targetType, targetID, targetTable string, orgID *uuid.UUID, before, after map[string]any, actorUserID *uuid.UUID, extra map[string]any) *models.AuditLogEntry {
	return s.Log(ctx, &models.AuditLogEntry{
		UserID:         actorUserID,
		Action:         action,
		TargetType:     targetType,
		TargetID:       targetID,
		TargetTable:    targetTable,
		OrganizationID: orgID,
		BeforeData:     before,
		AfterData:      after,
		Severity:       models.SeverityInfo,
		Category:       models.CategoryBusiness,
		Metadata:       extra,
	})
}

// LogSecurity records a security event such as a lockout or a
// suspicious request pattern.
func (s *Service) LogSecurity(ctx context.Context, action, description string, userID *uuid.UUID, ip, severity string, extra map[string]any) *models.AuditLogEntry {
	if severity == "" {
		severity = models.SeverityWarning
	}
	return s.Log(ctx, &models.AuditLogEntry{
		UserID:            userID,
		Action:            action,
		ActionDescription: description,
		IPAddress:         ip,
		Severity:          severity,
		Category:          models.CategorySecurity,
		Metadata:          extra,
		Tags:              []string{"security", "monitoring"},
	})
}

// LogSystem records an operational event with no human actor.
func (s *Service) LogSystem(ctx context.Context, action, description, severity string, extra map[string]any) *models.AuditLogEntry {
	if severity == "" {
		severity = models.SeverityInfo
	}
	return s.Log(ctx, &models.AuditLogEntry{
		Action:            action,
		ActionDescription: description,
		TargetType:        models.TargetSystem,
		Severity:          severity,
		Category:          models.CategorySystem,
		Metadata:          extra,
	})
}

// Cleanup deletes entries older than the retention window and records
// the sweep as a system entry. Unlike Log, failures here propagate: a
// broken retention sweep must be visible to operators.
func (s *Service) Cleanup(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		retentionDays = DefaultRetentionDays
	}
	deleted, err := s.store.DeleteOldLogs(ctx, retentionDays)
	if err != nil {
		return 0, err
	}
	s.LogSystem(ctx, "AUDIT_LOG_CLEANUP", "retention sweep of audit log", models.SeverityInfo, map[string]any{
		"retention_days": retentionDays,
		"deleted":        deleted,
	})
	return deleted, nil
}

// Read wrappers. Pass-through to the store plus the tenant scope; a
// non-nil orgID restricts every read to that organization's entries.

func (s *Service) Query(ctx context.Context, f LogFilter, p Page) ([]models.AuditLogEntry, int64, error) {
	return s.store.Query(ctx, f, p)
}

func (s *Service) UserActivity(ctx context.Context, userID uuid.UUID, orgID *uuid.UUID, limit int) ([]models.AuditLogEntry, error) {
	return s.store.FindByUser(ctx, userID, orgID, limit)
}

func (s *Service) Recent(ctx context.Context, orgID *uuid.UUID, limit int) ([]models.AuditLogEntry, error) {
	return s.store.FindRecent(ctx, orgID, limit)
}

func (s *Service) SecurityEvents(ctx context.Context, orgID *uuid.UUID, from, to time.Time, limit int) ([]models.AuditLogEntry, error) {
	return s.store.FindSecurityEvents(ctx, orgID, from, to, limit)
}

func (s *Service) FailedActions(ctx context.Context, orgID *uuid.UUID, limit int) ([]models.AuditLogEntry, error) {
	return s.store.FindFailedActions(ctx, orgID, limit)
}

func (s *Service) Stats(ctx context.Context, orgID *uuid.UUID, from, to time.Time) (*models.AuditStats, error) {
	return s.store.Stats(ctx, orgID, from, to)
}

// Correlated returns every entry sharing one correlation id.
func (s *Service) Correlated(ctx context.Context, orgID *uuid.UUID, correlationID string) ([]models.AuditLogEntry, error) {
	entries, _, err := s.store.Query(ctx, LogFilter{
		OrganizationID: orgID,
		CorrelationID:  correlationID,
	}, Page{Limit: 1000, SortBy: "created_at", SortOrder: "asc"})
	return entries, err
}

// SuspiciousActivity returns failed logins from the last N hours.
func (s *Service) SuspiciousActivity(ctx context.Context, orgID *uuid.UUID, hours int) ([]models.AuditLogEntry, error) {
	if hours <= 0 {
		hours = 24
	}
	from := time.Now().Add(-time.Duration(hours) * time.Hour)
	entries, _, err := s.store.Query(ctx, LogFilter{
		OrganizationID: orgID,
		Action:         "LOGIN_FAILED",
		Severity:       models.SeverityWarning,
		From:           &from,
	}, Page{Limit: 1000, SortBy: "created_at", SortOrder: "desc"})
	return entries, err
}

// Export is the bulk-export query path, hard-capped at ExportLimit rows.
func (s *Service) Export(ctx context.Context, f LogFilter) ([]models.AuditLogEntry, error) {
	entries, _, err := s.store.Query(ctx, f, Page{Limit: ExportLimit, SortBy: "created_at", SortOrder: "asc"})
	return entries, err
}
