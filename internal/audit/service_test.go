package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/orghub/backend/internal/models"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeStore struct {
	created []models.AuditLogEntry
	queried []LogFilter
	failAll bool
	deleted int64
	delErr  error
}

func (f *fakeStore) Create(_ context.Context, e *models.AuditLogEntry) error {
	if f.failAll {
		return errors.New("store down")
	}
	f.created = append(f.created, *e)
	return nil
}

func (f *fakeStore) BulkCreate(_ context.Context, entries []*models.AuditLogEntry) error {
	if f.failAll {
		return errors.New("store down")
	}
	for _, e := range entries {
		f.created = append(f.created, *e)
	}
	return nil
}

func (f *fakeStore) Query(_ context.Context, filter LogFilter, _ Page) ([]models.AuditLogEntry, int64, error) {
	f.queried = append(f.queried, filter)
	return nil, 0, nil
}

func (f *fakeStore) FindByUser(context.Context, uuid.UUID, *uuid.UUID, int) ([]models.AuditLogEntry, error) {
	return nil, nil
}
func (f *fakeStore) FindRecent(context.Context, *uuid.UUID, int) ([]models.AuditLogEntry, error) {
	return nil, nil
}
func (f *fakeStore) FindSecurityEvents(context.Context, *uuid.UUID, time.Time, time.Time, int) ([]models.AuditLogEntry, error) {
	return nil, nil
}
func (f *fakeStore) FindFailedActions(context.Context, *uuid.UUID, int) ([]models.AuditLogEntry, error) {
	return nil, nil
}
func (f *fakeStore) DeleteOldLogs(context.Context, int) (int64, error) {
	return f.deleted, f.delErr
}
func (f *fakeStore) Stats(context.Context, *uuid.UUID, time.Time, time.Time) (*models.AuditStats, error) {
	return &models.AuditStats{}, nil
}

func TestLogNeverFails(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	svc := NewService(&fakeStore{failAll: true}, zap.New(core))

	got := svc.Log(context.Background(), &models.AuditLogEntry{Action: "LOGIN_SUCCESS"})
	if got != nil {
		t.Errorf("Log with failing store returned %v, want nil", got)
	}
	if n := logs.Len(); n != 1 {
		t.Errorf("operational logger called %d times, want 1", n)
	}
}

func TestLogFillsDefaults(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store, zap.NewNop())

	svc.Log(context.Background(), &models.AuditLogEntry{
		Action:     "ORGANIZATION_UPDATE",
		TargetType: models.TargetOrganization,
	})

	if len(store.created) != 1 {
		t.Fatalf("created %d entries, want 1", len(store.created))
	}
	e := store.created[0]
	if e.LogID == uuid.Nil {
		t.Error("log id not generated")
	}
	if e.Status != models.AuditStatusSuccess {
		t.Errorf("status = %q, want SUCCESS", e.Status)
	}
	if e.Severity != models.SeverityInfo {
		t.Errorf("severity = %q, want INFO", e.Severity)
	}
	if e.Category != models.CategoryBusiness {
		t.Errorf("category = %q, want BUSINESS", e.Category)
	}
	if e.TargetTable != "organizations" {
		t.Errorf("target table = %q", e.TargetTable)
	}
	if e.CreatedAt.IsZero() {
		t.Error("created_at not filled")
	}
}

func TestLogExplicitValuesWin(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store, zap.NewNop())

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	svc.Log(context.Background(), &models.AuditLogEntry{
		Action:    "LOGIN_SUCCESS",
		Status:    models.AuditStatusPartial,
		Severity:  models.SeverityCritical,
		Category:  models.CategoryCompliance,
		CreatedAt: at,
	})

	e := store.created[0]
	if e.Status != models.AuditStatusPartial || e.Severity != models.SeverityCritical || e.Category != models.CategoryCompliance {
		t.Errorf("explicit values overridden: %+v", e)
	}
	if !e.CreatedAt.Equal(at) {
		t.Errorf("created_at overridden: %v", e.CreatedAt)
	}
}

func TestLogRedactsAndDiffs(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store, zap.NewNop())

	svc.Log(context.Background(), &models.AuditLogEntry{
		Action:      "USER_UPDATE",
		BeforeData:  map[string]any{"name": "old", "password": "a"},
		AfterData:   map[string]any{"name": "new", "password": "b"},
		RequestBody: map[string]any{"name": "new", "token": "t"},
	})

	e := store.created[0]
	if e.BeforeData["password"] != RedactedMarker || e.AfterData["password"] != RedactedMarker {
		t.Error("snapshots not redacted")
	}
	if e.RequestBody["token"] != RedactedMarker {
		t.Error("request body not redacted")
	}
	// Both passwords redact to the same marker, so only name differs.
	if len(e.Changes) != 1 {
		t.Fatalf("changes = %v", e.Changes)
	}
	if c := e.Changes["name"]; c.Old != "old" || c.New != "new" {
		t.Errorf("name change = %+v", c)
	}
}

func TestLogKeepsCallerChanges(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store, zap.NewNop())

	explicit := map[string]models.FieldChange{"role": {Old: "member", New: "admin"}}
	svc.Log(context.Background(), &models.AuditLogEntry{
		Action:     "MEMBER_ROLE_UPDATE",
		BeforeData: map[string]any{"x": 1},
		AfterData:  map[string]any{"x": 2},
		Changes:    explicit,
	})

	if c := store.created[0].Changes["role"]; c.New != "admin" {
		t.Errorf("caller changes replaced: %v", store.created[0].Changes)
	}
}

func TestLogAuthSeverity(t *testing.T) {
	tests := []struct {
		action   string
		expected string
	}{
		{"LOGIN_SUCCESS", models.SeverityInfo},
		{"LOGIN_FAILED", models.SeverityWarning},
		{"LOGOUT", models.SeverityInfo},
	}
	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			store := &fakeStore{}
			svc := NewService(store, zap.NewNop())
			svc.LogAuth(context.Background(), tt.action, nil, "a@b.c", "A", "1.2.3.4", "ua", nil)
			e := store.created[0]
			if e.Severity != tt.expected {
				t.Errorf("severity = %q, want %q", e.Severity, tt.expected)
			}
			if e.Category != models.CategorySecurity || e.TargetType != models.TargetUser {
				t.Errorf("wrong classification: %+v", e)
			}
		})
	}
}

func TestCleanupPropagatesError(t *testing.T) {
	svc := NewService(&fakeStore{delErr: errors.New("disk full")}, zap.NewNop())
	if _, err := svc.Cleanup(context.Background(), 30); err == nil {
		t.Error("Cleanup swallowed a store error")
	}
}

func TestCleanupLogsSystemEntry(t *testing.T) {
	store := &fakeStore{deleted: 7}
	svc := NewService(store, zap.NewNop())

	deleted, err := svc.Cleanup(context.Background(), 0) // defaults to 90
	if err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if deleted != 7 {
		t.Errorf("deleted = %d, want 7", deleted)
	}
	if len(store.created) != 1 {
		t.Fatalf("cleanup wrote %d entries, want 1", len(store.created))
	}
	e := store.created[0]
	if e.Action != "AUDIT_LOG_CLEANUP" || e.TargetType != models.TargetSystem || e.Category != models.CategorySystem {
		t.Errorf("cleanup entry misclassified: %+v", e)
	}
}

func TestSuspiciousActivityFilter(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store, zap.NewNop())

	orgID := uuid.New()
	if _, err := svc.SuspiciousActivity(context.Background(), &orgID, 12); err != nil {
		t.Fatalf("SuspiciousActivity: %v", err)
	}
	if len(store.queried) != 1 {
		t.Fatalf("queried %d times", len(store.queried))
	}
	f := store.queried[0]
	if f.Action != "LOGIN_FAILED" || f.Severity != models.SeverityWarning || f.From == nil {
		t.Errorf("filter = %+v", f)
	}
	if f.OrganizationID == nil || *f.OrganizationID != orgID {
		t.Errorf("organization scope not applied: %+v", f.OrganizationID)
	}
}

func TestLogDataChangeCarriesOrganization(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store, zap.NewNop())

	orgID := uuid.New()
	actor := uuid.New()
	svc.LogDataChange(context.Background(), "MEMBER_ROLE_UPDATE", models.TargetMember, actor.String(), "organization_members",
		&orgID, map[string]any{"role": "member"}, map[string]any{"role": "admin"}, &actor, nil)

	if len(store.created) != 1 {
		t.Fatalf("created %d entries, want 1", len(store.created))
	}
	e := store.created[0]
	if e.OrganizationID == nil || *e.OrganizationID != orgID {
		t.Errorf("organization id = %v, want %s", e.OrganizationID, orgID)
	}
}
