package handlers

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/orghub/backend/internal/audit"
	"github.com/orghub/backend/internal/models"
	"go.uber.org/zap"
)

// filterStore records the scope each read was executed with.
type filterStore struct {
	filters []audit.LogFilter
	orgIDs  []*uuid.UUID
}

func (s *filterStore) Create(context.Context, *models.AuditLogEntry) error        { return nil }
func (s *filterStore) BulkCreate(context.Context, []*models.AuditLogEntry) error { return nil }

func (s *filterStore) Query(_ context.Context, f audit.LogFilter, _ audit.Page) ([]models.AuditLogEntry, int64, error) {
	s.filters = append(s.filters, f)
	return nil, 0, nil
}

func (s *filterStore) FindByUser(_ context.Context, _ uuid.UUID, orgID *uuid.UUID, _ int) ([]models.AuditLogEntry, error) {
	s.orgIDs = append(s.orgIDs, orgID)
	return nil, nil
}

func (s *filterStore) FindRecent(_ context.Context, orgID *uuid.UUID, _ int) ([]models.AuditLogEntry, error) {
	s.orgIDs = append(s.orgIDs, orgID)
	return nil, nil
}

func (s *filterStore) FindSecurityEvents(_ context.Context, orgID *uuid.UUID, _, _ time.Time, _ int) ([]models.AuditLogEntry, error) {
	s.orgIDs = append(s.orgIDs, orgID)
	return nil, nil
}

func (s *filterStore) FindFailedActions(_ context.Context, orgID *uuid.UUID, _ int) ([]models.AuditLogEntry, error) {
	s.orgIDs = append(s.orgIDs, orgID)
	return nil, nil
}

func (s *filterStore) DeleteOldLogs(context.Context, int) (int64, error) { return 0, nil }

func (s *filterStore) Stats(_ context.Context, orgID *uuid.UUID, _, _ time.Time) (*models.AuditStats, error) {
	s.orgIDs = append(s.orgIDs, orgID)
	return &models.AuditStats{}, nil
}

func auditTestApp(store *filterStore) *fiber.App {
	h := NewAuditHandler(audit.NewService(store, zap.NewNop()), 90, zap.NewNop())
	app := fiber.New()
	grp := app.Group("/orgs/:id/audit")
	grp.Get("/", h.Query)
	grp.Get("/recent", h.Recent)
	grp.Get("/users/:userId", h.UserActivity)
	grp.Get("/security-events", h.SecurityEvents)
	grp.Get("/failed", h.FailedActions)
	grp.Get("/stats", h.Stats)
	grp.Get("/correlation/:correlationId", h.Correlated)
	grp.Get("/suspicious", h.SuspiciousActivity)
	grp.Get("/export", h.Export)
	return app
}

func TestAuditReadsScopedToRouteOrganization(t *testing.T) {
	orgID := uuid.New()
	base := "/orgs/" + orgID.String() + "/audit"

	findPaths := []string{
		base + "/recent",
		base + "/users/" + uuid.New().String(),
		base + "/security-events",
		base + "/failed",
		base + "/stats",
	}
	for _, path := range findPaths {
		t.Run(path, func(t *testing.T) {
			store := &filterStore{}
			app := auditTestApp(store)
			resp, err := app.Test(httptest.NewRequest("GET", path, nil))
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			if resp.StatusCode != fiber.StatusOK {
				t.Fatalf("status = %d", resp.StatusCode)
			}
			if len(store.orgIDs) != 1 {
				t.Fatalf("store read %d times, want 1", len(store.orgIDs))
			}
			if store.orgIDs[0] == nil || *store.orgIDs[0] != orgID {
				t.Errorf("read scope = %v, want %s", store.orgIDs[0], orgID)
			}
		})
	}

	queryPaths := []string{
		base + "/",
		base + "/correlation/corr-1",
		base + "/suspicious",
		base + "/export",
	}
	for _, path := range queryPaths {
		t.Run(path, func(t *testing.T) {
			store := &filterStore{}
			app := auditTestApp(store)
			resp, err := app.Test(httptest.NewRequest("GET", path, nil))
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			if resp.StatusCode != fiber.StatusOK {
				t.Fatalf("status = %d", resp.StatusCode)
			}
			if len(store.filters) != 1 {
				t.Fatalf("store queried %d times, want 1", len(store.filters))
			}
			f := store.filters[0]
			if f.OrganizationID == nil || *f.OrganizationID != orgID {
				t.Errorf("filter scope = %v, want %s", f.OrganizationID, orgID)
			}
		})
	}
}

// A caller-supplied filter must not widen the tenant scope the route
// establishes.
func TestAuditQueryIgnoresCallerOrganizationFilter(t *testing.T) {
	orgID := uuid.New()
	other := uuid.New()
	store := &filterStore{}
	app := auditTestApp(store)

	path := "/orgs/" + orgID.String() + "/audit/?organization_id=" + other.String()
	if _, err := app.Test(httptest.NewRequest("GET", path, nil)); err != nil {
		t.Fatalf("request failed: %v", err)
	}

	if len(store.filters) != 1 {
		t.Fatalf("store queried %d times, want 1", len(store.filters))
	}
	if f := store.filters[0]; f.OrganizationID == nil || *f.OrganizationID != orgID {
		t.Errorf("filter scope = %v, want route org %s", f.OrganizationID, orgID)
	}
}

func TestAuditReadsRejectMalformedOrganizationID(t *testing.T) {
	store := &filterStore{}
	app := auditTestApp(store)

	resp, err := app.Test(httptest.NewRequest("GET", "/orgs/not-a-uuid/audit/recent", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	if len(store.orgIDs) != 0 {
		t.Error("malformed org id must not reach the store")
	}
}
