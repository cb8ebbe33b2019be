package middleware

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/orghub/backend/internal/audit"
	"github.com/orghub/backend/internal/models"
	"go.uber.org/zap"
)

func TestDetectSuspiciousLogsSQLInjection(t *testing.T) {
	store := newCaptureStore()
	svc := audit.NewService(store, zap.NewNop())

	app := fiber.New()
	app.Use(DetectSuspicious(svc, nil, false, zap.NewNop()))
	app.Post("/search", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })

	req := httptest.NewRequest("POST", "/search", strings.NewReader(`{"q": "' OR 1=1"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("non-blocking mode must pass the request through, got %d", resp.StatusCode)
	}

	e := store.wait(t)
	if e.Action != "SUSPICIOUS_REQUEST" {
		t.Errorf("action = %q", e.Action)
	}
	if e.Category != models.CategorySecurity {
		t.Errorf("category = %q", e.Category)
	}
	if e.Metadata["pattern"] != "SQL_INJECTION" {
		t.Errorf("pattern = %v", e.Metadata["pattern"])
	}
	if e.Metadata["path"] != "/search" {
		t.Errorf("path = %v", e.Metadata["path"])
	}
}

func TestDetectSuspiciousBlocksWhenConfigured(t *testing.T) {
	store := newCaptureStore()
	svc := audit.NewService(store, zap.NewNop())

	app := fiber.New()
	app.Use(DetectSuspicious(svc, nil, true, zap.NewNop()))
	reached := false
	app.Post("/search", func(c *fiber.Ctx) error {
		reached = true
		return c.JSON(fiber.Map{"ok": true})
	})

	req := httptest.NewRequest("POST", "/search", strings.NewReader(`{"q": "<script>alert(1)</script>"}`))
	req.Header.Set("User-Agent", "Mozilla/5.0")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("blocking mode status = %d, want 400", resp.StatusCode)
	}
	if reached {
		t.Error("blocked request must not reach the handler")
	}
	store.wait(t) // detection is still recorded
}

func TestDetectSuspiciousMissingUserAgent(t *testing.T) {
	store := newCaptureStore()
	svc := audit.NewService(store, zap.NewNop())

	app := fiber.New()
	app.Use(ClientInfo())
	app.Use(DetectSuspicious(svc, nil, false, zap.NewNop()))
	app.Post("/search", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })

	req := httptest.NewRequest("POST", "/search", strings.NewReader(`{"q": "regular search terms"}`))
	req.Header.Set("Content-Type", "application/json")
	// Empty string tells net/http to omit the header entirely, so the
	// request arrives with no user agent at all.
	req.Header.Set("User-Agent", "")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	e := store.wait(t)
	if e.Action != "SUSPICIOUS_USER_AGENT" {
		t.Errorf("action = %q", e.Action)
	}
	if e.Category != models.CategorySecurity {
		t.Errorf("category = %q", e.Category)
	}
}

func TestDetectSuspiciousCleanBody(t *testing.T) {
	store := newCaptureStore()
	svc := audit.NewService(store, zap.NewNop())

	app := fiber.New()
	app.Use(DetectSuspicious(svc, nil, true, zap.NewNop()))
	app.Post("/search", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })

	req := httptest.NewRequest("POST", "/search", strings.NewReader(`{"q": "regular search terms"}`))
	req.Header.Set("User-Agent", "Mozilla/5.0")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("clean request status = %d", resp.StatusCode)
	}

	select {
	case e := <-store.entries:
		t.Fatalf("clean body produced entry %q", e.Action)
	case <-time.After(100 * time.Millisecond):
	}
}
