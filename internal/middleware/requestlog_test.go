package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestLogLevels(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		status    int
		wantLevel zapcore.Level
		wantMsg   string
	}{
		{"success", "/api/v1/orgs", fiber.StatusOK, zapcore.InfoLevel, "request"},
		{"server error", "/api/v1/orgs", fiber.StatusInternalServerError, zapcore.ErrorLevel, "request failed"},
		{"rejected", "/api/v1/orgs", fiber.StatusForbidden, zapcore.WarnLevel, "request rejected"},
		{"401 outside quiet prefix", "/api/v1/orgs", fiber.StatusUnauthorized, zapcore.WarnLevel, "request rejected"},
		{"401 on quiet prefix", "/api/v1/auth/refresh", fiber.StatusUnauthorized, zapcore.InfoLevel, "request"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.InfoLevel)

			app := fiber.New()
			app.Use(RequestLog(zap.New(core), []string{"/api/v1/auth"}))
			app.Get("/*", func(c *fiber.Ctx) error {
				return c.SendStatus(tt.status)
			})

			if _, err := app.Test(httptest.NewRequest("GET", tt.path, nil)); err != nil {
				t.Fatalf("request failed: %v", err)
			}

			if logs.Len() != 1 {
				t.Fatalf("logged %d lines, want 1", logs.Len())
			}
			entry := logs.All()[0]
			if entry.Level != tt.wantLevel {
				t.Errorf("level = %s, want %s", entry.Level, tt.wantLevel)
			}
			if entry.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", entry.Message, tt.wantMsg)
			}
			fields := entry.ContextMap()
			if fields["status"] != int64(tt.status) {
				t.Errorf("status field = %v, want %d", fields["status"], tt.status)
			}
			if fields["path"] != tt.path {
				t.Errorf("path field = %v", fields["path"])
			}
		})
	}
}
