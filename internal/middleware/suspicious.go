package middleware

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/orghub/backend/internal/audit"
	"github.com/orghub/backend/internal/events"
	"github.com/orghub/backend/internal/models"
	"github.com/orghub/backend/internal/security"
	"go.uber.org/zap"
)

// DetectSuspicious scans inbound bodies for SQL-injection and XSS
// heuristics and flags implausible user agents. Detections are always
// recorded as security events and published to the alert channel;
// whether a match also blocks the request is policy, controlled by the
// block flag.
func DetectSuspicious(svc *audit.Service, publisher events.Publisher, block bool, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		body := string(c.Body()) // conversion copies out of fiber's buffer
		path := utils.CopyString(c.Path())
		method := utils.CopyString(c.Method())
		ip := ClientIP(c)
		ua := ClientUserAgent(c)

		matches := security.DetectPatterns(body)
		for _, m := range matches {
			m := m
			go func() {
				svc.LogSecurity(context.Background(), "SUSPICIOUS_REQUEST",
					"request body matched "+m.Kind+" heuristic",
					nil, ip, models.SeverityWarning, map[string]any{
						"pattern": m.Kind,
						"excerpt": m.Excerpt,
						"path":    path,
						"method":  method,
					})
				if publisher != nil {
					if err := publisher.Publish(context.Background(), events.ChannelSecurityAlerts, events.Event{
						Type: events.EventSuspiciousRequest,
						Payload: map[string]any{
							"pattern": m.Kind,
							"ip":      ip,
							"path":    path,
						},
					}); err != nil {
						log.Warn("security alert publish failed", zap.Error(err))
					}
				}
			}()
		}

		// ClientInfo substitutes UnknownClient for an absent header, which
		// is longer than the length heuristic catches; a missing user
		// agent is just as suspicious as a truncated one.
		if ua == UnknownClient || security.SuspiciousUserAgent(ua) {
			go svc.LogSecurity(context.Background(), "SUSPICIOUS_USER_AGENT",
				"missing or implausibly short user agent",
				nil, ip, models.SeverityWarning, map[string]any{
					"user_agent": ua,
					"path":       path,
				})
		}

		if block && len(matches) > 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "request rejected"})
		}

		return c.Next()
	}
}
