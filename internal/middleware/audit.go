package middleware

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"
	"github.com/orghub/backend/internal/audit"
	"github.com/orghub/backend/internal/models"
	"go.uber.org/zap"
)

const ctxBeforeData = "audit_before_data"

// AuditOptions tunes a single AuditLog/AuditChange wrapper.
type AuditOptions struct {
	// LogAll logs every response status, not just successes and the
	// interesting auth failures.
	LogAll bool
	// ForceLog is an alias kept separate so routes can express "always
	// log this one" without changing shared option values.
	ForceLog bool
	// TargetTable overrides the table derived from the target type.
	TargetTable string
	// Description is a free-text explanation stored with each entry.
	Description string
	// OrgParam names the route parameter carrying the organization id.
	// When set, entries produced by the wrapper are attributed to that
	// tenant so the org-scoped read API can surface them.
	OrgParam string
}

// orgIDFromParams resolves the tenant for an entry from the route
// parameter named by opts, nil when unset or unparseable.
func orgIDFromParams(c *fiber.Ctx, opts *AuditOptions) *uuid.UUID {
	if opts.OrgParam == "" {
		return nil
	}
	id, err := uuid.Parse(c.Params(opts.OrgParam))
	if err != nil {
		return nil
	}
	return &id
}

// AuditLog wraps a route with response-intercepting audit logging. It
// ensures a correlation id, and after the handler has produced its
// response it assembles a full entry (status, parsed bodies, duration,
// actor, classification) and hands it to the audit service on a
// detached goroutine, so persistence latency or failure never touches
// the response.
//
// By default successes and the 401/403/404 family are logged; 4xx
// validation noise is skipped unless LogAll/ForceLog is set.
func AuditLog(svc *audit.Service, action, targetType string, opts *AuditOptions) fiber.Handler {
	if opts == nil {
		opts = &AuditOptions{}
	}
	return func(c *fiber.Ctx) error {
		start := time.Now()
		corrID := EnsureCorrelationID(c)

		// Parsed (and later redacted) copy of the inbound body. Parse
		// failures are fine: non-JSON bodies are logged without
		// body-derived fields.
		reqBody := parseJSONObject(c.Body())

		err := c.Next()

		status := responseStatus(c, err)
		if !shouldLog(status, opts) {
			return err
		}

		respBody := parseJSONObject(c.Response().Body())

		targetID := utils.CopyString(c.Params("id"))
		if targetID == "" {
			targetID = targetIDFromBody(respBody)
		}
		targetTable := opts.TargetTable
		if targetTable == "" {
			targetTable = audit.TableFor(targetType)
		}

		entry := &models.AuditLogEntry{
			UserID:            UserIDPtr(c),
			OrganizationID:    orgIDFromParams(c, opts),
			UserEmail:         GetUserEmail(c),
			UserName:          GetUserName(c),
			Action:            action,
			ActionDescription: opts.Description,
			TargetType:        targetType,
			TargetID:          targetID,
			TargetTable:       targetTable,
			IPAddress:         ClientIP(c),
			UserAgent:         ClientUserAgent(c),
			RequestURL:        utils.CopyString(c.OriginalURL()),
			RequestMethod:     utils.CopyString(c.Method()),
			RequestBody:       reqBody,
			ResponseStatus:    status,
			Status:            outcomeFor(status),
			DurationMS:        time.Since(start).Milliseconds(),
			CorrelationID:     corrID,
			Severity:          audit.SeverityFor(status, action),
			Category:          audit.CategoryFor(action),
		}
		if status >= fiber.StatusBadRequest {
			entry.ErrorMessage = errorMessageFrom(respBody, err)
		}

		// Fire and forget: the response is already final, the write
		// must not be able to push back.
		go svc.Log(context.Background(), entry)

		return err
	}
}

// AuditChange wraps mutating routes (PUT/PATCH/DELETE) with before/after
// change auditing. The pre-mutation state is fetched via loadBefore
// before the handler runs; a fetch failure just means no before
// snapshot. On a 2xx response the post-mutation state is read from the
// response body and both snapshots go to LogDataChange asynchronously.
func AuditChange(svc *audit.Service, targetType string, loadBefore func(*fiber.Ctx) (map[string]any, error), opts *AuditOptions, log *zap.Logger) fiber.Handler {
	if opts == nil {
		opts = &AuditOptions{}
	}
	return func(c *fiber.Ctx) error {
		method := c.Method()
		if method != fiber.MethodPut && method != fiber.MethodPatch && method != fiber.MethodDelete {
			return c.Next()
		}

		if c.Params("id") != "" && loadBefore != nil {
			before, err := loadBefore(c)
			if err != nil {
				log.Warn("before-state fetch failed, auditing without snapshot",
					zap.String("target_type", targetType),
					zap.String("target_id", c.Params("id")),
					zap.Error(err),
				)
			} else {
				c.Locals(ctxBeforeData, before)
			}
		}

		corrID := EnsureCorrelationID(c)
		err := c.Next()

		status := responseStatus(c, err)
		if status < 200 || status >= 300 {
			return err
		}

		before, _ := c.Locals(ctxBeforeData).(map[string]any)
		after := afterFromResponse(c.Response().Body())

		action := targetType + "_" + actionForMethod(method)
		targetID := utils.CopyString(c.Params("id"))
		targetTable := opts.TargetTable
		if targetTable == "" {
			targetTable = audit.TableFor(targetType)
		}
		actor := UserIDPtr(c)
		orgID := orgIDFromParams(c, opts)
		meta := map[string]any{
			"correlation_id": corrID,
			"ip_address":     ClientIP(c),
		}

		go svc.LogDataChange(context.Background(), action, targetType, targetID, targetTable, orgID, before, after, actor, meta)

		return err
	}
}

func shouldLog(status int, opts *AuditOptions) bool {
	if opts.LogAll || opts.ForceLog {
		return true
	}
	if status < fiber.StatusBadRequest {
		return true
	}
	switch status {
	case fiber.StatusUnauthorized, fiber.StatusForbidden, fiber.StatusNotFound:
		return true
	}
	return false
}

func responseStatus(c *fiber.Ctx, err error) int {
	if err != nil {
		if fe, ok := err.(*fiber.Error); ok {
			return fe.Code
		}
		return fiber.StatusInternalServerError
	}
	return c.Response().StatusCode()
}

func outcomeFor(status int) string {
	switch {
	case status >= fiber.StatusInternalServerError:
		return models.AuditStatusError
	case status >= fiber.StatusBadRequest:
		return models.AuditStatusFailed
	default:
		return models.AuditStatusSuccess
	}
}

func actionForMethod(method string) string {
	switch method {
	case fiber.MethodDelete:
		return "DELETE"
	default:
		return "UPDATE"
	}
}

// parseJSONObject decodes b into a map, nil when b is empty or not a
// JSON object. Unmarshal copies everything out of b, which matters:
// fiber reuses its buffers once the handler chain returns.
func parseJSONObject(b []byte) map[string]any {
	if len(b) == 0 {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil
	}
	return m
}

// afterFromResponse extracts the post-mutation entity from a response
// body, following the {"ok": true, "data": {...}} envelope convention
// and falling back to the body itself.
func afterFromResponse(b []byte) map[string]any {
	body := parseJSONObject(b)
	if body == nil {
		return nil
	}
	if data, ok := body["data"].(map[string]any); ok {
		return data
	}
	return body
}

// targetIDFromBody digs a target id out of a response body by the
// id/user_id naming conventions.
func targetIDFromBody(body map[string]any) string {
	if body == nil {
		return ""
	}
	candidates := []map[string]any{body}
	if data, ok := body["data"].(map[string]any); ok {
		candidates = append([]map[string]any{data}, candidates...)
	}
	for _, m := range candidates {
		for _, key := range []string{"id", "user_id"} {
			if s, ok := m[key].(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

func errorMessageFrom(body map[string]any, err error) string {
	if body != nil {
		if msg, ok := body["error"].(string); ok {
			return msg
		}
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

// UserIDPtr returns the authenticated user id, nil for anonymous or
// system traffic.
func UserIDPtr(c *fiber.Ctx) *uuid.UUID {
	id, ok := c.Locals(CtxUserID).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return nil
	}
	return &id
}
