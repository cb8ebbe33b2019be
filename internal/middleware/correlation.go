package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"
)

const (
	HeaderCorrelationID = "X-Correlation-ID"
	CtxCorrelationID    = "correlation_id"
)

// CorrelationID threads a correlation id through the request: reuses an
// inbound header when present, otherwise generates one. The id is
// always echoed on the response so clients can reference it.
func CorrelationID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		EnsureCorrelationID(c)
		return c.Next()
	}
}

// EnsureCorrelationID resolves (or mints) the request's correlation id
// and sets the response header. Idempotent within one request.
func EnsureCorrelationID(c *fiber.Ctx) string {
	if id, ok := c.Locals(CtxCorrelationID).(string); ok && id != "" {
		return id
	}
	id := utils.CopyString(c.Get(HeaderCorrelationID))
	if id == "" {
		id = uuid.New().String()
	}
	c.Locals(CtxCorrelationID, id)
	c.Set(HeaderCorrelationID, id)
	return id
}

// GetCorrelationID returns the request's correlation id, "" if the
// middleware did not run.
func GetCorrelationID(c *fiber.Ctx) string {
	id, _ := c.Locals(CtxCorrelationID).(string)
	return id
}
