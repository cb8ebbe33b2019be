package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/orghub/backend/internal/security"
)

// CheckBruteForce rejects requests from IPs inside an active lockout
// window. It only gates; failures are recorded by the auth handler,
// which knows whether a login actually failed.
func CheckBruteForce(protector *security.BruteForceProtector) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ip := ClientIP(c)
		if protector.IsLocked(c.Context(), ip) {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "too many failed login attempts, please try again later",
			})
		}
		return c.Next()
	}
}
