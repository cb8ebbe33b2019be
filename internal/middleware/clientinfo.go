package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

const (
	CtxClientIP  = "client_ip"
	CtxUserAgent = "client_user_agent"

	// UnknownClient marks a missing IP or user agent.
	UnknownClient = "unknown"
)

// NormalizeIP strips the IPv4-mapped-IPv6 prefix, maps the IPv6
// loopback to its IPv4 form and substitutes a marker for missing IPs,
// so counters and log queries key on one canonical form.
func NormalizeIP(ip string) string {
	if ip == "" {
		return UnknownClient
	}
	if ip == "::1" {
		return "127.0.0.1"
	}
	return strings.TrimPrefix(ip, "::ffff:")
}

// ClientInfo attaches the normalized client IP and user agent to the
// request for downstream middleware and handlers.
func ClientInfo() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(CtxClientIP, NormalizeIP(utils.CopyString(c.IP())))
		ua := utils.CopyString(c.Get(fiber.HeaderUserAgent))
		if ua == "" {
			ua = UnknownClient
		}
		c.Locals(CtxUserAgent, ua)
		return c.Next()
	}
}

// ClientIP returns the normalized client IP set by ClientInfo.
func ClientIP(c *fiber.Ctx) string {
	if ip, ok := c.Locals(CtxClientIP).(string); ok && ip != "" {
		return ip
	}
	return NormalizeIP(c.IP())
}

// ClientUserAgent returns the user agent set by ClientInfo, reading the
// header directly when ClientInfo did not run.
func ClientUserAgent(c *fiber.Ctx) string {
	if ua, ok := c.Locals(CtxUserAgent).(string); ok && ua != "" {
		return ua
	}
	if ua := utils.CopyString(c.Get(fiber.HeaderUserAgent)); ua != "" {
		return ua
	}
	return UnknownClient
}
