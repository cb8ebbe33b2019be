package middleware

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/orghub/backend/internal/models"
	"github.com/orghub/backend/internal/rbac"
)

// MemberGetter resolves a user's membership in an organization.
type MemberGetter interface {
	Get(ctx context.Context, orgID, userID uuid.UUID) (*models.Member, error)
}

// RequireOrgPermission guards org-scoped routes: the caller must be a
// member of the :id organization with the given permission. A missing
// membership reads as 404 so outsiders cannot probe for org existence.
func RequireOrgPermission(members MemberGetter, perm string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		orgID, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
		}

		m, err := members.Get(c.Context(), orgID, GetUserID(c))
		if err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "organization not found"})
		}
		if !rbac.HasPermission(m.Role, perm) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "insufficient permissions"})
		}

		return c.Next()
	}
}
