package http

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/orghub/backend/internal/audit"
	"github.com/orghub/backend/internal/config"
	"github.com/orghub/backend/internal/events"
	"github.com/orghub/backend/internal/http/handlers"
	"github.com/orghub/backend/internal/middleware"
	"github.com/orghub/backend/internal/models"
	"github.com/orghub/backend/internal/rbac"
	"github.com/orghub/backend/internal/repositories"
	"github.com/orghub/backend/internal/security"
	"github.com/orghub/backend/internal/services"
	"go.uber.org/zap"
)

func SetupRouter(
	app *fiber.App,
	cfg *config.Config,
	log *zap.Logger,
	auditSvc *audit.Service,
	orgSvc *services.OrganizationService,
	memberRepo *repositories.MemberRepo,
	protector *security.BruteForceProtector,
	publisher events.Publisher,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	orgHandler *handlers.OrganizationHandler,
	memberHandler *handlers.MemberHandler,
	invitationHandler *handlers.InvitationHandler,
	auditHandler *handlers.AuditHandler,
	securityFeed *handlers.SecurityFeedHub,
) {
	// Global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Correlation-ID",
	}))
	app.Use(middleware.ClientInfo())
	app.Use(middleware.CorrelationID())
	app.Use(middleware.RequestLog(log, cfg.Quiet401Paths))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1")
	api.Use(middleware.DetectSuspicious(auditSvc, publisher, cfg.BlockSuspicious, log))

	// Auth (public). Login-shaped endpoints sit behind the lockout gate.
	api.Post("/auth/register", authHandler.Register)
	api.Post("/auth/login", middleware.CheckBruteForce(protector), authHandler.Login)
	api.Post("/auth/google", middleware.CheckBruteForce(protector), authHandler.GoogleLogin)
	api.Post("/auth/refresh", authHandler.Refresh)

	// Protected endpoints
	protected := api.Group("", middleware.Auth(cfg, log))

	protected.Post("/auth/logout", authHandler.Logout)

	// User
	protected.Get("/me", userHandler.GetMe)
	protected.Put("/me",
		middleware.AuditLog(auditSvc, "USER_PROFILE_UPDATE", models.TargetUser, nil),
		userHandler.UpdateProfile)

	// Organizations
	protected.Post("/orgs", orgHandler.Create)
	protected.Get("/orgs", orgHandler.List)
	protected.Get("/orgs/:id", orgHandler.Get)
	protected.Put("/orgs/:id",
		middleware.AuditChange(auditSvc, models.TargetOrganization, func(c *fiber.Ctx) (map[string]any, error) {
			orgID, err := uuid.Parse(c.Params("id"))
			if err != nil {
				return nil, err
			}
			return orgSvc.Snapshot(c.Context(), orgID)
		}, &middleware.AuditOptions{OrgParam: "id"}, log),
		orgHandler.Update)
	protected.Post("/orgs/:id/transfer-ownership", orgHandler.TransferOwnership)
	protected.Delete("/orgs/:id", orgHandler.Delete)

	// Members
	protected.Get("/orgs/:id/members", memberHandler.List)
	protected.Put("/orgs/:id/members/:memberId", memberHandler.UpdateRole)
	protected.Delete("/orgs/:id/members/:memberId", memberHandler.Remove)

	// Invitations
	protected.Post("/orgs/:id/invitations", invitationHandler.Create)
	protected.Get("/orgs/:id/invitations", invitationHandler.List)
	protected.Delete("/orgs/:id/invitations/:invitationId", invitationHandler.Revoke)
	protected.Post("/invitations/accept", invitationHandler.Accept)

	// Audit log read API, org-scoped and permission-gated
	auditGroup := protected.Group("/orgs/:id/audit",
		middleware.RequireOrgPermission(memberRepo, rbac.PermViewAuditLogs))
	auditGroup.Get("/", auditHandler.Query)
	auditGroup.Get("/recent", auditHandler.Recent)
	auditGroup.Get("/users/:userId", auditHandler.UserActivity)
	auditGroup.Get("/security-events", auditHandler.SecurityEvents)
	auditGroup.Get("/failed", auditHandler.FailedActions)
	auditGroup.Get("/stats", auditHandler.Stats)
	auditGroup.Get("/correlation/:correlationId", auditHandler.Correlated)
	auditGroup.Get("/suspicious", auditHandler.SuspiciousActivity)
	auditGroup.Get("/export",
		middleware.AuditLog(auditSvc, "AUDIT_EXPORT", models.TargetSystem, &middleware.AuditOptions{
			ForceLog:    true,
			Description: "bulk audit log export",
			OrgParam:    "id",
		}),
		auditHandler.Export)
	auditGroup.Post("/cleanup", auditHandler.Cleanup)

	// WebSocket security alert feed
	app.Use("/ws/security", handlers.WSUpgradeMiddleware())
	app.Get("/ws/security", websocket.New(securityFeed.HandleWS))
}
