package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/orghub/backend/internal/audit"
	"github.com/orghub/backend/internal/http/dto"
	"go.uber.org/zap"
)

// AuditHandler exposes the audit log read API plus the manual
// retention-sweep trigger.
type AuditHandler struct {
	auditSvc      *audit.Service
	retentionDays int
	log           *zap.Logger
}

func NewAuditHandler(auditSvc *audit.Service, retentionDays int, log *zap.Logger) *AuditHandler {
	return &AuditHandler{auditSvc: auditSvc, retentionDays: retentionDays, log: log}
}

func (h *AuditHandler) Query(c *fiber.Ctx) error {
	orgID, ok := uuidParam(c, "id")
	if !ok {
		return nil
	}
	// The route's organization always wins over any filter the caller
	// sent; tenants cannot widen their own scope.
	filter := filterFromQuery(c)
	filter.OrganizationID = &orgID
	page := audit.Page{
		Page:      c.QueryInt("page", 1),
		Limit:     queryLimit(c, 50, 500),
		SortBy:    c.Query("sort_by", "created_at"),
		SortOrder: c.Query("sort_order", "desc"),
	}

	entries, total, err := h.auditSvc.Query(c.Context(), filter, page)
	if err != nil {
		h.log.Error("audit query failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	return c.JSON(dto.PagedResponse{OK: true, Data: entries, Total: total, Page: page.Page, Limit: page.Limit})
}

func (h *AuditHandler) Recent(c *fiber.Ctx) error {
	orgID, ok := uuidParam(c, "id")
	if !ok {
		return nil
	}
	entries, err := h.auditSvc.Recent(c.Context(), &orgID, queryLimit(c, 50, 500))
	if err != nil {
		h.log.Error("recent audit fetch failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: entries})
}

func (h *AuditHandler) UserActivity(c *fiber.Ctx) error {
	orgID, ok := uuidParam(c, "id")
	if !ok {
		return nil
	}
	userID, ok := uuidParam(c, "userId")
	if !ok {
		return nil
	}
	entries, err := h.auditSvc.UserActivity(c.Context(), userID, &orgID, queryLimit(c, 50, 500))
	if err != nil {
		h.log.Error("user activity fetch failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: entries})
}

func (h *AuditHandler) SecurityEvents(c *fiber.Ctx) error {
	orgID, ok := uuidParam(c, "id")
	if !ok {
		return nil
	}
	from, to := queryTimeRange(c, 24*time.Hour)
	entries, err := h.auditSvc.SecurityEvents(c.Context(), &orgID, from, to, queryLimit(c, 100, 1000))
	if err != nil {
		h.log.Error("security events fetch failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: entries})
}

func (h *AuditHandler) FailedActions(c *fiber.Ctx) error {
	orgID, ok := uuidParam(c, "id")
	if !ok {
		return nil
	}
	entries, err := h.auditSvc.FailedActions(c.Context(), &orgID, queryLimit(c, 50, 500))
	if err != nil {
		h.log.Error("failed actions fetch failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: entries})
}

func (h *AuditHandler) Stats(c *fiber.Ctx) error {
	orgID, ok := uuidParam(c, "id")
	if !ok {
		return nil
	}
	from, to := queryTimeRange(c, 7*24*time.Hour)
	stats, err := h.auditSvc.Stats(c.Context(), &orgID, from, to)
	if err != nil {
		h.log.Error("audit stats failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: stats})
}

func (h *AuditHandler) Correlated(c *fiber.Ctx) error {
	orgID, ok := uuidParam(c, "id")
	if !ok {
		return nil
	}
	correlationID := c.Params("correlationId")
	if correlationID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "correlation id is required"})
	}
	entries, err := h.auditSvc.Correlated(c.Context(), &orgID, correlationID)
	if err != nil {
		h.log.Error("correlated fetch failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: entries})
}

func (h *AuditHandler) SuspiciousActivity(c *fiber.Ctx) error {
	orgID, ok := uuidParam(c, "id")
	if !ok {
		return nil
	}
	entries, err := h.auditSvc.SuspiciousActivity(c.Context(), &orgID, c.QueryInt("hours", 24))
	if err != nil {
		h.log.Error("suspicious activity fetch failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: entries})
}

func (h *AuditHandler) Export(c *fiber.Ctx) error {
	orgID, ok := uuidParam(c, "id")
	if !ok {
		return nil
	}
	filter := filterFromQuery(c)
	filter.OrganizationID = &orgID
	entries, err := h.auditSvc.Export(c.Context(), filter)
	if err != nil {
		h.log.Error("audit export failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: entries})
}

// Cleanup triggers a retention sweep on demand. The same sweep runs on
// a schedule in the worker binary.
func (h *AuditHandler) Cleanup(c *fiber.Ctx) error {
	days := c.QueryInt("days", h.retentionDays)
	deleted, err := h.auditSvc.Cleanup(c.Context(), days)
	if err != nil {
		h.log.Error("audit cleanup failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: fiber.Map{"deleted": deleted, "retention_days": days}})
}

func filterFromQuery(c *fiber.Ctx) audit.LogFilter {
	f := audit.LogFilter{
		Action:        c.Query("action"),
		TargetType:    c.Query("target_type"),
		Status:        c.Query("status"),
		Severity:      c.Query("severity"),
		Category:      c.Query("category"),
		CorrelationID: c.Query("correlation_id"),
	}
	if raw := c.Query("user_id"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			f.UserID = &id
		}
	}
	if raw := c.Query("from"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			f.From = &t
		}
	}
	if raw := c.Query("to"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			f.To = &t
		}
	}
	return f
}
