package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/orghub/backend/internal/http/dto"
	"github.com/orghub/backend/internal/middleware"
	"github.com/orghub/backend/internal/models"
	"github.com/orghub/backend/internal/services"
	"go.uber.org/zap"
)

type OrganizationHandler struct {
	orgSvc *services.OrganizationService
	log    *zap.Logger
}

func NewOrganizationHandler(orgSvc *services.OrganizationService, log *zap.Logger) *OrganizationHandler {
	return &OrganizationHandler{orgSvc: orgSvc, log: log}
}

func (h *OrganizationHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateOrganizationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "name is required"})
	}

	org := &models.Organization{
		Name:        req.Name,
		Website:     req.Website,
		Description: req.Description,
	}
	if err := h.orgSvc.Create(c.Context(), middleware.GetUserID(c), org); err != nil {
		h.log.Error("organization create failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: org})
}

func (h *OrganizationHandler) List(c *fiber.Ctx) error {
	orgs, err := h.orgSvc.ListForUser(c.Context(), middleware.GetUserID(c))
	if err != nil {
		h.log.Error("organization list failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: orgs})
}

func (h *OrganizationHandler) Get(c *fiber.Ctx) error {
	orgID, ok := uuidParam(c, "id")
	if !ok {
		return nil
	}
	org, err := h.orgSvc.GetForMember(c.Context(), orgID, middleware.GetUserID(c))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "organization not found"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: org})
}

func (h *OrganizationHandler) Update(c *fiber.Ctx) error {
	orgID, ok := uuidParam(c, "id")
	if !ok {
		return nil
	}
	var req dto.UpdateOrganizationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "name is required"})
	}

	org, err := h.orgSvc.Update(c.Context(), orgID, middleware.GetUserID(c), &models.Organization{
		Name:        req.Name,
		Website:     req.Website,
		Description: req.Description,
	})
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: org})
}

func (h *OrganizationHandler) TransferOwnership(c *fiber.Ctx) error {
	orgID, ok := uuidParam(c, "id")
	if !ok {
		return nil
	}
	var req dto.TransferOwnershipRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}
	newOwnerID, err := uuid.Parse(req.NewOwnerUserID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid new_owner_user_id"})
	}

	if err := h.orgSvc.TransferOwnership(c.Context(), orgID, middleware.GetUserID(c), newOwnerID); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}

func (h *OrganizationHandler) Delete(c *fiber.Ctx) error {
	orgID, ok := uuidParam(c, "id")
	if !ok {
		return nil
	}
	if err := h.orgSvc.Delete(c.Context(), orgID, middleware.GetUserID(c)); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}

// serviceError maps the service layer's sentinel messages onto HTTP
// statuses. The services return plain errors by design, so the mapping
// is by message.
func serviceError(c *fiber.Ctx, err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "not found"):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: msg})
	case strings.Contains(msg, "permission"):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Error: msg})
	case strings.Contains(msg, "invalid"), strings.Contains(msg, "owner"), strings.Contains(msg, "expired"),
		strings.Contains(msg, "not a member"),
		strings.Contains(msg, "not pending"), strings.Contains(msg, "no longer"), strings.Contains(msg, "different email"):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: msg})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
}
