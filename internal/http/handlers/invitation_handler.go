package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/orghub/backend/internal/http/dto"
	"github.com/orghub/backend/internal/middleware"
	"github.com/orghub/backend/internal/repositories"
	"github.com/orghub/backend/internal/services"
	"go.uber.org/zap"
)

type InvitationHandler struct {
	invitationSvc *services.InvitationService
	userRepo      *repositories.UserRepo
	log           *zap.Logger
}

func NewInvitationHandler(invitationSvc *services.InvitationService, userRepo *repositories.UserRepo, log *zap.Logger) *InvitationHandler {
	return &InvitationHandler{invitationSvc: invitationSvc, userRepo: userRepo, log: log}
}

func (h *InvitationHandler) Create(c *fiber.Ctx) error {
	orgID, ok := uuidParam(c, "id")
	if !ok {
		return nil
	}
	var req dto.CreateInvitationRequest
	if err := c.BodyParser(&req); err != nil || req.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "email and role are required"})
	}

	inv, err := h.invitationSvc.Create(c.Context(), orgID, middleware.GetUserID(c), req.Email, req.Role)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: inv})
}

func (h *InvitationHandler) List(c *fiber.Ctx) error {
	orgID, ok := uuidParam(c, "id")
	if !ok {
		return nil
	}
	invitations, err := h.invitationSvc.List(c.Context(), orgID, middleware.GetUserID(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: invitations})
}

func (h *InvitationHandler) Revoke(c *fiber.Ctx) error {
	orgID, ok := uuidParam(c, "id")
	if !ok {
		return nil
	}
	invitationID, ok := uuidParam(c, "invitationId")
	if !ok {
		return nil
	}
	if err := h.invitationSvc.Revoke(c.Context(), orgID, middleware.GetUserID(c), invitationID); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}

func (h *InvitationHandler) Accept(c *fiber.Ctx) error {
	var req dto.AcceptInvitationRequest
	if err := c.BodyParser(&req); err != nil || req.Token == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "token is required"})
	}

	user, err := h.userRepo.GetByID(c.Context(), middleware.GetUserID(c))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "user not found"})
	}

	member, err := h.invitationSvc.Accept(c.Context(), req.Token, user)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: member})
}
