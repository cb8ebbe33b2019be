package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/orghub/backend/internal/http/dto"
	"github.com/orghub/backend/internal/middleware"
	"github.com/orghub/backend/internal/services"
	"go.uber.org/zap"
)

type MemberHandler struct {
	memberSvc *services.MemberService
	log       *zap.Logger
}

func NewMemberHandler(memberSvc *services.MemberService, log *zap.Logger) *MemberHandler {
	return &MemberHandler{memberSvc: memberSvc, log: log}
}

func (h *MemberHandler) List(c *fiber.Ctx) error {
	orgID, ok := uuidParam(c, "id")
	if !ok {
		return nil
	}
	members, err := h.memberSvc.List(c.Context(), orgID, middleware.GetUserID(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: members})
}

func (h *MemberHandler) UpdateRole(c *fiber.Ctx) error {
	orgID, ok := uuidParam(c, "id")
	if !ok {
		return nil
	}
	memberID, ok := uuidParam(c, "memberId")
	if !ok {
		return nil
	}
	var req dto.UpdateMemberRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	member, err := h.memberSvc.UpdateRole(c.Context(), orgID, middleware.GetUserID(c), memberID, req.Role)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: member})
}

func (h *MemberHandler) Remove(c *fiber.Ctx) error {
	orgID, ok := uuidParam(c, "id")
	if !ok {
		return nil
	}
	memberID, ok := uuidParam(c, "memberId")
	if !ok {
		return nil
	}
	if err := h.memberSvc.Remove(c.Context(), orgID, middleware.GetUserID(c), memberID); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}
