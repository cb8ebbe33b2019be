package handlers

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/orghub/backend/internal/audit"
	"github.com/orghub/backend/internal/http/dto"
	"github.com/orghub/backend/internal/middleware"
	"github.com/orghub/backend/internal/models"
	"github.com/orghub/backend/internal/repositories"
	"go.uber.org/zap"
)

type UserHandler struct {
	userRepo *repositories.UserRepo
	auditSvc *audit.Service
	log      *zap.Logger
}

func NewUserHandler(userRepo *repositories.UserRepo, auditSvc *audit.Service, log *zap.Logger) *UserHandler {
	return &UserHandler{userRepo: userRepo, auditSvc: auditSvc, log: log}
}

func (h *UserHandler) GetMe(c *fiber.Ctx) error {
	user, err := h.userRepo.GetByID(c.Context(), middleware.GetUserID(c))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "user not found"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: user})
}

func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "name is required"})
	}

	userID := middleware.GetUserID(c)
	user, err := h.userRepo.GetByID(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "user not found"})
	}

	before := user.Snapshot()
	if err := h.userRepo.UpdateName(c.Context(), userID, req.Name); err != nil {
		h.log.Error("profile update failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	user.Name = req.Name

	go h.auditSvc.LogDataChange(context.Background(), "USER_UPDATE", models.TargetUser,
		userID.String(), "users", nil, before, user.Snapshot(), &userID, nil)

	return c.JSON(dto.SuccessResponse{OK: true, Data: user})
}
