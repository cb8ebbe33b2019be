package handlers

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/orghub/backend/internal/audit"
	"github.com/orghub/backend/internal/auth"
	"github.com/orghub/backend/internal/config"
	"github.com/orghub/backend/internal/events"
	"github.com/orghub/backend/internal/http/dto"
	"github.com/orghub/backend/internal/middleware"
	"github.com/orghub/backend/internal/models"
	"github.com/orghub/backend/internal/repositories"
	"github.com/orghub/backend/internal/security"
	"go.uber.org/zap"
)

type AuthHandler struct {
	userRepo  *repositories.UserRepo
	tokenRepo *repositories.RefreshTokenRepo
	auditSvc  *audit.Service
	protector *security.BruteForceProtector
	google    *auth.GoogleClient
	publisher events.Publisher
	cfg       *config.Config
	log       *zap.Logger
}

func NewAuthHandler(
	userRepo *repositories.UserRepo,
	tokenRepo *repositories.RefreshTokenRepo,
	auditSvc *audit.Service,
	protector *security.BruteForceProtector,
	google *auth.GoogleClient,
	publisher events.Publisher,
	cfg *config.Config,
	log *zap.Logger,
) *AuthHandler {
	return &AuthHandler{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		auditSvc:  auditSvc,
		protector: protector,
		google:    google,
		publisher: publisher,
		cfg:       cfg,
		log:       log,
	}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "valid email is required"})
	}
	if len(req.Password) < 8 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "password must be at least 8 characters"})
	}

	if _, err := h.userRepo.GetByEmail(c.Context(), req.Email); err == nil {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Error: "email already registered"})
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.log.Error("password hash failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}

	user := &models.User{Email: req.Email, Name: req.Name, PasswordHash: hash}
	if err := h.userRepo.Create(c.Context(), user); err != nil {
		h.log.Error("user create failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}

	go h.auditSvc.LogAuth(context.Background(), "USER_REGISTER", &user.ID, user.Email, user.Name,
		middleware.ClientIP(c), middleware.ClientUserAgent(c), nil)

	return h.issueTokens(c, user)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	ip := middleware.ClientIP(c)
	ua := middleware.ClientUserAgent(c)

	user, err := h.userRepo.GetByEmail(c.Context(), email)
	if err != nil || user.PasswordHash == "" || !auth.CheckPassword(user.PasswordHash, req.Password) {
		h.recordLoginFailure(c, email, ip, ua)
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "invalid email or password"})
	}

	h.protector.Clear(c.Context(), ip)
	if err := h.userRepo.UpdateLastLogin(c.Context(), user.ID); err != nil {
		h.log.Warn("failed to update last login", zap.Error(err))
	}

	go h.auditSvc.LogAuth(context.Background(), "LOGIN_SUCCESS", &user.ID, user.Email, user.Name, ip, ua, nil)

	return h.issueTokens(c, user)
}

// recordLoginFailure feeds the brute-force counter and audits the
// failed attempt. A lockout crossing is itself a security event and is
// fanned out to the alert channel.
func (h *AuthHandler) recordLoginFailure(c *fiber.Ctx, email, ip, ua string) {
	_, lockedNow := h.protector.RecordFailure(c.Context(), ip)

	go h.auditSvc.LogAuth(context.Background(), "LOGIN_FAILED", nil, email, "", ip, ua, nil)

	if lockedNow {
		go func() {
			h.auditSvc.LogSecurity(context.Background(), "BRUTE_FORCE_LOCKOUT",
				"failed login threshold reached, IP locked out",
				nil, ip, models.SeverityError, map[string]any{
					"lockout_minutes": h.protector.LockoutDuration().Minutes(),
				})
			if err := h.publisher.Publish(context.Background(), events.ChannelSecurityAlerts, events.Event{
				Type:    events.EventBruteForceLockout,
				Payload: map[string]any{"ip": ip},
			}); err != nil {
				h.log.Warn("lockout alert publish failed", zap.Error(err))
			}
		}()
	}
}

func (h *AuthHandler) GoogleLogin(c *fiber.Ctx) error {
	var req dto.GoogleLoginRequest
	if err := c.BodyParser(&req); err != nil || req.Code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "authorization code is required"})
	}

	profile, err := h.google.Exchange(c.Context(), req.Code)
	if err != nil {
		h.log.Warn("google code exchange failed", zap.Error(err))
		go h.auditSvc.LogAuth(context.Background(), "GOOGLE_LOGIN_FAILED", nil, "", "",
			middleware.ClientIP(c), middleware.ClientUserAgent(c), nil)
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "google authentication failed"})
	}

	user, err := h.userRepo.UpsertByGoogleID(c.Context(), profile.ID, strings.ToLower(profile.Email), profile.Name)
	if err != nil {
		h.log.Error("google user upsert failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}

	h.protector.Clear(c.Context(), middleware.ClientIP(c))
	if err := h.userRepo.UpdateLastLogin(c.Context(), user.ID); err != nil {
		h.log.Warn("failed to update last login", zap.Error(err))
	}

	go h.auditSvc.LogAuth(context.Background(), "GOOGLE_LOGIN_SUCCESS", &user.ID, user.Email, user.Name,
		middleware.ClientIP(c), middleware.ClientUserAgent(c), nil)

	return h.issueTokens(c, user)
}

// Refresh rotates the refresh token: the presented one is revoked and a
// new pair is issued.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := c.BodyParser(&req); err != nil || req.RefreshToken == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "refresh_token is required"})
	}

	stored, err := h.tokenRepo.GetActiveByHash(c.Context(), auth.HashRefreshToken(req.RefreshToken))
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "invalid or expired refresh token"})
	}

	user, err := h.userRepo.GetByID(c.Context(), stored.UserID)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "invalid or expired refresh token"})
	}

	if err := h.tokenRepo.Revoke(c.Context(), stored.ID); err != nil {
		h.log.Warn("refresh token revoke failed", zap.Error(err))
	}

	go h.auditSvc.LogAuth(context.Background(), "TOKEN_REFRESH", &user.ID, user.Email, user.Name,
		middleware.ClientIP(c), middleware.ClientUserAgent(c), nil)

	return h.issueTokens(c, user)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "not authenticated"})
	}

	if err := h.tokenRepo.RevokeAllForUser(c.Context(), userID); err != nil {
		h.log.Error("logout revoke failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}

	go h.auditSvc.LogAuth(context.Background(), "LOGOUT", &userID,
		middleware.GetUserEmail(c), middleware.GetUserName(c),
		middleware.ClientIP(c), middleware.ClientUserAgent(c), nil)

	return c.JSON(dto.SuccessResponse{OK: true})
}

func (h *AuthHandler) issueTokens(c *fiber.Ctx, user *models.User) error {
	accessToken, err := auth.GenerateAccessToken(h.cfg.JWTSecret, user.ID, user.Email, user.Name, h.cfg.JWTExpiration)
	if err != nil {
		h.log.Error("access token mint failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}

	refreshToken, hash, err := auth.NewRefreshToken()
	if err != nil {
		h.log.Error("refresh token mint failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	if err := h.tokenRepo.Create(c.Context(), &models.RefreshToken{
		UserID:    user.ID,
		TokenHash: hash,
		ExpiresAt: timeNow().Add(h.cfg.RefreshTokenTTL),
	}); err != nil {
		h.log.Error("refresh token store failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}

	return c.JSON(dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	})
}
