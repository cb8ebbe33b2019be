package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/orghub/backend/internal/audit"
	"github.com/orghub/backend/internal/auth"
	"github.com/orghub/backend/internal/models"
	"github.com/orghub/backend/internal/rbac"
	"github.com/orghub/backend/internal/repositories"
	"go.uber.org/zap"
)

type InvitationService struct {
	invitationRepo *repositories.InvitationRepo
	memberRepo     *repositories.MemberRepo
	auditSvc       *audit.Service
	ttl            time.Duration
	log            *zap.Logger
}

func NewInvitationService(
	invitationRepo *repositories.InvitationRepo,
	memberRepo *repositories.MemberRepo,
	auditSvc *audit.Service,
	ttl time.Duration,
	log *zap.Logger,
) *InvitationService {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &InvitationService{
		invitationRepo: invitationRepo,
		memberRepo:     memberRepo,
		auditSvc:       auditSvc,
		ttl:            ttl,
		log:            log,
	}
}

// Create issues an invitation token. Delivery (email) is an external
// concern: the token is returned to the caller.
func (s *InvitationService) Create(ctx context.Context, orgID, actorID uuid.UUID, email, role string) (*models.Invitation, error) {
	if !rbac.IsValidRole(role) || role == rbac.RoleOwner {
		return nil, fmt.Errorf("invalid role")
	}
	if err := s.requirePermission(ctx, orgID, actorID, rbac.PermInviteMembers); err != nil {
		return nil, err
	}

	token, err := auth.NewOpaqueToken()
	if err != nil {
		return nil, err
	}

	inv := &models.Invitation{
		OrganizationID: orgID,
		Email:          strings.ToLower(strings.TrimSpace(email)),
		Role:           role,
		Token:          token,
		Status:         models.InvitationPending,
		InvitedBy:      actorID,
		ExpiresAt:      time.Now().Add(s.ttl),
	}
	if err := s.invitationRepo.Create(ctx, inv); err != nil {
		return nil, err
	}

	s.auditSvc.LogDataChange(ctx, "INVITATION_CREATE", models.TargetInvitation,
		inv.ID.String(), "invitations", &orgID, nil, inv.Snapshot(), &actorID, nil)

	return inv, nil
}

func (s *InvitationService) List(ctx context.Context, orgID, actorID uuid.UUID) ([]models.Invitation, error) {
	if err := s.requirePermission(ctx, orgID, actorID, rbac.PermInviteMembers); err != nil {
		return nil, err
	}
	return s.invitationRepo.ListByOrg(ctx, orgID)
}

func (s *InvitationService) Revoke(ctx context.Context, orgID, actorID, invitationID uuid.UUID) error {
	if err := s.requirePermission(ctx, orgID, actorID, rbac.PermInviteMembers); err != nil {
		return err
	}

	inv, err := s.invitationRepo.GetByID(ctx, invitationID)
	if err != nil || inv.OrganizationID != orgID {
		return fmt.Errorf("invitation not found")
	}
	if inv.Status != models.InvitationPending {
		return fmt.Errorf("invitation is not pending")
	}

	before := inv.Snapshot()
	if err := s.invitationRepo.UpdateStatus(ctx, invitationID, models.InvitationRevoked); err != nil {
		return err
	}
	after := inv.Snapshot()
	after["status"] = models.InvitationRevoked

	s.auditSvc.LogDataChange(ctx, "INVITATION_REVOKE", models.TargetInvitation,
		invitationID.String(), "invitations", &orgID, before, after, &actorID, nil)

	return nil
}

// Accept consumes a pending invitation and adds the accepting user as a
// member with the invited role.
func (s *InvitationService) Accept(ctx context.Context, token string, user *models.User) (*models.Member, error) {
	inv, err := s.invitationRepo.GetByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("invitation not found")
	}
	if inv.Status != models.InvitationPending {
		return nil, fmt.Errorf("invitation is no longer valid")
	}
	if time.Now().After(inv.ExpiresAt) {
		_ = s.invitationRepo.UpdateStatus(ctx, inv.ID, models.InvitationExpired)
		return nil, fmt.Errorf("invitation expired")
	}
	if !strings.EqualFold(inv.Email, user.Email) {
		return nil, fmt.Errorf("invitation was issued to a different email")
	}

	member := &models.Member{
		OrganizationID: inv.OrganizationID,
		UserID:         user.ID,
		Role:           inv.Role,
	}
	if err := s.memberRepo.Add(ctx, member); err != nil {
		return nil, err
	}
	if err := s.invitationRepo.UpdateStatus(ctx, inv.ID, models.InvitationAccepted); err != nil {
		s.log.Warn("failed to mark invitation accepted", zap.String("invitation_id", inv.ID.String()), zap.Error(err))
	}

	s.auditSvc.LogDataChange(ctx, "INVITATION_ACCEPT", models.TargetInvitation,
		inv.ID.String(), "invitations", &inv.OrganizationID, inv.Snapshot(), member.Snapshot(), &user.ID, nil)

	return member, nil
}

func (s *InvitationService) requirePermission(ctx context.Context, orgID, userID uuid.UUID, perm string) error {
	m, err := s.memberRepo.Get(ctx, orgID, userID)
	if err != nil {
		return fmt.Errorf("organization not found")
	}
	if !rbac.HasPermission(m.Role, perm) {
		return fmt.Errorf("insufficient permissions")
	}
	return nil
}
