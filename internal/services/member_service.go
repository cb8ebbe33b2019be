package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/orghub/backend/internal/audit"
	"github.com/orghub/backend/internal/models"
	"github.com/orghub/backend/internal/rbac"
	"github.com/orghub/backend/internal/repositories"
	"go.uber.org/zap"
)

type MemberService struct {
	memberRepo *repositories.MemberRepo
	orgRepo    *repositories.OrganizationRepo
	auditSvc   *audit.Service
	log        *zap.Logger
}

func NewMemberService(
	memberRepo *repositories.MemberRepo,
	orgRepo *repositories.OrganizationRepo,
	auditSvc *audit.Service,
	log *zap.Logger,
) *MemberService {
	return &MemberService{
		memberRepo: memberRepo,
		orgRepo:    orgRepo,
		auditSvc:   auditSvc,
		log:        log,
	}
}

func (s *MemberService) List(ctx context.Context, orgID, userID uuid.UUID) ([]models.Member, error) {
	if _, err := s.memberRepo.Get(ctx, orgID, userID); err != nil {
		return nil, fmt.Errorf("organization not found")
	}
	return s.memberRepo.ListByOrg(ctx, orgID)
}

func (s *MemberService) UpdateRole(ctx context.Context, orgID, actorID, memberID uuid.UUID, role string) (*models.Member, error) {
	if !rbac.IsValidRole(role) {
		return nil, fmt.Errorf("invalid role")
	}
	if role == rbac.RoleOwner {
		return nil, fmt.Errorf("ownership changes go through transfer")
	}
	if err := s.requirePermission(ctx, orgID, actorID, rbac.PermManageMembers); err != nil {
		return nil, err
	}

	m, err := s.memberRepo.GetByID(ctx, memberID)
	if err != nil || m.OrganizationID != orgID {
		return nil, fmt.Errorf("member not found")
	}
	if m.Role == rbac.RoleOwner {
		return nil, fmt.Errorf("cannot change the owner's role")
	}

	before := m.Snapshot()
	if err := s.memberRepo.UpdateRole(ctx, memberID, role); err != nil {
		return nil, err
	}
	updated, err := s.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}

	s.auditSvc.LogDataChange(ctx, "MEMBER_ROLE_UPDATE", models.TargetMember,
		memberID.String(), "organization_members", &orgID, before, updated.Snapshot(), &actorID, nil)

	return updated, nil
}

func (s *MemberService) Remove(ctx context.Context, orgID, actorID, memberID uuid.UUID) error {
	if err := s.requirePermission(ctx, orgID, actorID, rbac.PermManageMembers); err != nil {
		return err
	}

	m, err := s.memberRepo.GetByID(ctx, memberID)
	if err != nil || m.OrganizationID != orgID {
		return fmt.Errorf("member not found")
	}
	if m.Role == rbac.RoleOwner {
		return fmt.Errorf("cannot remove the owner")
	}

	before := m.Snapshot()
	if err := s.memberRepo.Remove(ctx, memberID); err != nil {
		return err
	}

	s.auditSvc.LogDataChange(ctx, "MEMBER_REMOVE", models.TargetMember,
		memberID.String(), "organization_members", &orgID, before, nil, &actorID, nil)

	return nil
}

func (s *MemberService) requirePermission(ctx context.Context, orgID, userID uuid.UUID, perm string) error {
	m, err := s.memberRepo.Get(ctx, orgID, userID)
	if err != nil {
		return fmt.Errorf("organization not found")
	}
	if !rbac.HasPermission(m.Role, perm) {
		return fmt.Errorf("insufficient permissions")
	}
	return nil
}
