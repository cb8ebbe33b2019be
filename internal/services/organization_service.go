package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/orghub/backend/internal/audit"
	"github.com/orghub/backend/internal/models"
	"github.com/orghub/backend/internal/rbac"
	"github.com/orghub/backend/internal/repositories"
	"github.com/orghub/backend/internal/webmeta"
	"go.uber.org/zap"
)

type OrganizationService struct {
	orgRepo    *repositories.OrganizationRepo
	memberRepo *repositories.MemberRepo
	auditSvc   *audit.Service
	meta       *webmeta.Fetcher
	log        *zap.Logger
}

func NewOrganizationService(
	orgRepo *repositories.OrganizationRepo,
	memberRepo *repositories.MemberRepo,
	auditSvc *audit.Service,
	meta *webmeta.Fetcher,
	log *zap.Logger,
) *OrganizationService {
	return &OrganizationService{
		orgRepo:    orgRepo,
		memberRepo: memberRepo,
		auditSvc:   auditSvc,
		meta:       meta,
		log:        log,
	}
}

// Create stores the organization, makes the creator its owner member
// and kicks off best-effort website metadata enrichment.
func (s *OrganizationService) Create(ctx context.Context, userID uuid.UUID, o *models.Organization) error {
	o.OwnerUserID = userID
	if err := s.orgRepo.Create(ctx, o); err != nil {
		return err
	}

	if err := s.memberRepo.Add(ctx, &models.Member{
		OrganizationID: o.ID,
		UserID:         userID,
		Role:           rbac.RoleOwner,
	}); err != nil {
		return err
	}

	s.auditSvc.LogDataChange(ctx, "ORGANIZATION_CREATE", models.TargetOrganization,
		o.ID.String(), "organizations", &o.ID, nil, o.Snapshot(), &userID, nil)

	if o.Website != nil && *o.Website != "" {
		go s.enrichSiteMeta(o.ID, *o.Website)
	}

	return nil
}

func (s *OrganizationService) enrichSiteMeta(orgID uuid.UUID, siteURL string) {
	ctx := context.Background()
	meta, err := s.meta.Fetch(ctx, siteURL)
	if err != nil {
		s.log.Warn("website metadata fetch failed",
			zap.String("org_id", orgID.String()),
			zap.String("url", siteURL),
			zap.Error(err),
		)
		return
	}
	if err := s.orgRepo.UpdateSiteMeta(ctx, orgID, meta.Title, meta.Description); err != nil {
		s.log.Warn("website metadata update failed", zap.String("org_id", orgID.String()), zap.Error(err))
	}
}

func (s *OrganizationService) GetForMember(ctx context.Context, orgID, userID uuid.UUID) (*models.Organization, error) {
	if _, err := s.memberRepo.Get(ctx, orgID, userID); err != nil {
		return nil, fmt.Errorf("organization not found")
	}
	return s.orgRepo.GetByID(ctx, orgID)
}

// Snapshot loads the audit before-state for an organization. Used by
// the change-auditing middleware.
func (s *OrganizationService) Snapshot(ctx context.Context, orgID uuid.UUID) (map[string]any, error) {
	o, err := s.orgRepo.GetByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	return o.Snapshot(), nil
}

func (s *OrganizationService) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Organization, error) {
	return s.orgRepo.ListByUser(ctx, userID)
}

func (s *OrganizationService) Update(ctx context.Context, orgID, userID uuid.UUID, o *models.Organization) (*models.Organization, error) {
	if err := s.requirePermission(ctx, orgID, userID, rbac.PermManageOrg); err != nil {
		return nil, err
	}

	existing, err := s.orgRepo.GetByID(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("organization not found")
	}

	existing.Name = o.Name
	existing.Website = o.Website
	existing.Description = o.Description
	if err := s.orgRepo.Update(ctx, existing); err != nil {
		return nil, err
	}

	if existing.Website != nil && *existing.Website != "" {
		go s.enrichSiteMeta(existing.ID, *existing.Website)
	}

	return s.orgRepo.GetByID(ctx, orgID)
}

func (s *OrganizationService) TransferOwnership(ctx context.Context, orgID, userID, newOwnerID uuid.UUID) error {
	if err := s.requirePermission(ctx, orgID, userID, rbac.PermTransferOwnership); err != nil {
		return err
	}

	newOwner, err := s.memberRepo.Get(ctx, orgID, newOwnerID)
	if err != nil {
		return fmt.Errorf("new owner is not a member")
	}

	before, _ := s.Snapshot(ctx, orgID)

	if err := s.orgRepo.TransferOwnership(ctx, orgID, newOwnerID); err != nil {
		return err
	}
	if err := s.memberRepo.UpdateRole(ctx, newOwner.ID, rbac.RoleOwner); err != nil {
		return err
	}
	if old, err := s.memberRepo.Get(ctx, orgID, userID); err == nil {
		if err := s.memberRepo.UpdateRole(ctx, old.ID, rbac.RoleAdmin); err != nil {
			s.log.Warn("failed to demote previous owner", zap.Error(err))
		}
	}

	after, _ := s.Snapshot(ctx, orgID)
	s.auditSvc.LogDataChange(ctx, "ORGANIZATION_OWNERSHIP_TRANSFER", models.TargetOrganization,
		orgID.String(), "organizations", &orgID, before, after, &userID, nil)

	return nil
}

func (s *OrganizationService) Delete(ctx context.Context, orgID, userID uuid.UUID) error {
	if err := s.requirePermission(ctx, orgID, userID, rbac.PermDeleteOrg); err != nil {
		return err
	}

	before, _ := s.Snapshot(ctx, orgID)
	if err := s.orgRepo.Delete(ctx, orgID); err != nil {
		return err
	}

	s.auditSvc.LogDataChange(ctx, "ORGANIZATION_DELETE", models.TargetOrganization,
		orgID.String(), "organizations", &orgID, before, nil, &userID, nil)

	return nil
}

func (s *OrganizationService) requirePermission(ctx context.Context, orgID, userID uuid.UUID, perm string) error {
	m, err := s.memberRepo.Get(ctx, orgID, userID)
	if err != nil {
		return fmt.Errorf("organization not found")
	}
	if !rbac.HasPermission(m.Role, perm) {
		return fmt.Errorf("insufficient permissions")
	}
	return nil
}
