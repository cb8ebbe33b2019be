package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/orghub/backend/internal/models"
)

type OrganizationRepo struct {
	pool *pgxpool.Pool
}

func NewOrganizationRepo(pool *pgxpool.Pool) *OrganizationRepo {
	return &OrganizationRepo{pool: pool}
}

const orgColumns = `id, name, website, description, site_title, site_description, owner_user_id, created_at, updated_at`

func (r *OrganizationRepo) Create(ctx context.Context, o *models.Organization) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO organizations (name, website, description, owner_user_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, o.Name, o.Website, o.Description, o.OwnerUserID).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
}

func (r *OrganizationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	var o models.Organization
	err := r.pool.QueryRow(ctx, `
		SELECT `+orgColumns+` FROM organizations WHERE id = $1
	`, id).Scan(&o.ID, &o.Name, &o.Website, &o.Description, &o.SiteTitle, &o.SiteDescription,
		&o.OwnerUserID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrganizationRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Organization, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+orgColumns+` FROM organizations o
		WHERE EXISTS (
			SELECT 1 FROM organization_members m
			WHERE m.organization_id = o.id AND m.user_id = $1
		)
		ORDER BY o.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orgs []models.Organization
	for rows.Next() {
		var o models.Organization
		if err := rows.Scan(&o.ID, &o.Name, &o.Website, &o.Description, &o.SiteTitle, &o.SiteDescription,
			&o.OwnerUserID, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		orgs = append(orgs, o)
	}
	return orgs, rows.Err()
}

func (r *OrganizationRepo) Update(ctx context.Context, o *models.Organization) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE organizations
		SET name = $1, website = $2, description = $3, updated_at = $4
		WHERE id = $5
	`, o.Name, o.Website, o.Description, time.Now(), o.ID)
	return err
}

func (r *OrganizationRepo) UpdateSiteMeta(ctx context.Context, id uuid.UUID, title, description string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE organizations SET site_title = $1, site_description = $2, updated_at = $3
		WHERE id = $4
	`, title, description, time.Now(), id)
	return err
}

func (r *OrganizationRepo) TransferOwnership(ctx context.Context, id, newOwnerID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE organizations SET owner_user_id = $1, updated_at = $2 WHERE id = $3
	`, newOwnerID, time.Now(), id)
	return err
}

func (r *OrganizationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM organizations WHERE id = $1`, id)
	return err
}
