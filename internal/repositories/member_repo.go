package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/orghub/backend/internal/models"
)

type MemberRepo struct {
	pool *pgxpool.Pool
}

func NewMemberRepo(pool *pgxpool.Pool) *MemberRepo {
	return &MemberRepo{pool: pool}
}

func (r *MemberRepo) Add(ctx context.Context, m *models.Member) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO organization_members (organization_id, user_id, role)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, m.OrganizationID, m.UserID, m.Role).Scan(&m.ID, &m.CreatedAt)
}

func (r *MemberRepo) Get(ctx context.Context, orgID, userID uuid.UUID) (*models.Member, error) {
	var m models.Member
	err := r.pool.QueryRow(ctx, `
		SELECT id, organization_id, user_id, role, created_at
		FROM organization_members
		WHERE organization_id = $1 AND user_id = $2
	`, orgID, userID).Scan(&m.ID, &m.OrganizationID, &m.UserID, &m.Role, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MemberRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Member, error) {
	var m models.Member
	err := r.pool.QueryRow(ctx, `
		SELECT id, organization_id, user_id, role, created_at
		FROM organization_members WHERE id = $1
	`, id).Scan(&m.ID, &m.OrganizationID, &m.UserID, &m.Role, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MemberRepo) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]models.Member, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT m.id, m.organization_id, m.user_id, m.role, m.created_at, u.email, u.name
		FROM organization_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.organization_id = $1
		ORDER BY m.created_at
	`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []models.Member
	for rows.Next() {
		var m models.Member
		if err := rows.Scan(&m.ID, &m.OrganizationID, &m.UserID, &m.Role, &m.CreatedAt, &m.UserEmail, &m.UserName); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *MemberRepo) UpdateRole(ctx context.Context, id uuid.UUID, role string) error {
	_, err := r.pool.Exec(ctx, `UPDATE organization_members SET role = $1 WHERE id = $2`, role, id)
	return err
}

func (r *MemberRepo) Remove(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM organization_members WHERE id = $1`, id)
	return err
}
