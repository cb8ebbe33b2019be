package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/orghub/backend/internal/models"
)

type InvitationRepo struct {
	pool *pgxpool.Pool
}

func NewInvitationRepo(pool *pgxpool.Pool) *InvitationRepo {
	return &InvitationRepo{pool: pool}
}

func (r *InvitationRepo) Create(ctx context.Context, inv *models.Invitation) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO invitations (organization_id, email, role, token, status, invited_by, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, inv.OrganizationID, inv.Email, inv.Role, inv.Token, inv.Status, inv.InvitedBy, inv.ExpiresAt).
		Scan(&inv.ID, &inv.CreatedAt)
}

func (r *InvitationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Invitation, error) {
	var inv models.Invitation
	err := r.pool.QueryRow(ctx, `
		SELECT id, organization_id, email, role, token, status, invited_by, expires_at, created_at
		FROM invitations WHERE id = $1
	`, id).Scan(&inv.ID, &inv.OrganizationID, &inv.Email, &inv.Role, &inv.Token, &inv.Status,
		&inv.InvitedBy, &inv.ExpiresAt, &inv.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *InvitationRepo) GetByToken(ctx context.Context, token string) (*models.Invitation, error) {
	var inv models.Invitation
	err := r.pool.QueryRow(ctx, `
		SELECT id, organization_id, email, role, token, status, invited_by, expires_at, created_at
		FROM invitations WHERE token = $1
	`, token).Scan(&inv.ID, &inv.OrganizationID, &inv.Email, &inv.Role, &inv.Token, &inv.Status,
		&inv.InvitedBy, &inv.ExpiresAt, &inv.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *InvitationRepo) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]models.Invitation, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, organization_id, email, role, token, status, invited_by, expires_at, created_at
		FROM invitations WHERE organization_id = $1
		ORDER BY created_at DESC
	`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invitations []models.Invitation
	for rows.Next() {
		var inv models.Invitation
		if err := rows.Scan(&inv.ID, &inv.OrganizationID, &inv.Email, &inv.Role, &inv.Token, &inv.Status,
			&inv.InvitedBy, &inv.ExpiresAt, &inv.CreatedAt); err != nil {
			return nil, err
		}
		invitations = append(invitations, inv)
	}
	return invitations, rows.Err()
}

func (r *InvitationRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := r.pool.Exec(ctx, `UPDATE invitations SET status = $1 WHERE id = $2`, status, id)
	return err
}

// ExpirePending marks overdue pending invitations as expired, returning
// the count. Idempotent: a second run in the same moment affects zero
// rows.
func (r *InvitationRepo) ExpirePending(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE invitations SET status = $1
		WHERE status = $2 AND expires_at < $3
	`, models.InvitationExpired, models.InvitationPending, time.Now())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
