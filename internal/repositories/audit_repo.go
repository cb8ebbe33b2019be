package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/orghub/backend/internal/audit"
	"github.com/orghub/backend/internal/models"
)

// AuditRepo is the Postgres audit.Store implementation.
type AuditRepo struct {
	pool *pgxpool.Pool
}

func NewAuditRepo(pool *pgxpool.Pool) *AuditRepo {
	return &AuditRepo{pool: pool}
}

const auditColumns = `log_id, user_id, user_email, user_name, action, action_description,
	target_type, target_id, target_table, before_data, after_data, changes,
	ip_address, user_agent, request_url, request_method, request_body, response_status,
	status, error_message, duration_ms, organization_id, session_id, correlation_id,
	severity, category, metadata, tags, created_at`

func (r *AuditRepo) Create(ctx context.Context, e *models.AuditLogEntry) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO audit_logs (`+auditColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29)
	`, e.LogID, e.UserID, e.UserEmail, e.UserName, e.Action, e.ActionDescription,
		e.TargetType, e.TargetID, e.TargetTable, e.BeforeData, e.AfterData, e.Changes,
		e.IPAddress, e.UserAgent, e.RequestURL, e.RequestMethod, e.RequestBody, e.ResponseStatus,
		e.Status, e.ErrorMessage, e.DurationMS, e.OrganizationID, e.SessionID, e.CorrelationID,
		e.Severity, e.Category, e.Metadata, e.Tags, e.CreatedAt)
	return err
}

func (r *AuditRepo) BulkCreate(ctx context.Context, entries []*models.AuditLogEntry) error {
	if len(entries) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(`
			INSERT INTO audit_logs (`+auditColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
				$16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29)
		`, e.LogID, e.UserID, e.UserEmail, e.UserName, e.Action, e.ActionDescription,
			e.TargetType, e.TargetID, e.TargetTable, e.BeforeData, e.AfterData, e.Changes,
			e.IPAddress, e.UserAgent, e.RequestURL, e.RequestMethod, e.RequestBody, e.ResponseStatus,
			e.Status, e.ErrorMessage, e.DurationMS, e.OrganizationID, e.SessionID, e.CorrelationID,
			e.Severity, e.Category, e.Metadata, e.Tags, e.CreatedAt)
	}
	return r.pool.SendBatch(ctx, batch).Close()
}

func (r *AuditRepo) Query(ctx context.Context, f audit.LogFilter, p audit.Page) ([]models.AuditLogEntry, int64, error) {
	var conds []string
	var args []any

	add := func(cond string, val any) {
		args = append(args, val)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.UserID != nil {
		add("user_id = $%d", *f.UserID)
	}
	if f.OrganizationID != nil {
		add("organization_id = $%d", *f.OrganizationID)
	}
	if f.Action != "" {
		add("action = $%d", f.Action)
	}
	if f.TargetType != "" {
		add("target_type = $%d", f.TargetType)
	}
	if f.Status != "" {
		add("status = $%d", f.Status)
	}
	if f.Severity != "" {
		add("severity = $%d", f.Severity)
	}
	if f.Category != "" {
		add("category = $%d", f.Category)
	}
	if f.CorrelationID != "" {
		add("correlation_id = $%d", f.CorrelationID)
	}
	if f.From != nil {
		add("created_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("created_at <= $%d", *f.To)
	}

	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	var total int64
	if err := r.pool.QueryRow(ctx, "SELECT count(*) FROM audit_logs "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sortBy := "created_at"
	switch p.SortBy {
	case "created_at", "severity", "action", "status":
		sortBy = p.SortBy
	}
	sortOrder := "DESC"
	if strings.EqualFold(p.SortOrder, "asc") {
		sortOrder = "ASC"
	}

	limit := p.Limit
	if limit <= 0 {
		limit = 50
	}
	page := p.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit

	query := fmt.Sprintf("SELECT %s FROM audit_logs %s ORDER BY %s %s LIMIT $%d OFFSET $%d",
		auditColumns, where, sortBy, sortOrder, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	entries, err := scanAuditRows(rows)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// orgScope is the tenant predicate shared by the Find reads: a NULL
// orgID parameter means unscoped, otherwise only that organization's
// entries match.
const orgScope = `($1::uuid IS NULL OR organization_id = $1)`

func (r *AuditRepo) FindByUser(ctx context.Context, userID uuid.UUID, orgID *uuid.UUID, limit int) ([]models.AuditLogEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+auditColumns+` FROM audit_logs
		WHERE `+orgScope+` AND user_id = $2
		ORDER BY created_at DESC LIMIT $3
	`, orgID, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAuditRows(rows)
}

func (r *AuditRepo) FindRecent(ctx context.Context, orgID *uuid.UUID, limit int) ([]models.AuditLogEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+auditColumns+` FROM audit_logs
		WHERE `+orgScope+`
		ORDER BY created_at DESC LIMIT $2
	`, orgID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAuditRows(rows)
}

func (r *AuditRepo) FindSecurityEvents(ctx context.Context, orgID *uuid.UUID, from, to time.Time, limit int) ([]models.AuditLogEntry, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+auditColumns+` FROM audit_logs
		WHERE `+orgScope+` AND category = $2 AND created_at BETWEEN $3 AND $4
		ORDER BY created_at DESC LIMIT $5
	`, orgID, models.CategorySecurity, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAuditRows(rows)
}

func (r *AuditRepo) FindFailedActions(ctx context.Context, orgID *uuid.UUID, limit int) ([]models.AuditLogEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+auditColumns+` FROM audit_logs
		WHERE `+orgScope+` AND status IN ($2, $3)
		ORDER BY created_at DESC LIMIT $4
	`, orgID, models.AuditStatusFailed, models.AuditStatusError, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAuditRows(rows)
}

func (r *AuditRepo) DeleteOldLogs(ctx context.Context, retentionDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	tag, err := r.pool.Exec(ctx, `DELETE FROM audit_logs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *AuditRepo) Stats(ctx context.Context, orgID *uuid.UUID, from, to time.Time) (*models.AuditStats, error) {
	stats := &models.AuditStats{
		ByStatus:   make(map[string]int64),
		BySeverity: make(map[string]int64),
		ByCategory: make(map[string]int64),
		TopActions: make(map[string]int64),
	}

	if err := r.pool.QueryRow(ctx, `
		SELECT count(*) FROM audit_logs WHERE `+orgScope+` AND created_at BETWEEN $2 AND $3
	`, orgID, from, to).Scan(&stats.Total); err != nil {
		return nil, err
	}

	groups := []struct {
		column string
		dest   map[string]int64
		limit  string
	}{
		{"status", stats.ByStatus, ""},
		{"severity", stats.BySeverity, ""},
		{"category", stats.ByCategory, ""},
		{"action", stats.TopActions, " ORDER BY count(*) DESC LIMIT 10"},
	}
	for _, g := range groups {
		rows, err := r.pool.Query(ctx, fmt.Sprintf(`
			SELECT %s, count(*) FROM audit_logs
			WHERE %s AND created_at BETWEEN $2 AND $3 GROUP BY %s%s
		`, g.column, orgScope, g.column, g.limit), orgID, from, to)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			var key string
			var count int64
			if err := rows.Scan(&key, &count); err != nil {
				rows.Close()
				return nil, err
			}
			g.dest[key] = count
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, err
		}
	}

	return stats, nil
}

func scanAuditRows(rows pgx.Rows) ([]models.AuditLogEntry, error) {
	var entries []models.AuditLogEntry
	for rows.Next() {
		var e models.AuditLogEntry
		if err := rows.Scan(
			&e.LogID, &e.UserID, &e.UserEmail, &e.UserName, &e.Action, &e.ActionDescription,
			&e.TargetType, &e.TargetID, &e.TargetTable, &e.BeforeData, &e.AfterData, &e.Changes,
			&e.IPAddress, &e.UserAgent, &e.RequestURL, &e.RequestMethod, &e.RequestBody, &e.ResponseStatus,
			&e.Status, &e.ErrorMessage, &e.DurationMS, &e.OrganizationID, &e.SessionID, &e.CorrelationID,
			&e.Severity, &e.Category, &e.Metadata, &e.Tags, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
