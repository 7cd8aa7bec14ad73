package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campuskit/academy-api/internal/models"
	"github.com/campuskit/academy-api/internal/tenant"
)

// AuditLogRepository appends and reads the immutable audit trail.
type AuditLogRepository struct {
	db *sqlx.DB
}

// NewAuditLogRepository constructs an AuditLogRepository.
func NewAuditLogRepository(db *sqlx.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

// Create appends an audit record. Rows are never updated or deleted.
func (r *AuditLogRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO audit_logs (id, company_id, user_id, table_name, record_id, action, old_values, new_values, ip_address, user_agent, created_at)
        VALUES (:id, :company_id, :user_id, :table_name, :record_id, :action, :old_values, :new_values, :ip_address, :user_agent, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("create audit log: %w", err)
	}
	return nil
}

// List returns audit records within scope, newest first.
func (r *AuditLogRepository) List(ctx context.Context, scope tenant.Scope, filter models.AuditLogFilter) ([]models.AuditLog, int, error) {
	args := []interface{}{}
	conditions := []string{"1=1"}

	if clause := scopeClause(scope, "company_id", &args); clause != "" {
		conditions = append(conditions, clause)
	}
	if filter.TableName != "" {
		conditions = append(conditions, fmt.Sprintf("table_name = $%d", len(args)+1))
		args = append(args, filter.TableName)
	}
	if filter.Action != "" {
		conditions = append(conditions, fmt.Sprintf("action = $%d", len(args)+1))
		args = append(args, filter.Action)
	}
	if filter.RecordID != "" {
		conditions = append(conditions, fmt.Sprintf("record_id = $%d", len(args)+1))
		args = append(args, filter.RecordID)
	}

	where := strings.Join(conditions, " AND ")

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) FROM audit_logs WHERE %s", where), args...); err != nil {
		return nil, 0, fmt.Errorf("count audit logs: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT id, company_id, user_id, table_name, record_id, action, old_values, new_values, ip_address, user_agent, created_at
        FROM audit_logs WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`, where, size, offset)
	var logs []models.AuditLog
	if err := r.db.SelectContext(ctx, &logs, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list audit logs: %w", err)
	}
	return logs, total, nil
}
