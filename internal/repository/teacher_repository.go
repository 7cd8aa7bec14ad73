package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campuskit/academy-api/internal/models"
	"github.com/campuskit/academy-api/internal/tenant"
)

// TeacherRepository manages persistence for teacher records.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository constructs a TeacherRepository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

const teacherColumns = "t.id, t.user_id, t.company_id, t.site_id, t.code, t.specialization, t.experience_years, t.hourly_rate, t.max_students_per_day, t.available_for_trial, t.active, t.created_by, t.created_at, t.updated_by, t.updated_at"

// List returns teachers within scope joined with their backing user. The
// join is explicit so the per-row user fetch cost stays visible.
func (r *TeacherRepository) List(ctx context.Context, scope tenant.Scope, filter models.TeacherFilter) ([]models.TeacherDetail, int, error) {
	args := []interface{}{}
	conditions := []string{"1=1"}

	if clause := scopeClause(scope, "t.company_id", &args); clause != "" {
		conditions = append(conditions, clause)
	}
	if filter.CompanyID != "" {
		conditions = append(conditions, fmt.Sprintf("t.company_id = $%d", len(args)+1))
		args = append(args, filter.CompanyID)
	}
	if filter.SiteID != "" {
		conditions = append(conditions, fmt.Sprintf("t.site_id = $%d", len(args)+1))
		args = append(args, filter.SiteID)
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("t.active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(u.full_name) LIKE $%d OR LOWER(t.code) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	base := fmt.Sprintf("FROM teachers t JOIN users u ON u.id = t.user_id WHERE %s", strings.Join(conditions, " AND "))

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) %s", base), args...); err != nil {
		return nil, 0, fmt.Errorf("count teachers: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s, u.full_name AS user_full_name, u.email AS user_email %s ORDER BY t.code`, teacherColumns, base)
	var teachers []models.TeacherDetail
	if err := r.db.SelectContext(ctx, &teachers, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list teachers: %w", err)
	}
	return teachers, total, nil
}

// FindByID fetches a teacher by ID.
func (r *TeacherRepository) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	const query = `SELECT id, user_id, company_id, site_id, code, specialization, experience_years, hourly_rate, max_students_per_day, available_for_trial, active, created_by, created_at, updated_by, updated_at FROM teachers WHERE id = $1`
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, query, id); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// ExistsByCode checks code collision within a company, optionally excluding an ID.
func (r *TeacherRepository) ExistsByCode(ctx context.Context, companyID, code, excludeID string) (bool, error) {
	query := "SELECT 1 FROM teachers WHERE company_id = $1 AND code = $2"
	args := []interface{}{companyID, code}
	if excludeID != "" {
		query += " AND id <> $3"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check teacher code: %w", err)
	}
	return true, nil
}

// UserAssigned reports whether the user already backs an active teacher,
// optionally excluding a teacher ID.
func (r *TeacherRepository) UserAssigned(ctx context.Context, userID, excludeID string) (bool, error) {
	query := "SELECT 1 FROM teachers WHERE user_id = $1 AND active = true"
	args := []interface{}{userID}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check teacher user: %w", err)
	}
	return true, nil
}

// Create inserts a new teacher record.
func (r *TeacherRepository) Create(ctx context.Context, teacher *models.Teacher) error {
	if teacher.ID == "" {
		teacher.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if teacher.CreatedAt.IsZero() {
		teacher.CreatedAt = now
	}
	teacher.UpdatedAt = now
	const query = `INSERT INTO teachers (id, user_id, company_id, site_id, code, specialization, experience_years, hourly_rate, max_students_per_day, available_for_trial, active, created_by, created_at, updated_by, updated_at)
        VALUES (:id, :user_id, :company_id, :site_id, :code, :specialization, :experience_years, :hourly_rate, :max_students_per_day, :available_for_trial, :active, :created_by, :created_at, :updated_by, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, teacher); err != nil {
		return translateError(err, "create teacher")
	}
	return nil
}

// Update modifies an existing teacher.
func (r *TeacherRepository) Update(ctx context.Context, teacher *models.Teacher) error {
	teacher.UpdatedAt = time.Now().UTC()
	const query = `UPDATE teachers SET user_id = :user_id, company_id = :company_id, site_id = :site_id, code = :code, specialization = :specialization, experience_years = :experience_years, hourly_rate = :hourly_rate, max_students_per_day = :max_students_per_day, available_for_trial = :available_for_trial, active = :active, updated_by = :updated_by, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, teacher); err != nil {
		return translateError(err, "update teacher")
	}
	return nil
}

// Deactivate marks a teacher as inactive. Teachers are never hard-deleted.
func (r *TeacherRepository) Deactivate(ctx context.Context, id, updatedBy string, ts time.Time) error {
	const query = `UPDATE teachers SET active = false, updated_by = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, updatedBy, ts); err != nil {
		return fmt.Errorf("deactivate teacher: %w", err)
	}
	return nil
}
