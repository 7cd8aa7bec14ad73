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
	"github.com/campuskit/academy-api/pkg/database"
)

// GradeRepository manages persistence for grade records.
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository constructs a GradeRepository.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

const gradeColumns = "id, company_id, code, name, duration_months, sort_order, active, created_by, created_at, updated_by, updated_at"

// List returns grades within scope ordered by sort order then name.
func (r *GradeRepository) List(ctx context.Context, scope tenant.Scope, filter models.GradeFilter) ([]models.Grade, int, error) {
	args := []interface{}{}
	conditions := []string{"1=1"}

	if clause := scopeClause(scope, "company_id", &args); clause != "" {
		conditions = append(conditions, clause)
	}
	if filter.CompanyID != "" {
		conditions = append(conditions, fmt.Sprintf("company_id = $%d", len(args)+1))
		args = append(args, filter.CompanyID)
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(name) LIKE $%d OR LOWER(code) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	where := strings.Join(conditions, " AND ")

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) FROM grades WHERE %s", where), args...); err != nil {
		return nil, 0, fmt.Errorf("count grades: %w", err)
	}

	query := fmt.Sprintf("SELECT %s FROM grades WHERE %s ORDER BY sort_order, name", gradeColumns, where)
	var grades []models.Grade
	if err := r.db.SelectContext(ctx, &grades, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list grades: %w", err)
	}
	return grades, total, nil
}

// FindByID fetches a grade by ID.
func (r *GradeRepository) FindByID(ctx context.Context, id string) (*models.Grade, error) {
	query := fmt.Sprintf("SELECT %s FROM grades WHERE id = $1", gradeColumns)
	var grade models.Grade
	if err := r.db.GetContext(ctx, &grade, query, id); err != nil {
		return nil, err
	}
	return &grade, nil
}

// ExistsByCode checks code collision within a company, optionally excluding an ID.
func (r *GradeRepository) ExistsByCode(ctx context.Context, companyID, code, excludeID string) (bool, error) {
	query := "SELECT 1 FROM grades WHERE company_id = $1 AND code = $2"
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
		return false, fmt.Errorf("check grade code: %w", err)
	}
	return true, nil
}

// Create inserts a new grade record.
func (r *GradeRepository) Create(ctx context.Context, grade *models.Grade) error {
	if grade.ID == "" {
		grade.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if grade.CreatedAt.IsZero() {
		grade.CreatedAt = now
	}
	grade.UpdatedAt = now
	const query = `INSERT INTO grades (id, company_id, code, name, duration_months, sort_order, active, created_by, created_at, updated_by, updated_at)
        VALUES (:id, :company_id, :code, :name, :duration_months, :sort_order, :active, :created_by, :created_at, :updated_by, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, grade); err != nil {
		return translateError(err, "create grade")
	}
	return nil
}

// Update modifies an existing grade.
func (r *GradeRepository) Update(ctx context.Context, grade *models.Grade) error {
	grade.UpdatedAt = time.Now().UTC()
	const query = `UPDATE grades SET company_id = :company_id, code = :code, name = :name, duration_months = :duration_months, sort_order = :sort_order, active = :active, updated_by = :updated_by, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, grade); err != nil {
		return translateError(err, "update grade")
	}
	return nil
}

const gradeDependentsQuery = `SELECT
        (SELECT COUNT(*) FROM students WHERE current_grade_id = $1) AS students,
        (SELECT COUNT(*) FROM grade_books WHERE grade_id = $1) AS grade_books`

// DeleteIfUnreferenced scans for dependents and hard-deletes the grade when
// none exist. Scan and delete share one transaction.
func (r *GradeRepository) DeleteIfUnreferenced(ctx context.Context, id string) (bool, models.GradeDependents, error) {
	var deps models.GradeDependents
	deleted := false
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := tx.GetContext(ctx, &deps, gradeDependentsQuery, id); err != nil {
			return fmt.Errorf("scan grade dependents: %w", err)
		}
		if deps.Total() > 0 {
			return nil
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM grades WHERE id = $1", id); err != nil {
			return fmt.Errorf("delete grade: %w", err)
		}
		deleted = true
		return nil
	})
	return deleted, deps, err
}
