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

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

const studentColumns = "id, company_id, site_id, code, first_name, last_name, birth_date, gender, phone, email, address, current_grade_id, assigned_teacher_id, status, registration_date, active, created_by, created_at, updated_by, updated_at"

// List returns students within scope matching the provided filters.
func (r *StudentRepository) List(ctx context.Context, scope tenant.Scope, filter models.StudentFilter) ([]models.Student, int, error) {
	args := []interface{}{}
	conditions := []string{"1=1"}

	if clause := scopeClause(scope, "company_id", &args); clause != "" {
		conditions = append(conditions, clause)
	}
	if filter.CompanyID != "" {
		conditions = append(conditions, fmt.Sprintf("company_id = $%d", len(args)+1))
		args = append(args, filter.CompanyID)
	}
	if filter.SiteID != "" {
		conditions = append(conditions, fmt.Sprintf("site_id = $%d", len(args)+1))
		args = append(args, filter.SiteID)
	}
	if filter.GradeID != "" {
		conditions = append(conditions, fmt.Sprintf("current_grade_id = $%d", len(args)+1))
		args = append(args, filter.GradeID)
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(first_name) LIKE $%d OR LOWER(last_name) LIKE $%d OR LOWER(code) LIKE $%d)", len(args)+1, len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	where := strings.Join(conditions, " AND ")

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"code":       "code",
		"last_name":  "last_name",
		"created_at": "created_at",
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "code"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) FROM students WHERE %s", where), args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}

	query := fmt.Sprintf("SELECT %s FROM students WHERE %s ORDER BY %s %s", studentColumns, where, column, order)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}
	return students, total, nil
}

// FindByID fetches a student by ID.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE id = $1", studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// ExistsByCode checks code collision within a company, optionally excluding
// an ID. Student codes are scoped per company.
func (r *StudentRepository) ExistsByCode(ctx context.Context, companyID, code, excludeID string) (bool, error) {
	query := "SELECT 1 FROM students WHERE company_id = $1 AND code = $2"
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
		return false, fmt.Errorf("check student code: %w", err)
	}
	return true, nil
}

// Create inserts a new student record.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now
	const query = `INSERT INTO students (id, company_id, site_id, code, first_name, last_name, birth_date, gender, phone, email, address, current_grade_id, assigned_teacher_id, status, registration_date, active, created_by, created_at, updated_by, updated_at)
        VALUES (:id, :company_id, :site_id, :code, :first_name, :last_name, :birth_date, :gender, :phone, :email, :address, :current_grade_id, :assigned_teacher_id, :status, :registration_date, :active, :created_by, :created_at, :updated_by, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return translateError(err, "create student")
	}
	return nil
}

// Update modifies an existing student.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET company_id = :company_id, site_id = :site_id, code = :code, first_name = :first_name, last_name = :last_name, birth_date = :birth_date, gender = :gender, phone = :phone, email = :email, address = :address, current_grade_id = :current_grade_id, assigned_teacher_id = :assigned_teacher_id, status = :status, registration_date = :registration_date, active = :active, updated_by = :updated_by, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return translateError(err, "update student")
	}
	return nil
}

// Deactivate marks a student as inactive. Students are never hard-deleted.
func (r *StudentRepository) Deactivate(ctx context.Context, id, updatedBy string, ts time.Time) error {
	const query = `UPDATE students SET active = false, updated_by = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, updatedBy, ts); err != nil {
		return fmt.Errorf("deactivate student: %w", err)
	}
	return nil
}
