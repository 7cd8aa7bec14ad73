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

// CompanyRepository manages persistence for company records.
type CompanyRepository struct {
	db *sqlx.DB
}

// NewCompanyRepository constructs a CompanyRepository.
func NewCompanyRepository(db *sqlx.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

const companyColumns = "id, parent_company_id, code, name, address, city, phone, email, is_head_office, active, created_by, created_at, updated_by, updated_at"

// List returns companies within scope matching the provided filters. The
// tenant filter applies to the company's own id.
func (r *CompanyRepository) List(ctx context.Context, scope tenant.Scope, filter models.CompanyFilter) ([]models.Company, int, error) {
	args := []interface{}{}
	conditions := []string{"1=1"}

	if clause := scopeClause(scope, "id", &args); clause != "" {
		conditions = append(conditions, clause)
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
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) FROM companies WHERE %s", where), args...); err != nil {
		return nil, 0, fmt.Errorf("count companies: %w", err)
	}

	query := fmt.Sprintf("SELECT %s FROM companies WHERE %s ORDER BY code, name", companyColumns, where)
	var companies []models.Company
	if err := r.db.SelectContext(ctx, &companies, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list companies: %w", err)
	}
	return companies, total, nil
}

// FindByID fetches a company by ID.
func (r *CompanyRepository) FindByID(ctx context.Context, id string) (*models.Company, error) {
	query := fmt.Sprintf("SELECT %s FROM companies WHERE id = $1", companyColumns)
	var company models.Company
	if err := r.db.GetContext(ctx, &company, query, id); err != nil {
		return nil, err
	}
	return &company, nil
}

// ListChildIDs returns ids of companies whose parent is the given company.
func (r *CompanyRepository) ListChildIDs(ctx context.Context, companyID string) ([]string, error) {
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, "SELECT id FROM companies WHERE parent_company_id = $1", companyID); err != nil {
		return nil, fmt.Errorf("list child companies: %w", err)
	}
	return ids, nil
}

// ExistsByCode checks code collision across all companies, optionally
// excluding an ID. Company codes are globally unique.
func (r *CompanyRepository) ExistsByCode(ctx context.Context, code string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM companies WHERE code = $1"
	args := []interface{}{code}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check company code: %w", err)
	}
	return true, nil
}

// Create inserts a new company record.
func (r *CompanyRepository) Create(ctx context.Context, company *models.Company) error {
	if company.ID == "" {
		company.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if company.CreatedAt.IsZero() {
		company.CreatedAt = now
	}
	company.UpdatedAt = now
	const query = `INSERT INTO companies (id, parent_company_id, code, name, address, city, phone, email, is_head_office, active, created_by, created_at, updated_by, updated_at)
        VALUES (:id, :parent_company_id, :code, :name, :address, :city, :phone, :email, :is_head_office, :active, :created_by, :created_at, :updated_by, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, company); err != nil {
		return translateError(err, "create company")
	}
	return nil
}

// Update modifies an existing company. CreatedBy/CreatedAt are not touched.
func (r *CompanyRepository) Update(ctx context.Context, company *models.Company) error {
	company.UpdatedAt = time.Now().UTC()
	const query = `UPDATE companies SET parent_company_id = :parent_company_id, code = :code, name = :name, address = :address, city = :city, phone = :phone, email = :email, is_head_office = :is_head_office, active = :active, updated_by = :updated_by, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, company); err != nil {
		return translateError(err, "update company")
	}
	return nil
}

// Dependents counts rows referencing the company.
func (r *CompanyRepository) Dependents(ctx context.Context, id string) (models.CompanyDependents, error) {
	const query = `SELECT
        (SELECT COUNT(*) FROM companies WHERE parent_company_id = $1) AS child_companies,
        (SELECT COUNT(*) FROM sites WHERE company_id = $1) AS sites,
        (SELECT COUNT(*) FROM users WHERE company_id = $1) AS users`
	var deps models.CompanyDependents
	if err := r.db.GetContext(ctx, &deps, query, id); err != nil {
		return deps, fmt.Errorf("scan company dependents: %w", err)
	}
	return deps, nil
}

// Deactivate marks a company as inactive. Companies are never hard-deleted.
func (r *CompanyRepository) Deactivate(ctx context.Context, id, updatedBy string, ts time.Time) error {
	const query = `UPDATE companies SET active = false, updated_by = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, updatedBy, ts); err != nil {
		return fmt.Errorf("deactivate company: %w", err)
	}
	return nil
}
