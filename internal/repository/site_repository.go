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

// SiteRepository manages persistence for site records.
type SiteRepository struct {
	db *sqlx.DB
}

// NewSiteRepository constructs a SiteRepository.
func NewSiteRepository(db *sqlx.DB) *SiteRepository {
	return &SiteRepository{db: db}
}

const siteColumns = "id, company_id, code, name, address, city, phone, manager_name, active, created_by, created_at, updated_by, updated_at"

// List returns sites within scope matching the provided filters.
func (r *SiteRepository) List(ctx context.Context, scope tenant.Scope, filter models.SiteFilter) ([]models.Site, int, error) {
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
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) FROM sites WHERE %s", where), args...); err != nil {
		return nil, 0, fmt.Errorf("count sites: %w", err)
	}

	query := fmt.Sprintf("SELECT %s FROM sites WHERE %s ORDER BY code, name", siteColumns, where)
	var sites []models.Site
	if err := r.db.SelectContext(ctx, &sites, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list sites: %w", err)
	}
	return sites, total, nil
}

// FindByID fetches a site by ID.
func (r *SiteRepository) FindByID(ctx context.Context, id string) (*models.Site, error) {
	query := fmt.Sprintf("SELECT %s FROM sites WHERE id = $1", siteColumns)
	var site models.Site
	if err := r.db.GetContext(ctx, &site, query, id); err != nil {
		return nil, err
	}
	return &site, nil
}

// ExistsByCode checks code collision within a company, optionally excluding an ID.
func (r *SiteRepository) ExistsByCode(ctx context.Context, companyID, code, excludeID string) (bool, error) {
	query := "SELECT 1 FROM sites WHERE company_id = $1 AND code = $2"
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
		return false, fmt.Errorf("check site code: %w", err)
	}
	return true, nil
}

// Create inserts a new site record.
func (r *SiteRepository) Create(ctx context.Context, site *models.Site) error {
	if site.ID == "" {
		site.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if site.CreatedAt.IsZero() {
		site.CreatedAt = now
	}
	site.UpdatedAt = now
	const query = `INSERT INTO sites (id, company_id, code, name, address, city, phone, manager_name, active, created_by, created_at, updated_by, updated_at)
        VALUES (:id, :company_id, :code, :name, :address, :city, :phone, :manager_name, :active, :created_by, :created_at, :updated_by, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, site); err != nil {
		return translateError(err, "create site")
	}
	return nil
}

// Update modifies an existing site.
func (r *SiteRepository) Update(ctx context.Context, site *models.Site) error {
	site.UpdatedAt = time.Now().UTC()
	const query = `UPDATE sites SET company_id = :company_id, code = :code, name = :name, address = :address, city = :city, phone = :phone, manager_name = :manager_name, active = :active, updated_by = :updated_by, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, site); err != nil {
		return translateError(err, "update site")
	}
	return nil
}

const siteDependentsQuery = `SELECT
        (SELECT COUNT(*) FROM users WHERE site_id = $1) AS users,
        (SELECT COUNT(*) FROM students WHERE site_id = $1) AS students,
        (SELECT COUNT(*) FROM teachers WHERE site_id = $1) AS teachers`

// DeleteIfUnreferenced scans for dependents and hard-deletes the site when
// none exist. Scan and delete share one transaction.
func (r *SiteRepository) DeleteIfUnreferenced(ctx context.Context, id string) (bool, models.SiteDependents, error) {
	var deps models.SiteDependents
	deleted := false
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := tx.GetContext(ctx, &deps, siteDependentsQuery, id); err != nil {
			return fmt.Errorf("scan site dependents: %w", err)
		}
		if deps.Total() > 0 {
			return nil
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM sites WHERE id = $1", id); err != nil {
			return fmt.Errorf("delete site: %w", err)
		}
		deleted = true
		return nil
	})
	return deleted, deps, err
}
