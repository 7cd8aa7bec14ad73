package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campuskit/academy-api/internal/models"
	"github.com/campuskit/academy-api/internal/repository"
	"github.com/campuskit/academy-api/internal/tenant"
	appErrors "github.com/campuskit/academy-api/pkg/errors"
)

type siteRepository interface {
	List(ctx context.Context, scope tenant.Scope, filter models.SiteFilter) ([]models.Site, int, error)
	FindByID(ctx context.Context, id string) (*models.Site, error)
	ExistsByCode(ctx context.Context, companyID, code, excludeID string) (bool, error)
	Create(ctx context.Context, site *models.Site) error
	Update(ctx context.Context, site *models.Site) error
	DeleteIfUnreferenced(ctx context.Context, id string) (bool, models.SiteDependents, error)
}

// CreateSiteRequest holds payload for creating sites.
type CreateSiteRequest struct {
	CompanyID   string `json:"company_id" validate:"required"`
	Code        string `json:"code" validate:"required,max=20"`
	Name        string `json:"name" validate:"required"`
	Address     string `json:"address"`
	City        string `json:"city"`
	Phone       string `json:"phone"`
	ManagerName string `json:"manager_name"`
}

// UpdateSiteRequest holds payload for updating sites.
type UpdateSiteRequest struct {
	CompanyID   string `json:"company_id" validate:"required"`
	Code        string `json:"code" validate:"required,max=20"`
	Name        string `json:"name" validate:"required"`
	Address     string `json:"address"`
	City        string `json:"city"`
	Phone       string `json:"phone"`
	ManagerName string `json:"manager_name"`
	Active      bool   `json:"active"`
}

// SiteService handles site use-cases. Sites use the block-when-referenced
// delete policy.
type SiteService struct {
	repo      siteRepository
	scopes    scopeResolver
	auditor   auditRecorder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSiteService constructs the site service.
func NewSiteService(repo siteRepository, scopes scopeResolver, auditor auditRecorder, validate *validator.Validate, logger *zap.Logger) *SiteService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SiteService{repo: repo, scopes: scopes, auditor: auditor, validator: validate, logger: logger}
}

// List returns sites within the principal's tenant scope.
func (s *SiteService) List(ctx context.Context, p models.Principal, filter models.SiteFilter) ([]models.Site, *models.Pagination, error) {
	scope, err := s.scopes.Resolve(ctx, p)
	if err != nil {
		return nil, nil, err
	}
	sites, total, err := s.repo.List(ctx, scope, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sites")
	}
	return sites, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Get returns a single site within scope.
func (s *SiteService) Get(ctx context.Context, p models.Principal, id string) (*models.Site, error) {
	scope, err := s.scopes.Resolve(ctx, p)
	if err != nil {
		return nil, err
	}
	site, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "site not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load site")
	}
	if !scope.Allows(site.CompanyID) {
		return nil, appErrors.Clone(appErrors.ErrScopeDenied, "site not found")
	}
	return site, nil
}

// Create registers a new site.
func (s *SiteService) Create(ctx context.Context, p models.Principal, req CreateSiteRequest) (*models.Site, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError("invalid site payload", err)
	}
	scope, err := s.scopes.Resolve(ctx, p)
	if err != nil {
		return nil, err
	}
	if !scope.Allows(req.CompanyID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "company outside tenant scope")
	}

	code := normalizeCode(req.Code)
	exists, err := s.repo.ExistsByCode(ctx, req.CompanyID, code, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate site code")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrDuplicateCode, "site code already in use")
	}

	site := &models.Site{
		CompanyID:   req.CompanyID,
		Code:        code,
		Name:        req.Name,
		Address:     req.Address,
		City:        req.City,
		Phone:       req.Phone,
		ManagerName: req.ManagerName,
		Active:      true,
		CreatedBy:   p.UserID,
	}
	if err := s.repo.Create(ctx, site); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrDuplicateCode, "site code already in use")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create site")
	}

	s.auditor.Insert(ctx, p, "sites", site.ID, site)
	return site, nil
}

// Update modifies an existing site preserving its creation stamps.
func (s *SiteService) Update(ctx context.Context, p models.Principal, id string, req UpdateSiteRequest) (*models.Site, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError("invalid site payload", err)
	}
	current, err := s.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}
	scope, err := s.scopes.Resolve(ctx, p)
	if err != nil {
		return nil, err
	}
	if !scope.Allows(req.CompanyID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "company outside tenant scope")
	}

	code := normalizeCode(req.Code)
	exists, err := s.repo.ExistsByCode(ctx, req.CompanyID, code, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate site code")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrDuplicateCode, "site code already in use")
	}

	before := *current
	updated := *current
	updated.CompanyID = req.CompanyID
	updated.Code = code
	updated.Name = req.Name
	updated.Address = req.Address
	updated.City = req.City
	updated.Phone = req.Phone
	updated.ManagerName = req.ManagerName
	updated.Active = req.Active
	updatedBy := p.UserID
	updated.UpdatedBy = &updatedBy

	if err := s.repo.Update(ctx, &updated); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrDuplicateCode, "site code already in use")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update site")
	}

	s.auditor.Update(ctx, p, "sites", updated.ID, before, updated)
	return &updated, nil
}

// Delete removes a site when no users, students or teachers reference it.
func (s *SiteService) Delete(ctx context.Context, p models.Principal, id string) (*models.DeleteResult, error) {
	site, err := s.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}

	deleted, deps, err := s.repo.DeleteIfUnreferenced(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete site")
	}
	if !deleted {
		return nil, appErrors.Blocked("site has existing references", deps.Reasons())
	}

	s.auditor.Delete(ctx, p, "sites", site.ID, site)
	return &models.DeleteResult{ID: site.ID, Mode: models.DeleteModeHard}, nil
}
