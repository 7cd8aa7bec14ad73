package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campuskit/academy-api/internal/models"
	"github.com/campuskit/academy-api/internal/repository"
	"github.com/campuskit/academy-api/internal/tenant"
	appErrors "github.com/campuskit/academy-api/pkg/errors"
)

type companyRepository interface {
	List(ctx context.Context, scope tenant.Scope, filter models.CompanyFilter) ([]models.Company, int, error)
	FindByID(ctx context.Context, id string) (*models.Company, error)
	ExistsByCode(ctx context.Context, code, excludeID string) (bool, error)
	Create(ctx context.Context, company *models.Company) error
	Update(ctx context.Context, company *models.Company) error
	Dependents(ctx context.Context, id string) (models.CompanyDependents, error)
	Deactivate(ctx context.Context, id, updatedBy string, ts time.Time) error
}

// companyScopeResolver adds cache invalidation on top of scope resolution;
// company mutations are the only ones that change the hierarchy.
type companyScopeResolver interface {
	scopeResolver
	Invalidate(ctx context.Context, companyID string)
}

// CreateCompanyRequest holds payload for creating companies.
type CreateCompanyRequest struct {
	ParentCompanyID *string `json:"parent_company_id,omitempty"`
	Code            string  `json:"code" validate:"required,max=10"`
	Name            string  `json:"name" validate:"required"`
	Address         string  `json:"address"`
	City            string  `json:"city"`
	Phone           string  `json:"phone"`
	Email           string  `json:"email" validate:"omitempty,email"`
	IsHeadOffice    bool    `json:"is_head_office"`
}

// UpdateCompanyRequest holds payload for updating companies.
type UpdateCompanyRequest struct {
	ParentCompanyID *string `json:"parent_company_id,omitempty"`
	Code            string  `json:"code" validate:"required,max=10"`
	Name            string  `json:"name" validate:"required"`
	Address         string  `json:"address"`
	City            string  `json:"city"`
	Phone           string  `json:"phone"`
	Email           string  `json:"email" validate:"omitempty,email"`
	IsHeadOffice    bool    `json:"is_head_office"`
	Active          bool    `json:"active"`
}

// CompanyService handles company use-cases. Company codes are globally
// unique; deletion is always a dependency-blocked deactivation, never a
// physical removal.
type CompanyService struct {
	repo      companyRepository
	scopes    companyScopeResolver
	auditor   auditRecorder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCompanyService constructs the company service.
func NewCompanyService(repo companyRepository, scopes companyScopeResolver, auditor auditRecorder, validate *validator.Validate, logger *zap.Logger) *CompanyService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CompanyService{repo: repo, scopes: scopes, auditor: auditor, validator: validate, logger: logger}
}

// List returns companies within the principal's tenant scope.
func (s *CompanyService) List(ctx context.Context, p models.Principal, filter models.CompanyFilter) ([]models.Company, *models.Pagination, error) {
	scope, err := s.scopes.Resolve(ctx, p)
	if err != nil {
		return nil, nil, err
	}
	companies, total, err := s.repo.List(ctx, scope, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list companies")
	}
	return companies, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Get returns a single company within scope.
func (s *CompanyService) Get(ctx context.Context, p models.Principal, id string) (*models.Company, error) {
	scope, err := s.scopes.Resolve(ctx, p)
	if err != nil {
		return nil, err
	}
	company, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "company not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load company")
	}
	if !scope.Allows(company.ID) {
		return nil, appErrors.Clone(appErrors.ErrScopeDenied, "company not found")
	}
	return company, nil
}

// Create registers a new company. Non-super-admins may only create children
// of companies within their own scope.
func (s *CompanyService) Create(ctx context.Context, p models.Principal, req CreateCompanyRequest) (*models.Company, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError("invalid company payload", err)
	}
	scope, err := s.scopes.Resolve(ctx, p)
	if err != nil {
		return nil, err
	}
	if !scope.All() {
		if req.ParentCompanyID == nil || !scope.Allows(*req.ParentCompanyID) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "parent company outside tenant scope")
		}
	}

	code := normalizeCode(req.Code)
	exists, err := s.repo.ExistsByCode(ctx, code, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate company code")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrDuplicateCode, "company code already in use")
	}

	company := &models.Company{
		ParentCompanyID: req.ParentCompanyID,
		Code:            code,
		Name:            req.Name,
		Address:         req.Address,
		City:            req.City,
		Phone:           req.Phone,
		Email:           req.Email,
		IsHeadOffice:    req.IsHeadOffice,
		Active:          true,
		CreatedBy:       p.UserID,
	}
	if err := s.repo.Create(ctx, company); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrDuplicateCode, "company code already in use")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create company")
	}

	if company.ParentCompanyID != nil {
		s.scopes.Invalidate(ctx, *company.ParentCompanyID)
	}
	s.auditor.Insert(ctx, p, "companies", company.ID, company)
	return company, nil
}

// Update modifies an existing company preserving its creation stamps.
func (s *CompanyService) Update(ctx context.Context, p models.Principal, id string, req UpdateCompanyRequest) (*models.Company, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError("invalid company payload", err)
	}
	current, err := s.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}

	code := normalizeCode(req.Code)
	exists, err := s.repo.ExistsByCode(ctx, code, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate company code")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrDuplicateCode, "company code already in use")
	}

	before := *current
	updated := *current
	updated.ParentCompanyID = req.ParentCompanyID
	updated.Code = code
	updated.Name = req.Name
	updated.Address = req.Address
	updated.City = req.City
	updated.Phone = req.Phone
	updated.Email = req.Email
	updated.IsHeadOffice = req.IsHeadOffice
	updated.Active = req.Active
	updatedBy := p.UserID
	updated.UpdatedBy = &updatedBy

	if err := s.repo.Update(ctx, &updated); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrDuplicateCode, "company code already in use")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update company")
	}

	if before.ParentCompanyID != nil {
		s.scopes.Invalidate(ctx, *before.ParentCompanyID)
	}
	if updated.ParentCompanyID != nil {
		s.scopes.Invalidate(ctx, *updated.ParentCompanyID)
	}

	s.auditor.Update(ctx, p, "companies", updated.ID, before, updated)
	return &updated, nil
}

// Delete deactivates a company when no child companies, sites or users
// reference it. Company rows are never physically removed.
func (s *CompanyService) Delete(ctx context.Context, p models.Principal, id string) (*models.DeleteResult, error) {
	company, err := s.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}

	deps, err := s.repo.Dependents(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to scan company dependents")
	}
	if deps.Total() > 0 {
		return nil, appErrors.Blocked("company has existing references", deps.Reasons())
	}

	if err := s.repo.Deactivate(ctx, id, p.UserID, time.Now().UTC()); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate company")
	}

	if company.ParentCompanyID != nil {
		s.scopes.Invalidate(ctx, *company.ParentCompanyID)
	}
	s.scopes.Invalidate(ctx, company.ID)

	s.auditor.Delete(ctx, p, "companies", company.ID, company)
	return &models.DeleteResult{ID: company.ID, Mode: models.DeleteModeSoft}, nil
}
