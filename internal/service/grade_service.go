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

type gradeRepository interface {
	List(ctx context.Context, scope tenant.Scope, filter models.GradeFilter) ([]models.Grade, int, error)
	FindByID(ctx context.Context, id string) (*models.Grade, error)
	ExistsByCode(ctx context.Context, companyID, code, excludeID string) (bool, error)
	Create(ctx context.Context, grade *models.Grade) error
	Update(ctx context.Context, grade *models.Grade) error
	DeleteIfUnreferenced(ctx context.Context, id string) (bool, models.GradeDependents, error)
}

// CreateGradeRequest holds payload for creating grades.
type CreateGradeRequest struct {
	CompanyID      string `json:"company_id" validate:"required"`
	Code           string `json:"code" validate:"required,max=20"`
	Name           string `json:"name" validate:"required"`
	DurationMonths int    `json:"duration_months" validate:"gte=0"`
	SortOrder      int    `json:"sort_order" validate:"gte=0"`
}

// UpdateGradeRequest holds payload for updating grades.
type UpdateGradeRequest struct {
	CompanyID      string `json:"company_id" validate:"required"`
	Code           string `json:"code" validate:"required,max=20"`
	Name           string `json:"name" validate:"required"`
	DurationMonths int    `json:"duration_months" validate:"gte=0"`
	SortOrder      int    `json:"sort_order" validate:"gte=0"`
	Active         bool   `json:"active"`
}

// GradeService handles grade use-cases. Grades use the block-when-referenced
// delete policy: dependents prevent deletion, otherwise the row is removed.
type GradeService struct {
	repo      gradeRepository
	scopes    scopeResolver
	auditor   auditRecorder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGradeService constructs the grade service.
func NewGradeService(repo gradeRepository, scopes scopeResolver, auditor auditRecorder, validate *validator.Validate, logger *zap.Logger) *GradeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeService{repo: repo, scopes: scopes, auditor: auditor, validator: validate, logger: logger}
}

// List returns grades within the principal's tenant scope.
func (s *GradeService) List(ctx context.Context, p models.Principal, filter models.GradeFilter) ([]models.Grade, *models.Pagination, error) {
	scope, err := s.scopes.Resolve(ctx, p)
	if err != nil {
		return nil, nil, err
	}
	grades, total, err := s.repo.List(ctx, scope, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grades")
	}
	return grades, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Get returns a single grade within scope.
func (s *GradeService) Get(ctx context.Context, p models.Principal, id string) (*models.Grade, error) {
	scope, err := s.scopes.Resolve(ctx, p)
	if err != nil {
		return nil, err
	}
	grade, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "grade not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade")
	}
	if !scope.Allows(grade.CompanyID) {
		return nil, appErrors.Clone(appErrors.ErrScopeDenied, "grade not found")
	}
	return grade, nil
}

// Create registers a new grade.
func (s *GradeService) Create(ctx context.Context, p models.Principal, req CreateGradeRequest) (*models.Grade, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError("invalid grade payload", err)
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
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate grade code")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrDuplicateCode, "grade code already in use")
	}

	grade := &models.Grade{
		CompanyID:      req.CompanyID,
		Code:           code,
		Name:           req.Name,
		DurationMonths: req.DurationMonths,
		SortOrder:      req.SortOrder,
		Active:         true,
		CreatedBy:      p.UserID,
	}
	if err := s.repo.Create(ctx, grade); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrDuplicateCode, "grade code already in use")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create grade")
	}

	s.auditor.Insert(ctx, p, "grades", grade.ID, grade)
	return grade, nil
}

// Update modifies an existing grade preserving its creation stamps.
func (s *GradeService) Update(ctx context.Context, p models.Principal, id string, req UpdateGradeRequest) (*models.Grade, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError("invalid grade payload", err)
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
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate grade code")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrDuplicateCode, "grade code already in use")
	}

	before := *current
	updated := *current
	updated.CompanyID = req.CompanyID
	updated.Code = code
	updated.Name = req.Name
	updated.DurationMonths = req.DurationMonths
	updated.SortOrder = req.SortOrder
	updated.Active = req.Active
	updatedBy := p.UserID
	updated.UpdatedBy = &updatedBy

	if err := s.repo.Update(ctx, &updated); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrDuplicateCode, "grade code already in use")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update grade")
	}

	s.auditor.Update(ctx, p, "grades", updated.ID, before, updated)
	return &updated, nil
}

// Delete removes a grade when nothing references it; referencing students or
// grade book links block the operation.
func (s *GradeService) Delete(ctx context.Context, p models.Principal, id string) (*models.DeleteResult, error) {
	grade, err := s.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}

	deleted, deps, err := s.repo.DeleteIfUnreferenced(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete grade")
	}
	if !deleted {
		return nil, appErrors.Blocked("grade has existing references", deps.Reasons())
	}

	s.auditor.Delete(ctx, p, "grades", grade.ID, grade)
	return &models.DeleteResult{ID: grade.ID, Mode: models.DeleteModeHard}, nil
}
