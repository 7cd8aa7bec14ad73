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

type teacherRepository interface {
	List(ctx context.Context, scope tenant.Scope, filter models.TeacherFilter) ([]models.TeacherDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
	ExistsByCode(ctx context.Context, companyID, code, excludeID string) (bool, error)
	UserAssigned(ctx context.Context, userID, excludeID string) (bool, error)
	Create(ctx context.Context, teacher *models.Teacher) error
	Update(ctx context.Context, teacher *models.Teacher) error
	Deactivate(ctx context.Context, id, updatedBy string, ts time.Time) error
}

// CreateTeacherRequest holds payload for creating teachers.
type CreateTeacherRequest struct {
	UserID            string  `json:"user_id" validate:"required"`
	CompanyID         string  `json:"company_id" validate:"required"`
	SiteID            string  `json:"site_id" validate:"required"`
	Code              string  `json:"code" validate:"required,max=20"`
	Specialization    string  `json:"specialization" validate:"required"`
	ExperienceYears   int     `json:"experience_years" validate:"gte=0"`
	HourlyRate        float64 `json:"hourly_rate" validate:"gte=0"`
	MaxStudentsPerDay int     `json:"max_students_per_day" validate:"gte=0"`
	AvailableForTrial bool    `json:"available_for_trial"`
}

// UpdateTeacherRequest holds payload for updating teachers.
type UpdateTeacherRequest struct {
	UserID            string  `json:"user_id" validate:"required"`
	CompanyID         string  `json:"company_id" validate:"required"`
	SiteID            string  `json:"site_id" validate:"required"`
	Code              string  `json:"code" validate:"required,max=20"`
	Specialization    string  `json:"specialization" validate:"required"`
	ExperienceYears   int     `json:"experience_years" validate:"gte=0"`
	HourlyRate        float64 `json:"hourly_rate" validate:"gte=0"`
	MaxStudentsPerDay int     `json:"max_students_per_day" validate:"gte=0"`
	AvailableForTrial bool    `json:"available_for_trial"`
	Active            bool    `json:"active"`
}

// TeacherService handles teacher use-cases. A user may back at most one
// active teacher; teachers are always soft-deleted.
type TeacherService struct {
	repo      teacherRepository
	scopes    scopeResolver
	auditor   auditRecorder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTeacherService constructs the teacher service.
func NewTeacherService(repo teacherRepository, scopes scopeResolver, auditor auditRecorder, validate *validator.Validate, logger *zap.Logger) *TeacherService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherService{repo: repo, scopes: scopes, auditor: auditor, validator: validate, logger: logger}
}

// List returns teachers joined with their backing user within scope.
func (s *TeacherService) List(ctx context.Context, p models.Principal, filter models.TeacherFilter) ([]models.TeacherDetail, *models.Pagination, error) {
	scope, err := s.scopes.Resolve(ctx, p)
	if err != nil {
		return nil, nil, err
	}
	teachers, total, err := s.repo.List(ctx, scope, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teachers")
	}
	return teachers, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Get returns a single teacher within scope.
func (s *TeacherService) Get(ctx context.Context, p models.Principal, id string) (*models.Teacher, error) {
	scope, err := s.scopes.Resolve(ctx, p)
	if err != nil {
		return nil, err
	}
	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	if !scope.Allows(teacher.CompanyID) {
		return nil, appErrors.Clone(appErrors.ErrScopeDenied, "teacher not found")
	}
	return teacher, nil
}

// Create registers a new teacher.
func (s *TeacherService) Create(ctx context.Context, p models.Principal, req CreateTeacherRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError("invalid teacher payload", err)
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
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate teacher code")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrDuplicateCode, "teacher code already in use")
	}

	assigned, err := s.repo.UserAssigned(ctx, req.UserID, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate teacher user")
	}
	if assigned {
		return nil, appErrors.Clone(appErrors.ErrUserAlreadyAssigned, "")
	}

	teacher := &models.Teacher{
		UserID:            req.UserID,
		CompanyID:         req.CompanyID,
		SiteID:            req.SiteID,
		Code:              code,
		Specialization:    req.Specialization,
		ExperienceYears:   req.ExperienceYears,
		HourlyRate:        req.HourlyRate,
		MaxStudentsPerDay: req.MaxStudentsPerDay,
		AvailableForTrial: req.AvailableForTrial,
		Active:            true,
		CreatedBy:         p.UserID,
	}
	if err := s.repo.Create(ctx, teacher); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrDuplicateCode, "teacher code already in use")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create teacher")
	}

	s.auditor.Insert(ctx, p, "teachers", teacher.ID, teacher)
	return teacher, nil
}

// Update modifies an existing teacher preserving its creation stamps.
func (s *TeacherService) Update(ctx context.Context, p models.Principal, id string, req UpdateTeacherRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError("invalid teacher payload", err)
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
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate teacher code")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrDuplicateCode, "teacher code already in use")
	}

	if req.Active {
		assigned, err := s.repo.UserAssigned(ctx, req.UserID, id)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate teacher user")
		}
		if assigned {
			return nil, appErrors.Clone(appErrors.ErrUserAlreadyAssigned, "")
		}
	}

	before := *current
	updated := *current
	updated.UserID = req.UserID
	updated.CompanyID = req.CompanyID
	updated.SiteID = req.SiteID
	updated.Code = code
	updated.Specialization = req.Specialization
	updated.ExperienceYears = req.ExperienceYears
	updated.HourlyRate = req.HourlyRate
	updated.MaxStudentsPerDay = req.MaxStudentsPerDay
	updated.AvailableForTrial = req.AvailableForTrial
	updated.Active = req.Active
	updatedBy := p.UserID
	updated.UpdatedBy = &updatedBy

	if err := s.repo.Update(ctx, &updated); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrDuplicateCode, "teacher code already in use")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update teacher")
	}

	s.auditor.Update(ctx, p, "teachers", updated.ID, before, updated)
	return &updated, nil
}

// Delete deactivates a teacher. Teachers are always soft-deleted regardless
// of references, freeing the backing user for reassignment.
func (s *TeacherService) Delete(ctx context.Context, p models.Principal, id string) (*models.DeleteResult, error) {
	teacher, err := s.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Deactivate(ctx, id, p.UserID, time.Now().UTC()); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate teacher")
	}

	s.auditor.Delete(ctx, p, "teachers", teacher.ID, teacher)
	return &models.DeleteResult{ID: teacher.ID, Mode: models.DeleteModeSoft}, nil
}
