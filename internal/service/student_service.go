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

type studentRepository interface {
	List(ctx context.Context, scope tenant.Scope, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	ExistsByCode(ctx context.Context, companyID, code, excludeID string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Deactivate(ctx context.Context, id, updatedBy string, ts time.Time) error
}

// CreateStudentRequest holds payload for enrolling students.
type CreateStudentRequest struct {
	CompanyID         string    `json:"company_id" validate:"required"`
	SiteID            string    `json:"site_id" validate:"required"`
	Code              string    `json:"code" validate:"required,max=20"`
	FirstName         string    `json:"first_name" validate:"required"`
	LastName          string    `json:"last_name" validate:"required"`
	BirthDate         time.Time `json:"birth_date" validate:"required"`
	Gender            string    `json:"gender" validate:"omitempty,oneof=MALE FEMALE"`
	Phone             string    `json:"phone"`
	Email             string    `json:"email" validate:"omitempty,email"`
	Address           string    `json:"address"`
	CurrentGradeID    *string   `json:"current_grade_id"`
	AssignedTeacherID *string   `json:"assigned_teacher_id"`
	RegistrationDate  time.Time `json:"registration_date"`
}

// UpdateStudentRequest holds payload for updating students.
type UpdateStudentRequest struct {
	CompanyID         string               `json:"company_id" validate:"required"`
	SiteID            string               `json:"site_id" validate:"required"`
	Code              string               `json:"code" validate:"required,max=20"`
	FirstName         string               `json:"first_name" validate:"required"`
	LastName          string               `json:"last_name" validate:"required"`
	BirthDate         time.Time            `json:"birth_date" validate:"required"`
	Gender            string               `json:"gender" validate:"omitempty,oneof=MALE FEMALE"`
	Phone             string               `json:"phone"`
	Email             string               `json:"email" validate:"omitempty,email"`
	Address           string               `json:"address"`
	CurrentGradeID    *string              `json:"current_grade_id"`
	AssignedTeacherID *string              `json:"assigned_teacher_id"`
	Status            models.StudentStatus `json:"status" validate:"required,oneof=ACTIVE ON_HOLD GRADUATED WITHDRAWN"`
	Active            bool                 `json:"active"`
}

// StudentService handles student enrollment use-cases. Students carry
// history and are always soft-deleted.
type StudentService struct {
	repo      studentRepository
	scopes    scopeResolver
	auditor   auditRecorder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, scopes scopeResolver, auditor auditRecorder, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, scopes: scopes, auditor: auditor, validator: validate, logger: logger}
}

// List returns students within scope matching the filter.
func (s *StudentService) List(ctx context.Context, p models.Principal, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	scope, err := s.scopes.Resolve(ctx, p)
	if err != nil {
		return nil, nil, err
	}
	students, total, err := s.repo.List(ctx, scope, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	return students, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Get returns a single student within scope.
func (s *StudentService) Get(ctx context.Context, p models.Principal, id string) (*models.Student, error) {
	scope, err := s.scopes.Resolve(ctx, p)
	if err != nil {
		return nil, err
	}
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if !scope.Allows(student.CompanyID) {
		return nil, appErrors.Clone(appErrors.ErrScopeDenied, "student not found")
	}
	return student, nil
}

// Create enrolls a new student.
func (s *StudentService) Create(ctx context.Context, p models.Principal, req CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError("invalid student payload", err)
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
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate student code")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrDuplicateCode, "student code already in use")
	}

	registered := req.RegistrationDate
	if registered.IsZero() {
		registered = time.Now().UTC()
	}
	student := &models.Student{
		CompanyID:         req.CompanyID,
		SiteID:            req.SiteID,
		Code:              code,
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		BirthDate:         req.BirthDate,
		Gender:            req.Gender,
		Phone:             req.Phone,
		Email:             req.Email,
		Address:           req.Address,
		CurrentGradeID:    req.CurrentGradeID,
		AssignedTeacherID: req.AssignedTeacherID,
		Status:            models.StudentStatusActive,
		RegistrationDate:  registered,
		Active:            true,
		CreatedBy:         p.UserID,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrDuplicateCode, "student code already in use")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}

	s.auditor.Insert(ctx, p, "students", student.ID, student)
	return student, nil
}

// Update modifies an existing student preserving its creation stamps.
func (s *StudentService) Update(ctx context.Context, p models.Principal, id string, req UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError("invalid student payload", err)
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
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate student code")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrDuplicateCode, "student code already in use")
	}

	before := *current
	updated := *current
	updated.CompanyID = req.CompanyID
	updated.SiteID = req.SiteID
	updated.Code = code
	updated.FirstName = req.FirstName
	updated.LastName = req.LastName
	updated.BirthDate = req.BirthDate
	updated.Gender = req.Gender
	updated.Phone = req.Phone
	updated.Email = req.Email
	updated.Address = req.Address
	updated.CurrentGradeID = req.CurrentGradeID
	updated.AssignedTeacherID = req.AssignedTeacherID
	updated.Status = req.Status
	updated.Active = req.Active
	updatedBy := p.UserID
	updated.UpdatedBy = &updatedBy

	if err := s.repo.Update(ctx, &updated); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrDuplicateCode, "student code already in use")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}

	s.auditor.Update(ctx, p, "students", updated.ID, before, updated)
	return &updated, nil
}

// Delete deactivates a student. Enrollment history stays behind, so
// students are always soft-deleted.
func (s *StudentService) Delete(ctx context.Context, p models.Principal, id string) (*models.DeleteResult, error) {
	student, err := s.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Deactivate(ctx, id, p.UserID, time.Now().UTC()); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate student")
	}

	s.auditor.Delete(ctx, p, "students", student.ID, student)
	return &models.DeleteResult{ID: student.ID, Mode: models.DeleteModeSoft}, nil
}
