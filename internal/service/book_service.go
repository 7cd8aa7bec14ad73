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

type bookRepository interface {
	List(ctx context.Context, scope tenant.Scope, filter models.BookFilter) ([]models.Book, int, error)
	FindByID(ctx context.Context, id string) (*models.Book, error)
	ExistsByCode(ctx context.Context, companyID, code, excludeID string) (bool, error)
	Create(ctx context.Context, book *models.Book) error
	Update(ctx context.Context, book *models.Book) error
	HardDeleteIfUnreferenced(ctx context.Context, id string) (bool, models.BookReferences, error)
	Deactivate(ctx context.Context, id, updatedBy string, ts time.Time) error
}

// CreateBookRequest holds payload for creating books.
type CreateBookRequest struct {
	CompanyID string  `json:"company_id" validate:"required"`
	Code      string  `json:"code" validate:"required,max=20"`
	Title     string  `json:"title" validate:"required"`
	Author    string  `json:"author" validate:"required"`
	Publisher string  `json:"publisher"`
	ISBN      *string `json:"isbn,omitempty"`
	Category  string  `json:"category" validate:"required"`
}

// UpdateBookRequest holds payload for updating books.
type UpdateBookRequest struct {
	CompanyID string  `json:"company_id" validate:"required"`
	Code      string  `json:"code" validate:"required,max=20"`
	Title     string  `json:"title" validate:"required"`
	Author    string  `json:"author" validate:"required"`
	Publisher string  `json:"publisher"`
	ISBN      *string `json:"isbn,omitempty"`
	Category  string  `json:"category" validate:"required"`
	Active    bool    `json:"active"`
}

// BookService handles book use-cases. Books use the soft-when-referenced
// delete policy: referenced books are deactivated, unreferenced books are
// removed outright.
type BookService struct {
	repo      bookRepository
	scopes    scopeResolver
	auditor   auditRecorder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewBookService constructs the book service.
func NewBookService(repo bookRepository, scopes scopeResolver, auditor auditRecorder, validate *validator.Validate, logger *zap.Logger) *BookService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookService{repo: repo, scopes: scopes, auditor: auditor, validator: validate, logger: logger}
}

// List returns books within the principal's tenant scope.
func (s *BookService) List(ctx context.Context, p models.Principal, filter models.BookFilter) ([]models.Book, *models.Pagination, error) {
	scope, err := s.scopes.Resolve(ctx, p)
	if err != nil {
		return nil, nil, err
	}
	books, total, err := s.repo.List(ctx, scope, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list books")
	}
	return books, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Get returns a single book within scope.
func (s *BookService) Get(ctx context.Context, p models.Principal, id string) (*models.Book, error) {
	scope, err := s.scopes.Resolve(ctx, p)
	if err != nil {
		return nil, err
	}
	book, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "book not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load book")
	}
	if !scope.Allows(book.CompanyID) {
		return nil, appErrors.Clone(appErrors.ErrScopeDenied, "book not found")
	}
	return book, nil
}

// Create registers a new book.
func (s *BookService) Create(ctx context.Context, p models.Principal, req CreateBookRequest) (*models.Book, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError("invalid book payload", err)
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
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate book code")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrDuplicateCode, "book code already in use")
	}

	book := &models.Book{
		CompanyID: req.CompanyID,
		Code:      code,
		Title:     req.Title,
		Author:    req.Author,
		Publisher: req.Publisher,
		ISBN:      req.ISBN,
		Category:  req.Category,
		Active:    true,
		CreatedBy: p.UserID,
	}
	if err := s.repo.Create(ctx, book); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrDuplicateCode, "book code already in use")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create book")
	}

	s.auditor.Insert(ctx, p, "books", book.ID, book)
	return book, nil
}

// Update modifies an existing book preserving its creation stamps.
func (s *BookService) Update(ctx context.Context, p models.Principal, id string, req UpdateBookRequest) (*models.Book, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError("invalid book payload", err)
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
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate book code")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrDuplicateCode, "book code already in use")
	}

	before := *current
	updated := *current
	updated.CompanyID = req.CompanyID
	updated.Code = code
	updated.Title = req.Title
	updated.Author = req.Author
	updated.Publisher = req.Publisher
	updated.ISBN = req.ISBN
	updated.Category = req.Category
	updated.Active = req.Active
	updatedBy := p.UserID
	updated.UpdatedBy = &updatedBy

	if err := s.repo.Update(ctx, &updated); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrDuplicateCode, "book code already in use")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update book")
	}

	s.auditor.Update(ctx, p, "books", updated.ID, before, updated)
	return &updated, nil
}

// Delete removes an unreferenced book outright; a book referenced by grade
// book links or inventory rows is deactivated instead.
func (s *BookService) Delete(ctx context.Context, p models.Principal, id string) (*models.DeleteResult, error) {
	book, err := s.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}

	deleted, _, err := s.repo.HardDeleteIfUnreferenced(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete book")
	}
	if deleted {
		s.auditor.Delete(ctx, p, "books", book.ID, book)
		return &models.DeleteResult{ID: book.ID, Mode: models.DeleteModeHard}, nil
	}

	if err := s.repo.Deactivate(ctx, id, p.UserID, time.Now().UTC()); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate book")
	}
	s.auditor.Delete(ctx, p, "books", book.ID, book)
	return &models.DeleteResult{ID: book.ID, Mode: models.DeleteModeSoft}, nil
}
