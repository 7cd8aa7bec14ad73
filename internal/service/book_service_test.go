package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campuskit/academy-api/internal/models"
	"github.com/campuskit/academy-api/internal/tenant"
	appErrors "github.com/campuskit/academy-api/pkg/errors"
)

type mockBookRepo struct {
	books       map[string]models.Book
	refs        models.BookReferences
	hardDeleted []string
	deactivated []string
}

func (m *mockBookRepo) List(ctx context.Context, scope tenant.Scope, filter models.BookFilter) ([]models.Book, int, error) {
	var result []models.Book
	for _, b := range m.books {
		if scope.Allows(b.CompanyID) {
			result = append(result, b)
		}
	}
	return result, len(result), nil
}

func (m *mockBookRepo) FindByID(ctx context.Context, id string) (*models.Book, error) {
	if b, ok := m.books[id]; ok {
		return &b, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockBookRepo) ExistsByCode(ctx context.Context, companyID, code, excludeID string) (bool, error) {
	for _, b := range m.books {
		if b.CompanyID == companyID && b.Code == code && b.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockBookRepo) Create(ctx context.Context, book *models.Book) error {
	if m.books == nil {
		m.books = make(map[string]models.Book)
	}
	if book.ID == "" {
		book.ID = "book-" + book.Code
	}
	m.books[book.ID] = *book
	return nil
}

func (m *mockBookRepo) Update(ctx context.Context, book *models.Book) error {
	m.books[book.ID] = *book
	return nil
}

func (m *mockBookRepo) HardDeleteIfUnreferenced(ctx context.Context, id string) (bool, models.BookReferences, error) {
	if m.refs.Total() > 0 {
		return false, m.refs, nil
	}
	delete(m.books, id)
	m.hardDeleted = append(m.hardDeleted, id)
	return true, models.BookReferences{}, nil
}

func (m *mockBookRepo) Deactivate(ctx context.Context, id, updatedBy string, ts time.Time) error {
	b := m.books[id]
	b.Active = false
	m.books[id] = b
	m.deactivated = append(m.deactivated, id)
	return nil
}

func newBookService(repo *mockBookRepo, scopes *stubScopes, auditor *recordingAuditor) *BookService {
	return NewBookService(repo, scopes, auditor, validator.New(), zap.NewNop())
}

func TestBookServiceDeleteUnreferencedIsHard(t *testing.T) {
	repo := &mockBookRepo{books: map[string]models.Book{
		"b1": {ID: "b1", CompanyID: "c1", Code: "BK-1", Title: "Phonics"},
	}}
	auditor := &recordingAuditor{}
	svc := newBookService(repo, &stubScopes{scope: tenant.Companies("c1")}, auditor)

	result, err := svc.Delete(context.Background(), adminPrincipal("c1"), "b1")
	require.NoError(t, err)
	assert.Equal(t, models.DeleteModeHard, result.Mode)
	assert.Contains(t, repo.hardDeleted, "b1")
	assert.Empty(t, repo.deactivated)
	require.Len(t, auditor.calls, 1)
	assert.Equal(t, models.AuditActionDelete, auditor.calls[0].Action)
}

func TestBookServiceDeleteReferencedFallsBackToSoft(t *testing.T) {
	repo := &mockBookRepo{
		books: map[string]models.Book{
			"b1": {ID: "b1", CompanyID: "c1", Code: "BK-1", Title: "Phonics", Active: true},
		},
		refs: models.BookReferences{GradeBooks: 2},
	}
	auditor := &recordingAuditor{}
	svc := newBookService(repo, &stubScopes{scope: tenant.Companies("c1")}, auditor)

	result, err := svc.Delete(context.Background(), adminPrincipal("c1"), "b1")
	require.NoError(t, err)
	assert.Equal(t, models.DeleteModeSoft, result.Mode)
	assert.Empty(t, repo.hardDeleted)
	assert.Contains(t, repo.deactivated, "b1")
	assert.False(t, repo.books["b1"].Active)
	require.Len(t, auditor.calls, 1)
	assert.Equal(t, models.AuditActionDelete, auditor.calls[0].Action)
}

func TestBookServiceCreateDuplicatePerCompany(t *testing.T) {
	repo := &mockBookRepo{books: map[string]models.Book{
		"b1": {ID: "b1", CompanyID: "c1", Code: "BK-1"},
	}}
	svc := newBookService(repo, &stubScopes{scope: tenant.Companies("c1", "c2")}, &recordingAuditor{})

	_, err := svc.Create(context.Background(), adminPrincipal("c1"), CreateBookRequest{
		CompanyID: "c1", Code: "bk-1", Title: "Phonics", Author: "Smith", Category: "READING",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrDuplicateCode))

	_, err = svc.Create(context.Background(), adminPrincipal("c1"), CreateBookRequest{
		CompanyID: "c2", Code: "bk-1", Title: "Phonics", Author: "Smith", Category: "READING",
	})
	require.NoError(t, err)
}
