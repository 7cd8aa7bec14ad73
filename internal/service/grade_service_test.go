package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campuskit/academy-api/internal/models"
	"github.com/campuskit/academy-api/internal/tenant"
	appErrors "github.com/campuskit/academy-api/pkg/errors"
)

type mockGradeRepo struct {
	grades  map[string]models.Grade
	deps    models.GradeDependents
	deleted []string
}

func (m *mockGradeRepo) List(ctx context.Context, scope tenant.Scope, filter models.GradeFilter) ([]models.Grade, int, error) {
	var result []models.Grade
	for _, g := range m.grades {
		if !scope.Allows(g.CompanyID) {
			continue
		}
		if filter.CompanyID != "" && filter.CompanyID != g.CompanyID {
			continue
		}
		result = append(result, g)
	}
	return result, len(result), nil
}

func (m *mockGradeRepo) FindByID(ctx context.Context, id string) (*models.Grade, error) {
	if g, ok := m.grades[id]; ok {
		return &g, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockGradeRepo) ExistsByCode(ctx context.Context, companyID, code, excludeID string) (bool, error) {
	for _, g := range m.grades {
		if g.CompanyID == companyID && g.Code == code && g.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockGradeRepo) Create(ctx context.Context, grade *models.Grade) error {
	if m.grades == nil {
		m.grades = make(map[string]models.Grade)
	}
	if grade.ID == "" {
		grade.ID = "grade-" + grade.Code
	}
	m.grades[grade.ID] = *grade
	return nil
}

func (m *mockGradeRepo) Update(ctx context.Context, grade *models.Grade) error {
	m.grades[grade.ID] = *grade
	return nil
}

func (m *mockGradeRepo) DeleteIfUnreferenced(ctx context.Context, id string) (bool, models.GradeDependents, error) {
	if m.deps.Total() > 0 {
		return false, m.deps, nil
	}
	delete(m.grades, id)
	m.deleted = append(m.deleted, id)
	return true, models.GradeDependents{}, nil
}

func newGradeService(repo *mockGradeRepo, scopes *stubScopes, auditor *recordingAuditor) *GradeService {
	return NewGradeService(repo, scopes, auditor, validator.New(), zap.NewNop())
}

func TestGradeServiceCreateNormalizesCode(t *testing.T) {
	repo := &mockGradeRepo{}
	auditor := &recordingAuditor{}
	svc := newGradeService(repo, &stubScopes{scope: tenant.Companies("c1")}, auditor)

	grade, err := svc.Create(context.Background(), adminPrincipal("c1"), CreateGradeRequest{
		CompanyID: "c1", Code: " beg-1 ", Name: "Beginner 1",
	})
	require.NoError(t, err)
	assert.Equal(t, "BEG-1", grade.Code)
	assert.True(t, grade.Active)
	assert.Equal(t, "user-1", grade.CreatedBy)
	require.Len(t, auditor.calls, 1)
	assert.Equal(t, models.AuditActionInsert, auditor.calls[0].Action)
	assert.Equal(t, "grades", auditor.calls[0].Table)
}

func TestGradeServiceCreateDuplicateCode(t *testing.T) {
	repo := &mockGradeRepo{grades: map[string]models.Grade{
		"g1": {ID: "g1", CompanyID: "c1", Code: "BEG-1"},
	}}
	svc := newGradeService(repo, &stubScopes{scope: tenant.Companies("c1")}, &recordingAuditor{})

	_, err := svc.Create(context.Background(), adminPrincipal("c1"), CreateGradeRequest{
		CompanyID: "c1", Code: "beg-1", Name: "Beginner 1",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrDuplicateCode))
}

func TestGradeServiceCreateSameCodeOtherCompany(t *testing.T) {
	repo := &mockGradeRepo{grades: map[string]models.Grade{
		"g1": {ID: "g1", CompanyID: "c2", Code: "BEG-1"},
	}}
	svc := newGradeService(repo, &stubScopes{scope: tenant.Companies("c1")}, &recordingAuditor{})

	_, err := svc.Create(context.Background(), adminPrincipal("c1"), CreateGradeRequest{
		CompanyID: "c1", Code: "BEG-1", Name: "Beginner 1",
	})
	require.NoError(t, err)
}

func TestGradeServiceCreateOutsideScope(t *testing.T) {
	svc := newGradeService(&mockGradeRepo{}, &stubScopes{scope: tenant.Companies("c1")}, &recordingAuditor{})

	_, err := svc.Create(context.Background(), adminPrincipal("c1"), CreateGradeRequest{
		CompanyID: "c9", Code: "BEG-1", Name: "Beginner 1",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
}

func TestGradeServiceGetOutsideScopeReportsNotFound(t *testing.T) {
	repo := &mockGradeRepo{grades: map[string]models.Grade{
		"g1": {ID: "g1", CompanyID: "c2", Code: "BEG-1"},
	}}
	svc := newGradeService(repo, &stubScopes{scope: tenant.Companies("c1")}, &recordingAuditor{})

	_, err := svc.Get(context.Background(), adminPrincipal("c1"), "g1")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestGradeServiceListFilteredByScope(t *testing.T) {
	repo := &mockGradeRepo{grades: map[string]models.Grade{
		"g1": {ID: "g1", CompanyID: "c1", Code: "A"},
		"g2": {ID: "g2", CompanyID: "c2", Code: "B"},
	}}
	svc := newGradeService(repo, &stubScopes{scope: tenant.Companies("c1")}, &recordingAuditor{})

	grades, pagination, err := svc.List(context.Background(), adminPrincipal("c1"), models.GradeFilter{})
	require.NoError(t, err)
	require.Len(t, grades, 1)
	assert.Equal(t, "g1", grades[0].ID)
	assert.Equal(t, 1, pagination.TotalCount)
}

func TestGradeServiceDeleteBlockedByDependents(t *testing.T) {
	repo := &mockGradeRepo{
		grades: map[string]models.Grade{"g1": {ID: "g1", CompanyID: "c1", Code: "A"}},
		deps:   models.GradeDependents{Students: 3},
	}
	auditor := &recordingAuditor{}
	svc := newGradeService(repo, &stubScopes{scope: tenant.Companies("c1")}, auditor)

	_, err := svc.Delete(context.Background(), adminPrincipal("c1"), "g1")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrDeleteBlocked))
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.NotEmpty(t, appErr.Reasons)
	assert.Empty(t, auditor.calls)
	assert.Contains(t, repo.grades, "g1")
}

func TestGradeServiceDeleteUnreferencedIsHard(t *testing.T) {
	repo := &mockGradeRepo{
		grades: map[string]models.Grade{"g1": {ID: "g1", CompanyID: "c1", Code: "A"}},
	}
	auditor := &recordingAuditor{}
	svc := newGradeService(repo, &stubScopes{scope: tenant.Companies("c1")}, auditor)

	result, err := svc.Delete(context.Background(), adminPrincipal("c1"), "g1")
	require.NoError(t, err)
	assert.Equal(t, models.DeleteModeHard, result.Mode)
	assert.Contains(t, repo.deleted, "g1")
	require.Len(t, auditor.calls, 1)
	assert.Equal(t, models.AuditActionDelete, auditor.calls[0].Action)
	assert.NotNil(t, auditor.calls[0].Old)
}

func TestGradeServiceUpdateAuditsBeforeAndAfter(t *testing.T) {
	repo := &mockGradeRepo{grades: map[string]models.Grade{
		"g1": {ID: "g1", CompanyID: "c1", Code: "A", Name: "Old", Active: true},
	}}
	auditor := &recordingAuditor{}
	svc := newGradeService(repo, &stubScopes{scope: tenant.Companies("c1")}, auditor)

	updated, err := svc.Update(context.Background(), adminPrincipal("c1"), "g1", UpdateGradeRequest{
		CompanyID: "c1", Code: "A", Name: "New", Active: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Name)
	require.NotNil(t, updated.UpdatedBy)
	assert.Equal(t, "user-1", *updated.UpdatedBy)
	require.Len(t, auditor.calls, 1)
	assert.Equal(t, models.AuditActionUpdate, auditor.calls[0].Action)
	assert.NotNil(t, auditor.calls[0].Old)
	assert.NotNil(t, auditor.calls[0].New)
}

func TestGradeServiceValidationListsAllFields(t *testing.T) {
	svc := newGradeService(&mockGradeRepo{}, &stubScopes{scope: tenant.AllCompanies()}, &recordingAuditor{})

	_, err := svc.Create(context.Background(), adminPrincipal("c1"), CreateGradeRequest{})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.GreaterOrEqual(t, len(appErr.Fields), 2)
}
