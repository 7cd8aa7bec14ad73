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

type mockStudentRepo struct {
	students    map[string]models.Student
	deactivated []string
}

func (m *mockStudentRepo) List(ctx context.Context, scope tenant.Scope, filter models.StudentFilter) ([]models.Student, int, error) {
	var result []models.Student
	for _, s := range m.students {
		if scope.Allows(s.CompanyID) {
			result = append(result, s)
		}
	}
	return result, len(result), nil
}

func (m *mockStudentRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := m.students[id]; ok {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentRepo) ExistsByCode(ctx context.Context, companyID, code, excludeID string) (bool, error) {
	for _, s := range m.students {
		if s.CompanyID == companyID && s.Code == code && s.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockStudentRepo) Create(ctx context.Context, student *models.Student) error {
	if m.students == nil {
		m.students = make(map[string]models.Student)
	}
	if student.ID == "" {
		student.ID = "student-" + student.Code
	}
	m.students[student.ID] = *student
	return nil
}

func (m *mockStudentRepo) Update(ctx context.Context, student *models.Student) error {
	m.students[student.ID] = *student
	return nil
}

func (m *mockStudentRepo) Deactivate(ctx context.Context, id, updatedBy string, ts time.Time) error {
	s := m.students[id]
	s.Active = false
	m.students[id] = s
	m.deactivated = append(m.deactivated, id)
	return nil
}

func newStudentService(repo *mockStudentRepo, scopes *stubScopes, auditor *recordingAuditor) *StudentService {
	return NewStudentService(repo, scopes, auditor, validator.New(), zap.NewNop())
}

func studentRequest(code string) CreateStudentRequest {
	return CreateStudentRequest{
		CompanyID: "c1", SiteID: "s1", Code: code,
		FirstName: "Mina", LastName: "Kim",
		BirthDate: time.Date(2015, 4, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestStudentServiceCreateDefaults(t *testing.T) {
	repo := &mockStudentRepo{}
	auditor := &recordingAuditor{}
	svc := newStudentService(repo, &stubScopes{scope: tenant.Companies("c1")}, auditor)

	student, err := svc.Create(context.Background(), adminPrincipal("c1"), studentRequest("st-001"))
	require.NoError(t, err)
	assert.Equal(t, "ST-001", student.Code)
	assert.Equal(t, models.StudentStatusActive, student.Status)
	assert.True(t, student.Active)
	assert.False(t, student.RegistrationDate.IsZero())
	require.Len(t, auditor.calls, 1)
	assert.Equal(t, "students", auditor.calls[0].Table)
}

func TestStudentServiceCodeUniquePerCompany(t *testing.T) {
	repo := &mockStudentRepo{students: map[string]models.Student{
		"s1": {ID: "s1", CompanyID: "c1", Code: "ST-001"},
	}}
	svc := newStudentService(repo, &stubScopes{scope: tenant.Companies("c1", "c2")}, &recordingAuditor{})

	_, err := svc.Create(context.Background(), adminPrincipal("c1"), studentRequest("ST-001"))
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrDuplicateCode))

	other := studentRequest("ST-001")
	other.CompanyID = "c2"
	_, err = svc.Create(context.Background(), adminPrincipal("c1"), other)
	require.NoError(t, err)
}

func TestStudentServiceDeleteAlwaysSoft(t *testing.T) {
	repo := &mockStudentRepo{students: map[string]models.Student{
		"s1": {ID: "s1", CompanyID: "c1", Code: "ST-001", Active: true},
	}}
	auditor := &recordingAuditor{}
	svc := newStudentService(repo, &stubScopes{scope: tenant.Companies("c1")}, auditor)

	result, err := svc.Delete(context.Background(), adminPrincipal("c1"), "s1")
	require.NoError(t, err)
	assert.Equal(t, models.DeleteModeSoft, result.Mode)
	assert.Contains(t, repo.students, "s1")
	assert.False(t, repo.students["s1"].Active)
	require.Len(t, auditor.calls, 1)
	assert.Equal(t, models.AuditActionDelete, auditor.calls[0].Action)
}

func TestStudentServiceGetOutsideScopeReportsNotFound(t *testing.T) {
	repo := &mockStudentRepo{students: map[string]models.Student{
		"s1": {ID: "s1", CompanyID: "c2", Code: "ST-001"},
	}}
	svc := newStudentService(repo, &stubScopes{scope: tenant.Companies("c1")}, &recordingAuditor{})

	_, err := svc.Get(context.Background(), adminPrincipal("c1"), "s1")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestStudentServiceUpdateStatusTransition(t *testing.T) {
	repo := &mockStudentRepo{students: map[string]models.Student{
		"s1": {
			ID: "s1", CompanyID: "c1", SiteID: "site-1", Code: "ST-001",
			FirstName: "Mina", LastName: "Kim",
			BirthDate: time.Date(2015, 4, 1, 0, 0, 0, 0, time.UTC),
			Status:    models.StudentStatusActive, Active: true,
		},
	}}
	svc := newStudentService(repo, &stubScopes{scope: tenant.Companies("c1")}, &recordingAuditor{})

	updated, err := svc.Update(context.Background(), adminPrincipal("c1"), "s1", UpdateStudentRequest{
		CompanyID: "c1", SiteID: "site-1", Code: "ST-001",
		FirstName: "Mina", LastName: "Kim",
		BirthDate: time.Date(2015, 4, 1, 0, 0, 0, 0, time.UTC),
		Status:    models.StudentStatusGraduated, Active: true,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StudentStatusGraduated, updated.Status)
}
