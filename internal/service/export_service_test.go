package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campuskit/academy-api/internal/models"
	"github.com/campuskit/academy-api/internal/tenant"
	appErrors "github.com/campuskit/academy-api/pkg/errors"
)

func newExportFixture() (*ExportService, *mockStudentRepo, *mockTeacherRepo) {
	students := &mockStudentRepo{students: map[string]models.Student{
		"s1": {ID: "s1", CompanyID: "c1", SiteID: "site-1", Code: "ST-001", FirstName: "Mina", LastName: "Kim", Status: models.StudentStatusActive},
		"s2": {ID: "s2", CompanyID: "c2", SiteID: "site-9", Code: "ST-900", FirstName: "Out", LastName: "OfScope", Status: models.StudentStatusActive},
	}}
	teachers := &mockTeacherRepo{teachers: map[string]models.Teacher{
		"t1": {ID: "t1", UserID: "u1", CompanyID: "c1", Code: "T-1", Specialization: "Phonics", ExperienceYears: 5, Active: true},
	}}
	svc := NewExportService(students, teachers, &stubScopes{scope: tenant.Companies("c1")}, zap.NewNop(), nil, nil)
	return svc, students, teachers
}

func TestExportServiceStudentRosterCSV(t *testing.T) {
	svc, _, _ := newExportFixture()

	result, err := svc.StudentRoster(context.Background(), adminPrincipal("c1"), models.StudentFilter{}, ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.True(t, strings.HasSuffix(result.Filename, ".csv"))

	body := string(result.Payload)
	assert.Contains(t, body, "Code,Last Name,First Name")
	assert.Contains(t, body, "ST-001")
	assert.NotContains(t, body, "ST-900")
}

func TestExportServiceTeacherRosterPDF(t *testing.T) {
	svc, _, _ := newExportFixture()

	result, err := svc.TeacherRoster(context.Background(), adminPrincipal("c1"), models.TeacherFilter{}, ExportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, strings.HasSuffix(result.Filename, ".pdf"))
	assert.NotEmpty(t, result.Payload)
}

func TestExportServiceUnsupportedFormat(t *testing.T) {
	svc, _, _ := newExportFixture()

	_, err := svc.StudentRoster(context.Background(), adminPrincipal("c1"), models.StudentFilter{}, ExportFormat("xlsx"))
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}
