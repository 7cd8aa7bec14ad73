package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/campuskit/academy-api/internal/models"
	"github.com/campuskit/academy-api/internal/tenant"
)

func studentRows(students ...models.Student) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "company_id", "site_id", "code", "first_name", "last_name", "birth_date", "gender", "phone", "email", "address", "current_grade_id", "assigned_teacher_id", "status", "registration_date", "active", "created_by", "created_at", "updated_by", "updated_at"})
	for _, s := range students {
		rows.AddRow(s.ID, s.CompanyID, s.SiteID, s.Code, s.FirstName, s.LastName, s.BirthDate, s.Gender, s.Phone, s.Email, s.Address, s.CurrentGradeID, s.AssignedTeacherID, s.Status, s.RegistrationDate, s.Active, s.CreatedBy, time.Now(), nil, time.Now())
	}
	return rows
}

func TestStudentRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewStudentRepository(db)
	scope := tenant.Companies("c1")
	active := true

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM students")).
		WithArgs(pq.Array(scope.IDs()), "site-1", true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM students WHERE 1=1 AND company_id = ANY($1) AND site_id = $2 AND active = $3 ORDER BY code ASC")).
		WithArgs(pq.Array(scope.IDs()), "site-1", true).
		WillReturnRows(studentRows(models.Student{
			ID: "s1", CompanyID: "c1", SiteID: "site-1", Code: "ST-001",
			FirstName: "Mina", LastName: "Kim",
			BirthDate: time.Now(), Status: models.StudentStatusActive,
			RegistrationDate: time.Now(), Active: true, CreatedBy: "u1",
		}))

	students, total, err := repo.List(context.Background(), scope, models.StudentFilter{SiteID: "site-1", Active: &active})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, students, 1)
	require.Equal(t, "ST-001", students[0].Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryListRejectsUnknownSortColumn(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM students")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY code ASC")).
		WillReturnRows(studentRows())

	_, _, err := repo.List(context.Background(), tenant.AllCompanies(), models.StudentFilter{
		SortBy: "registration_date; DROP TABLE students", SortOrder: "sideways",
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreateTranslatesDuplicate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewStudentRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO students")).
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), &models.Student{CompanyID: "c1", Code: "ST-001"})
	require.ErrorIs(t, err, ErrDuplicate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryDeactivate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewStudentRepository(db)
	ts := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE students SET active = false")).
		WithArgs("s1", "u1", ts).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Deactivate(context.Background(), "s1", "u1", ts))
	require.NoError(t, mock.ExpectationsWereMet())
}
