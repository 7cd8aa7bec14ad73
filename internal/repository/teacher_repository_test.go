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

func TestTeacherRepositoryListJoinsUser(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTeacherRepository(db)
	scope := tenant.Companies("c1")

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM teachers t JOIN users u ON u.id = t.user_id")).
		WithArgs(pq.Array(scope.IDs())).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	rows := sqlmock.NewRows([]string{"id", "user_id", "company_id", "site_id", "code", "specialization", "experience_years", "hourly_rate", "max_students_per_day", "available_for_trial", "active", "created_by", "created_at", "updated_by", "updated_at", "user_full_name", "user_email"}).
		AddRow("t1", "u1", "c1", "site-1", "T-1", "Phonics", 5, 30.0, 8, true, true, "admin", time.Now(), nil, time.Now(), "Jane Doe", "jane@campus.test")
	mock.ExpectQuery(regexp.QuoteMeta("u.full_name AS user_full_name, u.email AS user_email")).
		WithArgs(pq.Array(scope.IDs())).
		WillReturnRows(rows)

	teachers, total, err := repo.List(context.Background(), scope, models.TeacherFilter{})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, teachers, 1)
	require.Equal(t, "Jane Doe", teachers[0].UserFullName)
	require.Equal(t, "T-1", teachers[0].Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryUserAssigned(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTeacherRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM teachers WHERE user_id = $1 AND active = true")).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(1))

	assigned, err := repo.UserAssigned(context.Background(), "u1", "")
	require.NoError(t, err)
	require.True(t, assigned)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM teachers WHERE user_id = $1 AND active = true AND id <> $2")).
		WithArgs("u1", "t1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}))

	assigned, err = repo.UserAssigned(context.Background(), "u1", "t1")
	require.NoError(t, err)
	require.False(t, assigned)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryDeactivate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTeacherRepository(db)
	ts := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE teachers SET active = false")).
		WithArgs("t1", "u1", ts).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Deactivate(context.Background(), "t1", "u1", ts))
	require.NoError(t, mock.ExpectationsWereMet())
}
