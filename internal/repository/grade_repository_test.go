package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/campuskit/academy-api/internal/models"
	"github.com/campuskit/academy-api/internal/tenant"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func gradeRows(grades ...models.Grade) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "company_id", "code", "name", "duration_months", "sort_order", "active", "created_by", "created_at", "updated_by", "updated_at"})
	for _, g := range grades {
		rows.AddRow(g.ID, g.CompanyID, g.Code, g.Name, g.DurationMonths, g.SortOrder, g.Active, g.CreatedBy, time.Now(), nil, time.Now())
	}
	return rows
}

func TestGradeRepositoryListScoped(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewGradeRepository(db)
	scope := tenant.Companies("c1", "c2")

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM grades")).
		WithArgs(pq.Array(scope.IDs())).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, company_id, code, name")).
		WithArgs(pq.Array(scope.IDs())).
		WillReturnRows(gradeRows(models.Grade{ID: "g1", CompanyID: "c1", Code: "BEG-1", Name: "Beginner", Active: true, CreatedBy: "u1"}))

	grades, total, err := repo.List(context.Background(), scope, models.GradeFilter{})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, grades, 1)
	require.Equal(t, "g1", grades[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositoryListUnboundedScopeSkipsFilter(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewGradeRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM grades")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, company_id, code, name")).
		WillReturnRows(gradeRows(
			models.Grade{ID: "g1", CompanyID: "c1", Code: "A", Name: "A"},
			models.Grade{ID: "g2", CompanyID: "c2", Code: "B", Name: "B"},
		))

	grades, total, err := repo.List(context.Background(), tenant.AllCompanies(), models.GradeFilter{})
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Len(t, grades, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositoryCreateTranslatesDuplicate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewGradeRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO grades")).
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), &models.Grade{CompanyID: "c1", Code: "BEG-1", Name: "Beginner"})
	require.ErrorIs(t, err, ErrDuplicate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositoryExistsByCode(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewGradeRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM grades WHERE company_id = $1 AND code = $2")).
		WithArgs("c1", "BEG-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(1))

	exists, err := repo.ExistsByCode(context.Background(), "c1", "BEG-1", "")
	require.NoError(t, err)
	require.True(t, exists)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM grades WHERE company_id = $1 AND code = $2 AND id <> $3")).
		WithArgs("c1", "BEG-1", "g1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}))

	exists, err = repo.ExistsByCode(context.Background(), "c1", "BEG-1", "g1")
	require.NoError(t, err)
	require.False(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositoryDeleteBlockedKeepsRow(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewGradeRepository(db)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT")).
		WithArgs("g1").
		WillReturnRows(sqlmock.NewRows([]string{"students", "grade_books"}).AddRow(3, 0))
	mock.ExpectCommit()

	deleted, deps, err := repo.DeleteIfUnreferenced(context.Background(), "g1")
	require.NoError(t, err)
	require.False(t, deleted)
	require.Equal(t, 3, deps.Students)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositoryDeleteUnreferencedRemovesRow(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewGradeRepository(db)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT")).
		WithArgs("g1").
		WillReturnRows(sqlmock.NewRows([]string{"students", "grade_books"}).AddRow(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM grades WHERE id = $1")).
		WithArgs("g1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	deleted, deps, err := repo.DeleteIfUnreferenced(context.Background(), "g1")
	require.NoError(t, err)
	require.True(t, deleted)
	require.Zero(t, deps.Total())
	require.NoError(t, mock.ExpectationsWereMet())
}
