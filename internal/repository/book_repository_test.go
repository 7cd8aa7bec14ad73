package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/campuskit/academy-api/internal/models"
)

func TestBookRepositoryHardDeleteUnreferenced(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewBookRepository(db)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT")).
		WithArgs("b1").
		WillReturnRows(sqlmock.NewRows([]string{"grade_books", "inventory"}).AddRow(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM books WHERE id = $1")).
		WithArgs("b1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	deleted, refs, err := repo.HardDeleteIfUnreferenced(context.Background(), "b1")
	require.NoError(t, err)
	require.True(t, deleted)
	require.Zero(t, refs.Total())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookRepositoryHardDeleteReferencedKeepsRow(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewBookRepository(db)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT")).
		WithArgs("b1").
		WillReturnRows(sqlmock.NewRows([]string{"grade_books", "inventory"}).AddRow(2, 1))
	mock.ExpectCommit()

	deleted, refs, err := repo.HardDeleteIfUnreferenced(context.Background(), "b1")
	require.NoError(t, err)
	require.False(t, deleted)
	require.Equal(t, 3, refs.Total())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookRepositoryCreateTranslatesDuplicate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewBookRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO books")).
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), &models.Book{CompanyID: "c1", Code: "BK-1", Title: "Phonics"})
	require.ErrorIs(t, err, ErrDuplicate)
	require.NoError(t, mock.ExpectationsWereMet())
}
