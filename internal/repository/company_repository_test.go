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

func companyRows(companies ...models.Company) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "parent_company_id", "code", "name", "address", "city", "phone", "email", "is_head_office", "active", "created_by", "created_at", "updated_by", "updated_at"})
	for _, c := range companies {
		rows.AddRow(c.ID, c.ParentCompanyID, c.Code, c.Name, c.Address, c.City, c.Phone, c.Email, c.IsHeadOffice, c.Active, c.CreatedBy, time.Now(), nil, time.Now())
	}
	return rows
}

func TestCompanyRepositoryListScopesOnOwnID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewCompanyRepository(db)
	scope := tenant.Companies("c1")

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM companies WHERE 1=1 AND id = ANY($1)")).
		WithArgs(pq.Array(scope.IDs())).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, parent_company_id, code, name")).
		WithArgs(pq.Array(scope.IDs())).
		WillReturnRows(companyRows(models.Company{ID: "c1", Code: "HQ", Name: "Head Office", Active: true}))

	companies, total, err := repo.List(context.Background(), scope, models.CompanyFilter{})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, companies, 1)
	require.Equal(t, "c1", companies[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCompanyRepositoryListChildIDs(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewCompanyRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM companies WHERE parent_company_id = $1")).
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("c2").AddRow("c3"))

	ids, err := repo.ListChildIDs(context.Background(), "c1")
	require.NoError(t, err)
	require.Equal(t, []string{"c2", "c3"}, ids)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCompanyRepositoryExistsByCodeIsGlobal(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewCompanyRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM companies WHERE code = $1")).
		WithArgs("HQ").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(1))

	exists, err := repo.ExistsByCode(context.Background(), "HQ", "")
	require.NoError(t, err)
	require.True(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCompanyRepositoryCreateTranslatesDuplicate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewCompanyRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO companies")).
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), &models.Company{Code: "HQ", Name: "Head Office"})
	require.ErrorIs(t, err, ErrDuplicate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCompanyRepositoryDependents(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewCompanyRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT")).
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows([]string{"child_companies", "sites", "users"}).AddRow(1, 2, 3))

	deps, err := repo.Dependents(context.Background(), "c1")
	require.NoError(t, err)
	require.Equal(t, 6, deps.Total())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCompanyRepositoryDeactivate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewCompanyRepository(db)
	ts := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE companies SET active = false")).
		WithArgs("c1", "u1", ts).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Deactivate(context.Background(), "c1", "u1", ts))
	require.NoError(t, mock.ExpectationsWereMet())
}
