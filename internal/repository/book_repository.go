package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campuskit/academy-api/internal/models"
	"github.com/campuskit/academy-api/internal/tenant"
	"github.com/campuskit/academy-api/pkg/database"
)

// BookRepository manages persistence for book records.
type BookRepository struct {
	db *sqlx.DB
}

// NewBookRepository constructs a BookRepository.
func NewBookRepository(db *sqlx.DB) *BookRepository {
	return &BookRepository{db: db}
}

const bookColumns = "id, company_id, code, title, author, publisher, isbn, category, active, created_by, created_at, updated_by, updated_at"

// List returns books within scope ordered by code then title.
func (r *BookRepository) List(ctx context.Context, scope tenant.Scope, filter models.BookFilter) ([]models.Book, int, error) {
	args := []interface{}{}
	conditions := []string{"1=1"}

	if clause := scopeClause(scope, "company_id", &args); clause != "" {
		conditions = append(conditions, clause)
	}
	if filter.CompanyID != "" {
		conditions = append(conditions, fmt.Sprintf("company_id = $%d", len(args)+1))
		args = append(args, filter.CompanyID)
	}
	if filter.Category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)+1))
		args = append(args, filter.Category)
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(title) LIKE $%d OR LOWER(code) LIKE $%d OR LOWER(author) LIKE $%d)", len(args)+1, len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	where := strings.Join(conditions, " AND ")

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) FROM books WHERE %s", where), args...); err != nil {
		return nil, 0, fmt.Errorf("count books: %w", err)
	}

	query := fmt.Sprintf("SELECT %s FROM books WHERE %s ORDER BY code, title", bookColumns, where)
	var books []models.Book
	if err := r.db.SelectContext(ctx, &books, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list books: %w", err)
	}
	return books, total, nil
}

// FindByID fetches a book by ID.
func (r *BookRepository) FindByID(ctx context.Context, id string) (*models.Book, error) {
	query := fmt.Sprintf("SELECT %s FROM books WHERE id = $1", bookColumns)
	var book models.Book
	if err := r.db.GetContext(ctx, &book, query, id); err != nil {
		return nil, err
	}
	return &book, nil
}

// ExistsByCode checks code collision within a company, optionally excluding an ID.
func (r *BookRepository) ExistsByCode(ctx context.Context, companyID, code, excludeID string) (bool, error) {
	query := "SELECT 1 FROM books WHERE company_id = $1 AND code = $2"
	args := []interface{}{companyID, code}
	if excludeID != "" {
		query += " AND id <> $3"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check book code: %w", err)
	}
	return true, nil
}

// Create inserts a new book record.
func (r *BookRepository) Create(ctx context.Context, book *models.Book) error {
	if book.ID == "" {
		book.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if book.CreatedAt.IsZero() {
		book.CreatedAt = now
	}
	book.UpdatedAt = now
	const query = `INSERT INTO books (id, company_id, code, title, author, publisher, isbn, category, active, created_by, created_at, updated_by, updated_at)
        VALUES (:id, :company_id, :code, :title, :author, :publisher, :isbn, :category, :active, :created_by, :created_at, :updated_by, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, book); err != nil {
		return translateError(err, "create book")
	}
	return nil
}

// Update modifies an existing book.
func (r *BookRepository) Update(ctx context.Context, book *models.Book) error {
	book.UpdatedAt = time.Now().UTC()
	const query = `UPDATE books SET company_id = :company_id, code = :code, title = :title, author = :author, publisher = :publisher, isbn = :isbn, category = :category, active = :active, updated_by = :updated_by, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, book); err != nil {
		return translateError(err, "update book")
	}
	return nil
}

const bookReferencesQuery = `SELECT
        (SELECT COUNT(*) FROM grade_books WHERE book_id = $1) AS grade_books,
        (SELECT COUNT(*) FROM inventory WHERE book_id = $1) AS inventory`

// HardDeleteIfUnreferenced removes the book row when nothing references it.
// Referenced books are left untouched; the caller soft-deletes them instead.
func (r *BookRepository) HardDeleteIfUnreferenced(ctx context.Context, id string) (bool, models.BookReferences, error) {
	var refs models.BookReferences
	deleted := false
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := tx.GetContext(ctx, &refs, bookReferencesQuery, id); err != nil {
			return fmt.Errorf("scan book references: %w", err)
		}
		if refs.Total() > 0 {
			return nil
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM books WHERE id = $1", id); err != nil {
			return fmt.Errorf("delete book: %w", err)
		}
		deleted = true
		return nil
	})
	return deleted, refs, err
}

// Deactivate marks a book as inactive.
func (r *BookRepository) Deactivate(ctx context.Context, id, updatedBy string, ts time.Time) error {
	const query = `UPDATE books SET active = false, updated_by = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, updatedBy, ts); err != nil {
		return fmt.Errorf("deactivate book: %w", err)
	}
	return nil
}
