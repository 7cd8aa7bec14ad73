package models

import "time"

// Book represents course material owned by a company.
type Book struct {
	ID        string    `db:"id" json:"id"`
	CompanyID string    `db:"company_id" json:"company_id"`
	Code      string    `db:"code" json:"code"`
	Title     string    `db:"title" json:"title"`
	Author    string    `db:"author" json:"author"`
	Publisher string    `db:"publisher" json:"publisher"`
	ISBN      *string   `db:"isbn" json:"isbn,omitempty"`
	Category  string    `db:"category" json:"category"`
	Active    bool      `db:"active" json:"active"`
	CreatedBy string    `db:"created_by" json:"created_by"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedBy *string   `db:"updated_by" json:"updated_by,omitempty"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// BookFilter captures filtering criteria for listing books.
type BookFilter struct {
	CompanyID string
	Search    string
	Category  string
	Active    *bool
	Page      int
	PageSize  int
}

// BookReferences counts rows referencing a book. Referenced books are
// soft-deleted; unreferenced books are removed outright.
type BookReferences struct {
	GradeBooks int `db:"grade_books"`
	Inventory  int `db:"inventory"`
}

// Total returns the overall number of references.
func (r BookReferences) Total() int {
	return r.GradeBooks + r.Inventory
}
