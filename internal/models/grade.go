package models

import "time"

// Grade represents a course level offered by a company.
type Grade struct {
	ID             string    `db:"id" json:"id"`
	CompanyID      string    `db:"company_id" json:"company_id"`
	Code           string    `db:"code" json:"code"`
	Name           string    `db:"name" json:"name"`
	DurationMonths int       `db:"duration_months" json:"duration_months"`
	SortOrder      int       `db:"sort_order" json:"sort_order"`
	Active         bool      `db:"active" json:"active"`
	CreatedBy      string    `db:"created_by" json:"created_by"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedBy      *string   `db:"updated_by" json:"updated_by,omitempty"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// GradeFilter captures filtering criteria for listing grades.
type GradeFilter struct {
	CompanyID string
	Search    string
	Active    *bool
	Page      int
	PageSize  int
}

// GradeDependents counts rows that reference a grade and block deletion.
type GradeDependents struct {
	Students   int `db:"students"`
	GradeBooks int `db:"grade_books"`
}

// Total returns the overall number of blocking references.
func (d GradeDependents) Total() int {
	return d.Students + d.GradeBooks
}

// Reasons lists human-readable blocking references.
func (d GradeDependents) Reasons() []string {
	return dependentReasons(map[string]int{
		"students":         d.Students,
		"grade book links": d.GradeBooks,
	})
}
