package models

import "time"

// Company represents a tenant in the company hierarchy. A company may have
// at most one parent; children form a two-level tree in practice (head
// office plus branches).
type Company struct {
	ID              string    `db:"id" json:"id"`
	ParentCompanyID *string   `db:"parent_company_id" json:"parent_company_id,omitempty"`
	Code            string    `db:"code" json:"code"`
	Name            string    `db:"name" json:"name"`
	Address         string    `db:"address" json:"address"`
	City            string    `db:"city" json:"city"`
	Phone           string    `db:"phone" json:"phone"`
	Email           string    `db:"email" json:"email"`
	IsHeadOffice    bool      `db:"is_head_office" json:"is_head_office"`
	Active          bool      `db:"active" json:"active"`
	CreatedBy       string    `db:"created_by" json:"created_by"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedBy       *string   `db:"updated_by" json:"updated_by,omitempty"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// CompanyFilter captures filtering criteria for listing companies.
type CompanyFilter struct {
	Search    string
	Active    *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// CompanyDependents counts rows that reference a company and block deletion.
type CompanyDependents struct {
	ChildCompanies int `db:"child_companies"`
	Sites          int `db:"sites"`
	Users          int `db:"users"`
}

// Total returns the overall number of blocking references.
func (d CompanyDependents) Total() int {
	return d.ChildCompanies + d.Sites + d.Users
}

// Reasons lists human-readable blocking references.
func (d CompanyDependents) Reasons() []string {
	return dependentReasons(map[string]int{
		"child companies": d.ChildCompanies,
		"sites":           d.Sites,
		"users":           d.Users,
	})
}
