package models

import "time"

// Site represents a physical location belonging to exactly one company.
type Site struct {
	ID          string    `db:"id" json:"id"`
	CompanyID   string    `db:"company_id" json:"company_id"`
	Code        string    `db:"code" json:"code"`
	Name        string    `db:"name" json:"name"`
	Address     string    `db:"address" json:"address"`
	City        string    `db:"city" json:"city"`
	Phone       string    `db:"phone" json:"phone"`
	ManagerName string    `db:"manager_name" json:"manager_name"`
	Active      bool      `db:"active" json:"active"`
	CreatedBy   string    `db:"created_by" json:"created_by"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedBy   *string   `db:"updated_by" json:"updated_by,omitempty"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// SiteFilter captures filtering criteria for listing sites.
type SiteFilter struct {
	CompanyID string
	Search    string
	Active    *bool
	Page      int
	PageSize  int
}

// SiteDependents counts rows that reference a site and block deletion.
type SiteDependents struct {
	Users    int `db:"users"`
	Students int `db:"students"`
	Teachers int `db:"teachers"`
}

// Total returns the overall number of blocking references.
func (d SiteDependents) Total() int {
	return d.Users + d.Students + d.Teachers
}

// Reasons lists human-readable blocking references.
func (d SiteDependents) Reasons() []string {
	return dependentReasons(map[string]int{
		"users":    d.Users,
		"students": d.Students,
		"teachers": d.Teachers,
	})
}
