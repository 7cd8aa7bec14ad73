package models

import "time"

// Teacher wraps exactly one user; a user may back at most one active teacher.
type Teacher struct {
	ID                string    `db:"id" json:"id"`
	UserID            string    `db:"user_id" json:"user_id"`
	CompanyID         string    `db:"company_id" json:"company_id"`
	SiteID            string    `db:"site_id" json:"site_id"`
	Code              string    `db:"code" json:"code"`
	Specialization    string    `db:"specialization" json:"specialization"`
	ExperienceYears   int       `db:"experience_years" json:"experience_years"`
	HourlyRate        float64   `db:"hourly_rate" json:"hourly_rate"`
	MaxStudentsPerDay int       `db:"max_students_per_day" json:"max_students_per_day"`
	AvailableForTrial bool      `db:"available_for_trial" json:"available_for_trial"`
	Active            bool      `db:"active" json:"active"`
	CreatedBy         string    `db:"created_by" json:"created_by"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedBy         *string   `db:"updated_by" json:"updated_by,omitempty"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// TeacherDetail is the flattened teacher row joined with its backing user.
// Explicit join instead of lazy navigation keeps query cost visible.
type TeacherDetail struct {
	Teacher
	UserFullName string `db:"user_full_name" json:"user_full_name"`
	UserEmail    string `db:"user_email" json:"user_email"`
}

// TeacherFilter captures filtering criteria for listing teachers.
type TeacherFilter struct {
	CompanyID string
	SiteID    string
	Search    string
	Active    *bool
	Page      int
	PageSize  int
}
