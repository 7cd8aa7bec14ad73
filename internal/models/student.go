package models

import "time"

// StudentStatus enumerates enrollment states.
type StudentStatus string

const (
	StudentStatusActive    StudentStatus = "ACTIVE"
	StudentStatusOnHold    StudentStatus = "ON_HOLD"
	StudentStatusGraduated StudentStatus = "GRADUATED"
	StudentStatusWithdrawn StudentStatus = "WITHDRAWN"
)

// Student represents an enrolled student.
type Student struct {
	ID                string        `db:"id" json:"id"`
	CompanyID         string        `db:"company_id" json:"company_id"`
	SiteID            string        `db:"site_id" json:"site_id"`
	Code              string        `db:"code" json:"code"`
	FirstName         string        `db:"first_name" json:"first_name"`
	LastName          string        `db:"last_name" json:"last_name"`
	BirthDate         time.Time     `db:"birth_date" json:"birth_date"`
	Gender            string        `db:"gender" json:"gender"`
	Phone             string        `db:"phone" json:"phone"`
	Email             string        `db:"email" json:"email"`
	Address           string        `db:"address" json:"address"`
	CurrentGradeID    *string       `db:"current_grade_id" json:"current_grade_id,omitempty"`
	AssignedTeacherID *string       `db:"assigned_teacher_id" json:"assigned_teacher_id,omitempty"`
	Status            StudentStatus `db:"status" json:"status"`
	RegistrationDate  time.Time     `db:"registration_date" json:"registration_date"`
	Active            bool          `db:"active" json:"active"`
	CreatedBy         string        `db:"created_by" json:"created_by"`
	CreatedAt         time.Time     `db:"created_at" json:"created_at"`
	UpdatedBy         *string       `db:"updated_by" json:"updated_by,omitempty"`
	UpdatedAt         time.Time     `db:"updated_at" json:"updated_at"`
}

// StudentFilter captures filtering criteria for listing students.
type StudentFilter struct {
	CompanyID string
	SiteID    string
	GradeID   string
	Search    string
	Active    *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
