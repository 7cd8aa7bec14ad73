package models

import "time"

// Audit actions recorded for entity mutations.
const (
	AuditActionInsert = "INSERT"
	AuditActionUpdate = "UPDATE"
	AuditActionDelete = "DELETE"
)

// AuditLog represents an append-only audit trail record. Rows are never
// updated or deleted by the application.
type AuditLog struct {
	ID        string    `db:"id" json:"id"`
	CompanyID string    `db:"company_id" json:"company_id"`
	UserID    *string   `db:"user_id" json:"user_id,omitempty"`
	TableName string    `db:"table_name" json:"table_name"`
	RecordID  string    `db:"record_id" json:"record_id"`
	Action    string    `db:"action" json:"action"`
	OldValues []byte    `db:"old_values" json:"old_values,omitempty"`
	NewValues []byte    `db:"new_values" json:"new_values,omitempty"`
	IPAddress string    `db:"ip_address" json:"ip_address"`
	UserAgent string    `db:"user_agent" json:"user_agent"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// AuditLogFilter captures filtering criteria for listing audit records.
type AuditLogFilter struct {
	TableName string
	Action    string
	RecordID  string
	Page      int
	PageSize  int
}
