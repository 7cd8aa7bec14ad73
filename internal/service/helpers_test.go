package service

import (
	"context"

	"github.com/campuskit/academy-api/internal/models"
	"github.com/campuskit/academy-api/internal/tenant"
)

// stubScopes returns a fixed scope for every principal. Invalidate calls are
// recorded so company hierarchy tests can assert cache busting.
type stubScopes struct {
	scope       tenant.Scope
	err         error
	invalidated []string
}

func (s *stubScopes) Resolve(ctx context.Context, p models.Principal) (tenant.Scope, error) {
	if s.err != nil {
		return tenant.Scope{}, s.err
	}
	return s.scope, nil
}

func (s *stubScopes) Invalidate(ctx context.Context, companyID string) {
	s.invalidated = append(s.invalidated, companyID)
}

type auditCall struct {
	Action   string
	Table    string
	RecordID string
	Old      interface{}
	New      interface{}
}

// recordingAuditor captures audit invocations for assertions.
type recordingAuditor struct {
	calls []auditCall
}

func (a *recordingAuditor) Insert(ctx context.Context, p models.Principal, table, recordID string, newValue interface{}) {
	a.calls = append(a.calls, auditCall{Action: models.AuditActionInsert, Table: table, RecordID: recordID, New: newValue})
}

func (a *recordingAuditor) Update(ctx context.Context, p models.Principal, table, recordID string, oldValue, newValue interface{}) {
	a.calls = append(a.calls, auditCall{Action: models.AuditActionUpdate, Table: table, RecordID: recordID, Old: oldValue, New: newValue})
}

func (a *recordingAuditor) Delete(ctx context.Context, p models.Principal, table, recordID string, oldValue interface{}) {
	a.calls = append(a.calls, auditCall{Action: models.AuditActionDelete, Table: table, RecordID: recordID, Old: oldValue})
}

func adminPrincipal(companyID string) models.Principal {
	return models.Principal{UserID: "user-1", CompanyID: companyID, Role: models.RoleAdmin, DisplayName: "Admin"}
}
