package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/campuskit/academy-api/internal/models"
	"github.com/campuskit/academy-api/internal/tenant"
	appErrors "github.com/campuskit/academy-api/pkg/errors"
)

type auditLogRepository interface {
	List(ctx context.Context, scope tenant.Scope, filter models.AuditLogFilter) ([]models.AuditLog, int, error)
}

// AuditLogService exposes the audit trail, scoped to the principal's tenants.
type AuditLogService struct {
	repo   auditLogRepository
	scopes scopeResolver
	logger *zap.Logger
}

// NewAuditLogService constructs the audit log service.
func NewAuditLogService(repo auditLogRepository, scopes scopeResolver, logger *zap.Logger) *AuditLogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditLogService{repo: repo, scopes: scopes, logger: logger}
}

// List returns audit entries within scope, newest first.
func (s *AuditLogService) List(ctx context.Context, p models.Principal, filter models.AuditLogFilter) ([]models.AuditLog, *models.Pagination, error) {
	scope, err := s.scopes.Resolve(ctx, p)
	if err != nil {
		return nil, nil, err
	}
	logs, total, err := s.repo.List(ctx, scope, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list audit logs")
	}
	return logs, paginationFor(filter.Page, filter.PageSize, total), nil
}
