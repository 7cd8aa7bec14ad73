// Package service implements the tenant-scoped entity access and mutation
// protocol. Every operation receives the acting principal explicitly and
// resolves its tenant scope before touching the store.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/campuskit/academy-api/internal/models"
	"github.com/campuskit/academy-api/internal/tenant"
	appErrors "github.com/campuskit/academy-api/pkg/errors"
)

type scopeResolver interface {
	Resolve(ctx context.Context, p models.Principal) (tenant.Scope, error)
}

type auditRecorder interface {
	Insert(ctx context.Context, p models.Principal, table, recordID string, newValue interface{})
	Update(ctx context.Context, p models.Principal, table, recordID string, oldValue, newValue interface{})
	Delete(ctx context.Context, p models.Principal, table, recordID string, oldValue interface{})
}

// normalizeCode uppercases a code before storage and collision checks.
func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// validationError converts validator output into a single error listing
// every failed field, not just the first.
func validationError(message string, err error) *appErrors.Error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]appErrors.FieldViolation, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, appErrors.FieldViolation{
				Field:   fe.Field(),
				Message: violationMessage(fe),
			})
		}
		return appErrors.Validation(message, fields)
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}

func violationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

func paginationFor(page, size, total int) *models.Pagination {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	return &models.Pagination{Page: page, PageSize: size, TotalCount: total}
}
