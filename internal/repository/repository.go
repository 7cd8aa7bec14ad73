// Package repository contains the sqlx persistence layer. Mutations are
// single statements backed by unique indexes; dependency-guarded hard
// deletes run their scan and delete inside one transaction.
package repository

import (
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/campuskit/academy-api/internal/tenant"
)

// ErrDuplicate is returned when a unique index rejects an insert or update.
// The database constraint is the backstop behind the services' check-then-act
// uniqueness validation.
var ErrDuplicate = errors.New("duplicate key value")

const uniqueViolation = "23505"

func translateError(err error, context string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return ErrDuplicate
	}
	return fmt.Errorf("%s: %w", context, err)
}

// scopeClause appends a tenant filter for the given column. An unbounded
// scope adds nothing; an empty scope produces a condition matching no rows.
func scopeClause(scope tenant.Scope, column string, args *[]interface{}) string {
	if scope.All() {
		return ""
	}
	*args = append(*args, pq.Array(scope.IDs()))
	return fmt.Sprintf("%s = ANY($%d)", column, len(*args))
}
