package dbpkg

import (
	"context"
	"errors"

	"github.com/lib/pq"
)

// PostgreSQL error codes the repositories react to.
const (
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeLockNotAvailable    = "55P03"
	codeQueryCanceled       = "57014"
)

// IsTimeout reports whether err means the statement gave up waiting,
// either on a lock or on the caller's context deadline.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == codeLockNotAvailable || pqErr.Code == codeQueryCanceled
	}

	return false
}

// ViolatedConstraint returns the constraint named by a foreign key or check violation.
func ViolatedConstraint(err error) (string, bool) {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return "", false
	}

	if pqErr.Code != codeForeignKeyViolation && pqErr.Code != codeCheckViolation {
		return "", false
	}

	return pqErr.Constraint, true
}
