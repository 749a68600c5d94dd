package postgres

import (
	"Snapfeed/internal/core/posts"
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"log"
	"net"

	"github.com/lib/pq"
)

// PostgreSQL error codes and classes the repositories react to
const (
	pqForeignKeyViolation = pq.ErrorCode("23503")
	pqUniqueViolation     = pq.ErrorCode("23505")
	pqCheckViolation      = pq.ErrorCode("23514")

	pqClassConnection        = pq.ErrorClass("08")
	pqClassResources         = pq.ErrorClass("53")
	pqClassOperatorIntervene = pq.ErrorClass("57")
	pqQueryCanceled          = pq.ErrorCode("57014")
)

// pqCode returns the PostgreSQL error code of err, or "" if err did not come
// from the server.
func pqCode(err error) pq.ErrorCode {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code
	}
	return ""
}

// dbError wraps a database failure with the operation that hit it.
// Cancellation and deadline expiry keep the context error in the chain, and
// connectivity failures are reported as posts.ErrStorageUnavailable.
func dbError(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s: %w: %v", op, ctxErr, err)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, err)
	}
	if isUnavailable(err) {
		return fmt.Errorf("%s: %w: %v", op, posts.ErrStorageUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isUnavailable(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case pqClassConnection, pqClassResources:
			return true
		case pqClassOperatorIntervene:
			return pqErr.Code != pqQueryCanceled
		}
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// rollback is deferred after BeginTx; it is a no-op once the transaction
// has been committed.
func rollback(tx *sql.Tx) {
	if rollbackErr := tx.Rollback(); rollbackErr != nil && rollbackErr != sql.ErrTxDone {
		log.Printf("Failed to rollback transaction: %v", rollbackErr)
	}
}
