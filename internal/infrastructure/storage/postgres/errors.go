package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"fifostock/internal/core/apperror"
)

// PostgreSQL error codes the repositories react to.
const (
	CodeUniqueViolation     = "23505"
	CodeForeignKeyViolation = "23503"
	CodeCheckViolation      = "23514"
	CodeLockNotAvailable    = "55P03"
	CodeSerialization       = "40001"
	CodeDeadlockDetected    = "40P01"
	CodeQueryCanceled       = "57014"
)

// PgCode returns the SQLSTATE of err, or "" if err is not a server error.
func PgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// MapError turns server errors that have a domain meaning into AppErrors.
// Other errors are returned unchanged.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperror.AsAppError(err); ok {
		return err
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case CodeUniqueViolation:
		return apperror.NewConflict("record already exists").
			WithDetail("constraint", pgErr.ConstraintName).
			WithCause(err)
	case CodeSerialization, CodeDeadlockDetected:
		return apperror.NewConcurrentModification(pgErr.TableName, pgErr.ConstraintName).WithCause(err)
	case CodeCheckViolation:
		return apperror.NewConsistencyFault("check constraint violated").
			WithDetail("constraint", pgErr.ConstraintName).
			WithCause(err)
	}
	return err
}

// ContentionOrError maps lock_not_available and a statement cancelled by
// statement_timeout while waiting for a row lock to ContentionTimeout for key.
func ContentionOrError(err error, key string) error {
	switch PgCode(err) {
	case CodeLockNotAvailable, CodeQueryCanceled:
		return apperror.NewContentionTimeout(key).WithCause(err)
	}
	return MapError(err)
}
