package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"

	pkgerrors "github.com/angelmondragon/gearshare-backend/pkg/errors"
)

const pgUniqueViolation = "23505"

// Postgres SQLSTATEs for values a column refuses.
var pgRejectedValue = map[string]bool{
	"22001": true, // string_data_right_truncation
	"22003": true, // numeric_value_out_of_range
	"23514": true, // check_violation
}

// IsUniqueViolation reports whether err is a unique constraint violation on
// Postgres or sqlite. When constraintName is set, the constraint must match too.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}

	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) && pgxErr.Code == pgUniqueViolation {
		return constraintName == "" || pgxErr.ConstraintName == constraintName
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation {
		return constraintName == "" || pqErr.Constraint == constraintName
	}

	msg := err.Error()
	matched := errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
	if !matched {
		return false
	}
	return constraintName == "" || strings.Contains(msg, constraintName)
}

// IsRejectedValue reports whether the database refused a value because it is
// out of range, too long, or fails a CHECK constraint.
func IsRejectedValue(err error) bool {
	if err == nil {
		return false
	}
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgRejectedValue[pgxErr.Code]
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pgRejectedValue[string(pqErr.Code)]
	}
	return strings.Contains(err.Error(), "CHECK constraint failed")
}

// MapError converts persistence failures into typed errors: missing rows
// become NotFound, rejected values become validation errors, anything else
// is a dependency failure.
func MapError(err error, notFoundMessage string) error {
	if err == nil {
		return nil
	}
	if pkgerrors.As(err) != nil {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, notFoundMessage)
	}
	if IsRejectedValue(err) {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "value out of range for field")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unavailable")
}
