package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/custodia-labs/taskdash/internal/core/domain"
)

// PostgreSQL error codes
const (
	uniqueViolationCode  = "23505"
	checkViolationCode   = "23514"
	notNullViolationCode = "23502"
	// class 08: connection exceptions
	connectionExceptionClass = "08"
)

// MapError maps a database error to a domain error, keeping the original
// in the chain. Errors without a specific mapping are storage failures.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", domain.ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == uniqueViolationCode:
			return fmt.Errorf("%w: %w", domain.ErrAlreadyExists, err)
		case pgErr.Code == checkViolationCode:
			return fmt.Errorf("%w: check constraint violation (%s): %w",
				domain.ErrInvalidInput, pgErr.ConstraintName, err)
		case pgErr.Code == notNullViolationCode:
			return fmt.Errorf("%w: not null violation (%s): %w",
				domain.ErrInvalidInput, pgErr.ColumnName, err)
		case len(pgErr.Code) == 5 && pgErr.Code[:2] == connectionExceptionClass:
			return fmt.Errorf("%w: connection exception: %w", domain.ErrStorage, err)
		}
	}

	return fmt.Errorf("%w: %w", domain.ErrStorage, err)
}

// IsUniqueViolation reports whether err is a unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
