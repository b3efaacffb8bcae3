package repository

import (
	"errors"
	"fmt"

	"car-rental/internal/errs"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// MapError classifies PostgreSQL errors into the service error kinds.
// Unknown errors are returned unchanged.
func MapError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgerrcode.ExclusionViolation:
		return fmt.Errorf("%w: vehicle is already booked for overlapping dates: %w", errs.ErrConflict, err)
	case pgerrcode.UniqueViolation:
		return fmt.Errorf("%w: %s: %w", errs.ErrConflict, pgErr.ConstraintName, err)
	case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected:
		return fmt.Errorf("%w: %w", errs.ErrConcurrencyConflict, err)
	case pgerrcode.ForeignKeyViolation:
		return fmt.Errorf("%w: referenced record does not exist: %w", errs.ErrInvalidInput, err)
	case pgerrcode.CheckViolation:
		return fmt.Errorf("%w: %s: %w", errs.ErrInvalidInput, pgErr.ConstraintName, err)
	}
	return err
}
