package repository

import (
	"errors"
	"fmt"
	"testing"

	"car-rental/internal/errs"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func Test_MapError(t *testing.T) {
	tests := []struct {
		code string
		want error
	}{
		{pgerrcode.ExclusionViolation, errs.ErrConflict},
		{pgerrcode.UniqueViolation, errs.ErrConflict},
		{pgerrcode.SerializationFailure, errs.ErrConcurrencyConflict},
		{pgerrcode.DeadlockDetected, errs.ErrConcurrencyConflict},
		{pgerrcode.ForeignKeyViolation, errs.ErrInvalidInput},
		{pgerrcode.CheckViolation, errs.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			pgErr := &pgconn.PgError{Code: tt.code, ConstraintName: "reservations_no_overlap"}
			err := MapError(fmt.Errorf("insert reservation: %w", pgErr))

			assert.ErrorIs(t, err, tt.want)

			var got *pgconn.PgError
			assert.True(t, errors.As(err, &got), "original error stays reachable")
		})
	}
}

func Test_MapError_PassesThroughUnknown(t *testing.T) {
	plain := errors.New("connection reset")
	assert.Same(t, plain, MapError(plain))

	other := &pgconn.PgError{Code: pgerrcode.UndefinedTable}
	assert.Equal(t, error(other), MapError(other))
}
