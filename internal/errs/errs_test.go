package errs_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"car-rental/internal/errs"
)

func TestStateError_MatchesInvalidState(t *testing.T) {
	err := fmt.Errorf("complete: %w", &errs.StateError{
		Operation: "complete",
		Current:   "pending",
		Expected:  []string{"in_progress"},
	})

	assert.ErrorIs(t, err, errs.ErrInvalidState)
	assert.NotErrorIs(t, err, errs.ErrNotFound)

	var stateErr *errs.StateError
	assert.True(t, errors.As(err, &stateErr))
	assert.Equal(t, "pending", stateErr.Current)
	assert.Contains(t, err.Error(), "expected in_progress")
}

func TestHelpers_WrapSentinels(t *testing.T) {
	id := uuid.New()

	assert.ErrorIs(t, errs.NotFound("reservation", id), errs.ErrNotFound)
	assert.Contains(t, errs.NotFound("reservation", id).Error(), id.String())
	assert.ErrorIs(t, errs.InvalidInput("end %s before start", "x"), errs.ErrInvalidInput)
	assert.ErrorIs(t, errs.Conflict("vehicle busy"), errs.ErrConflict)
	assert.Equal(t, "conflict: vehicle busy", errs.Conflict("vehicle busy").Error())
}

func TestValidationError_IsInvalidInput(t *testing.T) {
	err := &errs.ValidationError{Fields: map[string]string{
		"start_date": "start_date is required",
		"amount":     "amount must be greater than 0",
	}}

	assert.ErrorIs(t, err, errs.ErrInvalidInput)
	assert.Equal(t, "validation failed: amount must be greater than 0; start_date is required", err.Error())
}
