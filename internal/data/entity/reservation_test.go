package entity_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"car-rental/internal/data/entity"
	"car-rental/internal/errs"
)

func date(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

var now = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

func newPending(t *testing.T) *entity.Reservation {
	t.Helper()
	r, err := entity.NewReservation(uuid.New(), uuid.New(), date("2024-03-01"), date("2024-03-04"),
		decimal.NewFromInt(50), nil, now)
	require.NoError(t, err)
	return r
}

func Test_NewReservation_PricesOnce(t *testing.T) {
	r := newPending(t)

	assert.Equal(t, entity.ReservationStatusPending, r.Status)
	assert.Equal(t, 3, r.RentalDays())
	assert.True(t, decimal.NewFromInt(150).Equal(r.TotalAmount), "total %s", r.TotalAmount)
	assert.NotEqual(t, uuid.Nil, r.ID)
	assert.Equal(t, now, r.CreatedAt)
}

func Test_NewReservation_RejectsBadRange(t *testing.T) {
	tests := []struct {
		name       string
		start, end time.Time
	}{
		{"end before start", date("2024-03-04"), date("2024-03-01")},
		{"same day", date("2024-03-01"), date("2024-03-01")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := entity.NewReservation(uuid.New(), uuid.New(), tt.start, tt.end, decimal.NewFromInt(50), nil, now)
			assert.ErrorIs(t, err, errs.ErrInvalidInput)
		})
	}
}

func Test_Reservation_HappyPath(t *testing.T) {
	r := newPending(t)
	later := now.Add(time.Hour)

	require.NoError(t, r.Confirm(later))
	assert.Equal(t, later, r.UpdatedAt)
	require.NoError(t, r.Start(later))
	require.NoError(t, r.Complete(12500, later))

	assert.Equal(t, entity.ReservationStatusCompleted, r.Status)
	require.NotNil(t, r.FinalMileage)
	assert.Equal(t, 12500, *r.FinalMileage)
}

func Test_Reservation_CancelThenConfirmFails(t *testing.T) {
	r := newPending(t)

	require.NoError(t, r.Cancel(now))
	err := r.Confirm(now)

	assert.ErrorIs(t, err, errs.ErrInvalidState)
	assert.Equal(t, entity.ReservationStatusCancelled, r.Status)
}

func Test_Reservation_CancelInProgressFails(t *testing.T) {
	r := newPending(t)
	require.NoError(t, r.Confirm(now))
	require.NoError(t, r.Start(now))

	err := r.Cancel(now)

	assert.ErrorIs(t, err, errs.ErrInvalidState)
	assert.Equal(t, entity.ReservationStatusInProgress, r.Status)
}

func Test_Reservation_CompletePendingReportsExpected(t *testing.T) {
	r := newPending(t)

	err := r.Complete(100, now)

	var stateErr *errs.StateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, "pending", stateErr.Current)
	assert.Equal(t, []string{"in_progress"}, stateErr.Expected)
	assert.Nil(t, r.FinalMileage)
}

func Test_Reservation_ConfirmTwiceFails(t *testing.T) {
	r := newPending(t)

	require.NoError(t, r.Confirm(now))
	assert.ErrorIs(t, r.Confirm(now), errs.ErrInvalidState)
}

func Test_Reservation_TerminalStatesAreFinal(t *testing.T) {
	completed := newPending(t)
	require.NoError(t, completed.Confirm(now))
	require.NoError(t, completed.Start(now))
	require.NoError(t, completed.Complete(10, now))

	cancelled := newPending(t)
	require.NoError(t, cancelled.Cancel(now))

	for _, r := range []*entity.Reservation{completed, cancelled} {
		status := r.Status
		assert.ErrorIs(t, r.Confirm(now), errs.ErrInvalidState)
		assert.ErrorIs(t, r.Start(now), errs.ErrInvalidState)
		assert.ErrorIs(t, r.Complete(20, now), errs.ErrInvalidState)
		assert.ErrorIs(t, r.Cancel(now), errs.ErrInvalidState)
		assert.ErrorIs(t, r.SetQRCode("payload", now), errs.ErrInvalidState)
		assert.Equal(t, status, r.Status)
	}
}

func Test_Reservation_SetQRCodeRoundTrip(t *testing.T) {
	r := newPending(t)

	require.NoError(t, r.SetQRCode("iVBORw0KGgo=", now))
	require.NotNil(t, r.QRCode)
	assert.Equal(t, "iVBORw0KGgo=", *r.QRCode)
	assert.Equal(t, entity.ReservationStatusPending, r.Status)

	require.NoError(t, r.SetQRCode("replaced", now))
	assert.Equal(t, "replaced", *r.QRCode)
}

func Test_Reservation_Overlaps(t *testing.T) {
	existing := &entity.Reservation{StartDate: date("2024-01-10"), EndDate: date("2024-01-15")}

	assert.False(t, existing.Overlaps(date("2024-01-15"), date("2024-01-20")), "boundary touch")
	assert.False(t, existing.Overlaps(date("2024-01-05"), date("2024-01-10")), "boundary touch before")
	assert.True(t, existing.Overlaps(date("2024-01-12"), date("2024-01-18")))
	assert.True(t, existing.Overlaps(date("2024-01-01"), date("2024-01-31")), "enclosing")
	assert.True(t, existing.Overlaps(date("2024-01-11"), date("2024-01-12")), "enclosed")
}

func Test_ParseReservationStatus(t *testing.T) {
	s, err := entity.ParseReservationStatus("in_progress")
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationStatusInProgress, s)

	_, err = entity.ParseReservationStatus("InProgress")
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
}
