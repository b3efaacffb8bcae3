package repository

import (
	"testing"
	"time"

	"car-rental/internal/data/entity"
	"car-rental/internal/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ReservationFilter_DefaultsToCreatedAtDesc(t *testing.T) {
	query, args, err := ReservationFilter{Descending: true, Limit: 10}.selectQuery()
	require.NoError(t, err)

	assert.Contains(t, query, "ORDER BY r.created_at DESC, r.id DESC")
	assert.Contains(t, query, "LIMIT 10")
	assert.Contains(t, query, "OFFSET 0")
	assert.Empty(t, args)
}

func Test_ReservationFilter_AllFilters(t *testing.T) {
	status := entity.ReservationStatusConfirmed
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	minAmount := decimal.NewFromInt(100)
	maxAmount := decimal.NewFromInt(500)

	f := ReservationFilter{
		Term:          "toyota",
		Status:        &status,
		StartDateFrom: &from,
		StartDateTo:   &to,
		MinAmount:     &minAmount,
		MaxAmount:     &maxAmount,
		SortBy:        SortByTotalAmount,
		Limit:         20,
		Offset:        40,
	}

	query, args, err := f.selectQuery()
	require.NoError(t, err)

	assert.Contains(t, query, "v.brand ILIKE")
	assert.Contains(t, query, "v.license_plate ILIKE")
	assert.Contains(t, query, "c.first_name || ' ' || c.last_name ILIKE")
	assert.Contains(t, query, "r.status = ")
	assert.Contains(t, query, "r.start_date >= ")
	assert.Contains(t, query, "r.start_date <= ")
	assert.Contains(t, query, "r.total_amount >= ")
	assert.Contains(t, query, "r.total_amount <= ")
	assert.Contains(t, query, "ORDER BY r.total_amount ASC, r.id ASC")
	assert.NotContains(t, query, "?")

	assert.Contains(t, args, "%toyota%")
	assert.Contains(t, args, "confirmed")
	assert.Contains(t, args, from)
	assert.Contains(t, args, to)
	assert.Len(t, args, 9)
}

func Test_ReservationFilter_CountSharesWhere(t *testing.T) {
	status := entity.ReservationStatusPending
	f := ReservationFilter{Term: "ab", Status: &status, Limit: 10}

	query, args, err := f.countQuery()
	require.NoError(t, err)

	assert.Contains(t, query, "SELECT COUNT(*)")
	assert.NotContains(t, query, "ORDER BY")
	assert.NotContains(t, query, "LIMIT")
	assert.Len(t, args, 5)
}

func Test_ReservationFilter_UnknownSortKey(t *testing.T) {
	_, _, err := ReservationFilter{SortBy: "customer_id; DROP TABLE reservations"}.selectQuery()

	assert.ErrorIs(t, err, errs.ErrInvalidInput)
}

func Test_ReservationFilter_EscapesLikeWildcards(t *testing.T) {
	_, args, err := ReservationFilter{Term: "50%_off"}.selectQuery()
	require.NoError(t, err)

	assert.Contains(t, args, `%50\%\_off%`)
}
