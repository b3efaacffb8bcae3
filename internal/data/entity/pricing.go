package entity

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

const day = 24 * time.Hour

// RentalDays is the number of billed days between start and end: the
// difference rounded up to whole days, never less than one.
func RentalDays(start, end time.Time) int {
	days := int(math.Ceil(end.Sub(start).Hours() / day.Hours()))
	if days < 1 {
		return 1
	}
	return days
}

// ComputeTotal prices a rental as dailyRate times RentalDays, rounded to cents.
func ComputeTotal(dailyRate decimal.Decimal, start, end time.Time) decimal.Decimal {
	return dailyRate.Mul(decimal.NewFromInt(int64(RentalDays(start, end)))).Round(2)
}
