package usecase

import (
	"context"
	"fmt"
	"time"

	"car-rental/internal/data/repository"
	"car-rental/internal/errs"

	"github.com/google/uuid"
)

// AvailabilityChecker answers whether a vehicle is free for a date range.
// It only reads.
type AvailabilityChecker struct {
	reservations repository.ReservationRepository
}

func NewAvailabilityChecker(reservations repository.ReservationRepository) *AvailabilityChecker {
	return &AvailabilityChecker{reservations: reservations}
}

// IsAvailable is true when no non-cancelled reservation of the vehicle
// overlaps [start, end).
func (c *AvailabilityChecker) IsAvailable(ctx context.Context, vehicleID uuid.UUID, start, end time.Time) (bool, error) {
	if !start.Before(end) {
		return false, errs.InvalidInput("start date %s must be before end date %s",
			start.Format(time.DateOnly), end.Format(time.DateOnly))
	}

	existing, err := c.reservations.FindActiveByVehicle(ctx, vehicleID)
	if err != nil {
		return false, fmt.Errorf("load reservations of vehicle %s: %w", vehicleID, err)
	}

	for _, r := range existing {
		if r.BlocksVehicle() && r.Overlaps(start, end) {
			return false, nil
		}
	}
	return true, nil
}
