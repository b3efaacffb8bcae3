package entity

import (
	"fmt"
	"time"

	"car-rental/internal/errs"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ReservationStatus string

const (
	ReservationStatusPending    ReservationStatus = "pending"
	ReservationStatusConfirmed  ReservationStatus = "confirmed"
	ReservationStatusInProgress ReservationStatus = "in_progress"
	ReservationStatusCompleted  ReservationStatus = "completed"
	ReservationStatusCancelled  ReservationStatus = "cancelled"
)

// ReservationStatuses lists every status in lifecycle order.
var ReservationStatuses = []ReservationStatus{
	ReservationStatusPending,
	ReservationStatusConfirmed,
	ReservationStatusInProgress,
	ReservationStatusCompleted,
	ReservationStatusCancelled,
}

func ParseReservationStatus(s string) (ReservationStatus, error) {
	for _, status := range ReservationStatuses {
		if string(status) == s {
			return status, nil
		}
	}
	return "", errs.InvalidInput("unknown reservation status %q", s)
}

// IsTerminal is true once the lifecycle has ended.
func (s ReservationStatus) IsTerminal() bool {
	return s == ReservationStatusCompleted || s == ReservationStatusCancelled
}

type Reservation struct {
	BaseNoDelete
	CustomerID   uuid.UUID         `db:"customer_id"`
	VehicleID    uuid.UUID         `db:"vehicle_id"`
	StartDate    time.Time         `db:"start_date"`
	EndDate      time.Time         `db:"end_date"`
	DailyRate    decimal.Decimal   `db:"daily_rate"`
	TotalAmount  decimal.Decimal   `db:"total_amount"`
	Status       ReservationStatus `db:"status"`
	QRCode       *string           `db:"qr_code"`
	Notes        *string           `db:"notes"`
	FinalMileage *int              `db:"final_mileage"`
}

// ReservationDetail is a reservation joined with the customer and vehicle
// fields needed for listings, QR payloads and notifications.
type ReservationDetail struct {
	Reservation
	CustomerName  string `db:"customer_name"`
	CustomerEmail string `db:"customer_email"`
	VehicleBrand  string `db:"vehicle_brand"`
	VehicleModel  string `db:"vehicle_model"`
	LicensePlate  string `db:"license_plate"`
}

func (d *ReservationDetail) VehicleInfo() string {
	return fmt.Sprintf("%s %s (%s)", d.VehicleBrand, d.VehicleModel, d.LicensePlate)
}

// NewReservation builds a pending reservation. The daily rate is captured
// as given and the total is priced once here.
func NewReservation(customerID, vehicleID uuid.UUID, startDate, endDate time.Time, dailyRate decimal.Decimal, notes *string, now time.Time) (*Reservation, error) {
	if customerID == uuid.Nil || vehicleID == uuid.Nil {
		return nil, errs.InvalidInput("customer and vehicle are required")
	}
	if !endDate.After(startDate) {
		return nil, errs.InvalidInput("end date %s must be after start date %s",
			endDate.Format(time.DateOnly), startDate.Format(time.DateOnly))
	}
	if dailyRate.IsNegative() {
		return nil, errs.InvalidInput("daily rate %s must not be negative", dailyRate)
	}

	return &Reservation{
		BaseNoDelete: BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		CustomerID:  customerID,
		VehicleID:   vehicleID,
		StartDate:   startDate,
		EndDate:     endDate,
		DailyRate:   dailyRate,
		TotalAmount: ComputeTotal(dailyRate, startDate, endDate),
		Status:      ReservationStatusPending,
		Notes:       notes,
	}, nil
}

func (r *Reservation) RentalDays() int {
	return RentalDays(r.StartDate, r.EndDate)
}

// Overlaps uses half-open ranges: a rental ending on the day another starts
// does not overlap it.
func (r *Reservation) Overlaps(start, end time.Time) bool {
	return r.StartDate.Before(end) && r.EndDate.After(start)
}

// BlocksVehicle is true for reservations that hold the vehicle's calendar.
func (r *Reservation) BlocksVehicle() bool {
	return r.Status != ReservationStatusCancelled
}

func (r *Reservation) Confirm(now time.Time) error {
	return r.transition("confirm", ReservationStatusConfirmed, now, ReservationStatusPending)
}

func (r *Reservation) Start(now time.Time) error {
	return r.transition("start", ReservationStatusInProgress, now, ReservationStatusConfirmed)
}

// Complete ends an in-progress rental and records the odometer reading.
func (r *Reservation) Complete(finalMileage int, now time.Time) error {
	if finalMileage < 0 {
		return errs.InvalidInput("final mileage %d must not be negative", finalMileage)
	}
	if err := r.transition("complete", ReservationStatusCompleted, now, ReservationStatusInProgress); err != nil {
		return err
	}
	r.FinalMileage = &finalMileage
	return nil
}

// Cancel is allowed before the rental starts only.
func (r *Reservation) Cancel(now time.Time) error {
	return r.transition("cancel", ReservationStatusCancelled, now, ReservationStatusPending, ReservationStatusConfirmed)
}

func (r *Reservation) SetQRCode(payload string, now time.Time) error {
	if r.Status.IsTerminal() {
		return &errs.StateError{Operation: "set QR code on", Current: string(r.Status)}
	}
	r.QRCode = &payload
	r.UpdatedAt = now
	return nil
}

func (r *Reservation) transition(op string, to ReservationStatus, now time.Time, from ...ReservationStatus) error {
	for _, allowed := range from {
		if r.Status == allowed {
			r.Status = to
			r.UpdatedAt = now
			return nil
		}
	}

	expected := make([]string, len(from))
	for i, s := range from {
		expected[i] = string(s)
	}
	return &errs.StateError{Operation: op, Current: string(r.Status), Expected: expected}
}
