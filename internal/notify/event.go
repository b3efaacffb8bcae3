// Package notify delivers reservation lifecycle events off the request
// path. Delivery is best effort: failures are logged and never reach the
// operation that produced the event.
package notify

import (
	"time"

	"car-rental/internal/data/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type EventType string

const (
	EventReservationConfirmed EventType = "reservation.confirmed"
	EventReservationCancelled EventType = "reservation.cancelled"
	EventPaymentReceived      EventType = "payment.received"
)

// Event is the message handed to publishers. Consumers render the
// confirmation, cancellation and receipt emails from it.
type Event struct {
	ID            string          `json:"id"`
	Type          EventType       `json:"type"`
	OccurredAt    time.Time       `json:"occurred_at"`
	ReservationID string          `json:"reservation_id"`
	CustomerName  string          `json:"customer_name"`
	CustomerEmail string          `json:"customer_email"`
	Vehicle       string          `json:"vehicle"`
	StartDate     string          `json:"start_date"`
	EndDate       string          `json:"end_date"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Status        string          `json:"status"`
	Payment       *PaymentInfo    `json:"payment,omitempty"`
}

type PaymentInfo struct {
	ID            string          `json:"id"`
	Amount        decimal.Decimal `json:"amount"`
	Method        string          `json:"method"`
	TransactionID *string         `json:"transaction_reference,omitempty"`
}

func newEvent(kind EventType, d *entity.ReservationDetail, at time.Time) Event {
	return Event{
		ID:            uuid.NewString(),
		Type:          kind,
		OccurredAt:    at,
		ReservationID: d.ID.String(),
		CustomerName:  d.CustomerName,
		CustomerEmail: d.CustomerEmail,
		Vehicle:       d.VehicleInfo(),
		StartDate:     d.StartDate.Format(time.DateOnly),
		EndDate:       d.EndDate.Format(time.DateOnly),
		TotalAmount:   d.TotalAmount,
		Status:        string(d.Status),
	}
}
