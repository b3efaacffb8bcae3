package response

import (
	"time"

	"car-rental/internal/data/entity"

	"github.com/shopspring/decimal"
)

type PaymentResponse struct {
	ID                   string               `json:"id"`
	ReservationID        string               `json:"reservation_id"`
	Amount               decimal.Decimal      `json:"amount"`
	Method               entity.PaymentMethod `json:"method"`
	Status               entity.PaymentStatus `json:"status"`
	PaymentDate          time.Time            `json:"payment_date"`
	TransactionReference *string              `json:"transaction_reference,omitempty"`
	Notes                *string              `json:"notes,omitempty"`
}

type ReservationPaymentsResponse struct {
	ReservationID    string            `json:"reservation_id"`
	TotalAmount      decimal.Decimal   `json:"total_amount"`
	TotalPaid        decimal.Decimal   `json:"total_paid"`
	RemainingBalance decimal.Decimal   `json:"remaining_balance"`
	FullyPaid        bool              `json:"fully_paid"`
	Payments         []PaymentResponse `json:"payments"`
}

func PaymentToResponse(p *entity.Payment) PaymentResponse {
	return PaymentResponse{
		ID:                   p.ID.String(),
		ReservationID:        p.ReservationID.String(),
		Amount:               p.Amount,
		Method:               p.Method,
		Status:               p.Status,
		PaymentDate:          p.PaymentDate,
		TransactionReference: p.TransactionReference,
		Notes:                p.Notes,
	}
}
