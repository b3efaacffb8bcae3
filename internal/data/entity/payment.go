package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodCreditCard   PaymentMethod = "credit_card"
	PaymentMethodDebitCard    PaymentMethod = "debit_card"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
)

type Payment struct {
	BaseNoDelete
	ReservationID        uuid.UUID       `db:"reservation_id"`
	Amount               decimal.Decimal `db:"amount"`
	Method               PaymentMethod   `db:"method"`
	Status               PaymentStatus   `db:"status"`
	PaymentDate          time.Time       `db:"payment_date"`
	TransactionReference *string         `db:"transaction_reference"`
	Notes                *string         `db:"notes"`
}

// TotalPaid sums the completed payments.
func TotalPaid(payments []*Payment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		if p.Status == PaymentStatusCompleted {
			total = total.Add(p.Amount)
		}
	}
	return total
}

// IsFullyPaid reports whether completed payments cover amount.
func IsFullyPaid(amount decimal.Decimal, payments []*Payment) bool {
	return TotalPaid(payments).GreaterThanOrEqual(amount)
}
