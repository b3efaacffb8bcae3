package request

import "github.com/shopspring/decimal"

type RecordPaymentRequest struct {
	Amount               decimal.Decimal `json:"amount" validate:"required,gt=0"`
	Method               string          `json:"method" validate:"required,oneof=cash credit_card debit_card bank_transfer"`
	TransactionReference *string         `json:"transaction_reference,omitempty" validate:"omitempty,max=100"`
	Notes                *string         `json:"notes,omitempty" validate:"omitempty,max=1000"`
}
