package dto

import "github.com/shopspring/decimal"

// CardData carries raw card input for a single authorization attempt.
// The CVV is used for the gateway call only and is never persisted or logged.
type CardData struct {
	Number     string `json:"number"      validate:"required,min=12,max=19,numeric"`
	Expiry     string `json:"expiry"      validate:"required,len=5"` // MM/YY
	HolderName string `json:"holder_name" validate:"required,min=2"`
	CVV        string `json:"cvv"         validate:"required,min=3,max=4,numeric"`
}

type MobileData struct {
	PhoneNumber string `json:"phone_number" validate:"required,min=9,max=15,numeric"`
}

type CashData struct {
	AmountReceived decimal.Decimal `json:"amount_received" validate:"required,gt=0"`
}

type ProcessPaymentRequest struct {
	SaleID          string          `json:"sale_id"           validate:"required,uuid"`
	PaymentMethodID string          `json:"payment_method_id" validate:"required,uuid"`
	Amount          decimal.Decimal `json:"amount"            validate:"required,gt=0"`
	Type            string          `json:"type"              validate:"required,oneof=cash card mobile"`
	Cash            *CashData       `json:"cash"`
	Card            *CardData       `json:"card"`
	Mobile          *MobileData     `json:"mobile"`
}

type ProcessPaymentResponse struct {
	Success       bool   `json:"success"`
	PaymentID     string `json:"payment_id,omitempty"`
	TransactionID string `json:"transaction_id,omitempty"`
	// ChangeDue is set for cash payments only.
	ChangeDue *decimal.Decimal `json:"change_due,omitempty"`
	Error     string           `json:"error,omitempty"`
}
