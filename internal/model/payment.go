package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment record statuses (terminal outcomes only - a record is written once
// the processor reaches a terminal state and never mutated).
const (
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
	PaymentError     = "error"
)

// Payment method categories. The directory carries an explicit category so
// reporting never has to guess from the display name.
const (
	MethodCash   = "cash"
	MethodCard   = "card"
	MethodMobile = "mobile"
	MethodOther  = "other"
)

// PaymentMethod is one row of the payment-method directory. The directory is
// owned by the back office; this engine only reads it.
type PaymentMethod struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name     string    `gorm:"not null;uniqueIndex"`
	Category string    `gorm:"type:varchar(20);not null;default:'other'"`
	Active   bool      `gorm:"not null;default:true"`
}

// PaymentRecord is one completed or attempted payment against a sale.
// Card data itself is never stored: CardToken is a one-way token and
// EncryptedMetadata holds only display fields (masked number, expiry, holder)
// sealed with an AEAD whose key lives outside the database.
type PaymentRecord struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID          uuid.UUID       `gorm:"type:uuid;index;not null"`
	PaymentMethodID uuid.UUID       `gorm:"type:uuid;not null"`
	Amount          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ReferenceNumber string          `gorm:"not null"`
	Status          string          `gorm:"type:varchar(20);not null"`
	// TransactionID is the gateway reference for card/mobile authorizations.
	TransactionID *string
	// Card payments only.
	CardToken         *string
	EncryptedMetadata []byte `gorm:"type:bytea"`
	MetadataNonce     []byte `gorm:"type:bytea"`
	// Mobile payments only - first 3 / last 3 digits visible.
	MaskedPhoneNumber *string
	// Cash payments only.
	ReceivedAmount *decimal.Decimal `gorm:"type:decimal(12,2)"`
	CreatedAt      time.Time

	Method *PaymentMethod `gorm:"foreignKey:PaymentMethodID"`
}
