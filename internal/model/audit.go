package model

import (
	"time"

	"github.com/google/uuid"
)

// Audit risk levels.
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// Audit event outcomes.
const (
	AuditSuccess = "success"
	AuditFailure = "failure"
	AuditError   = "error"
)

// AuditEntry is one append-only record of a lifecycle or payment event.
// Entries are never mutated; retention policy is handled outside this engine.
type AuditEntry struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EventType       string    `gorm:"type:varchar(40);not null;index"`
	Status          string    `gorm:"type:varchar(10);not null"`
	RiskLevel       string    `gorm:"type:varchar(10);not null;default:'low'"`
	OperatorID      *uuid.UUID `gorm:"type:uuid;index"`
	DrawerID        *uuid.UUID `gorm:"type:uuid;index"`
	SaleID          *uuid.UUID `gorm:"type:uuid"`
	PaymentMethodID *uuid.UUID `gorm:"type:uuid"`
	// Details is a JSON document with event-specific context. Decline reasons
	// live here and only here - they are never written to payment records.
	Details   string `gorm:"type:jsonb;default:'{}'"`
	CreatedAt time.Time
}
