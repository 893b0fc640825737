package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Drawer statuses. A drawer only ever moves forward:
// open → closed → reconciled. It is never deleted or reopened.
const (
	DrawerOpen       = "open"
	DrawerClosed     = "closed"
	DrawerReconciled = "reconciled"
)

// Ledger entry types. Amounts are signed: cash_received and payin are
// positive, change_given and payout are negative, adjustment carries the
// sign of the reconciliation discrepancy.
const (
	EntryOpeningFloat = "opening_float"
	EntryCashReceived = "cash_received"
	EntryChangeGiven  = "change_given"
	EntryAdjustment   = "adjustment"
	EntryPayout       = "payout"
	EntryPayin        = "payin"
)

// Drawer is one operator's cash register state for one shift.
// CurrentBalance is the running ledger total; ExpectedBalance is what the
// drawer should contain given all recorded cash flow. They diverge only
// through untracked physical cash movement, settled by reconciliation.
type Drawer struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OperatorID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Status          string          `gorm:"type:varchar(20);not null;default:'open'"`
	OpeningBalance  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CurrentBalance  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ExpectedBalance decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// DeclaredBalance is the amount the operator counted at close. The running
	// balance only ever moves through ledger entries, so the counted amount is
	// recorded here and settled by the reconciliation adjustment.
	DeclaredBalance *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Notes           *string
	OpenedAt        time.Time
	ClosedAt        *time.Time
	ReconciledAt    *time.Time
	ReconciledBy    *uuid.UUID `gorm:"type:uuid"`

	Entries []LedgerEntry `gorm:"foreignKey:DrawerID"`
}

// LedgerEntry is an immutable signed cash movement in a drawer's ledger.
// Entries are NEVER modified or deleted - corrections are new adjustment
// entries. For every entry BalanceAfter = BalanceBefore + Amount, and
// consecutive entries chain: entry[n].BalanceBefore == entry[n-1].BalanceAfter.
type LedgerEntry struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DrawerID      uuid.UUID       `gorm:"type:uuid;index;not null"`
	OperatorID    uuid.UUID       `gorm:"type:uuid;not null"`
	Type          string          `gorm:"type:varchar(20);not null"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Description   string          `gorm:"not null"`
	BalanceBefore decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	BalanceAfter  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Notes         *string
	CreatedAt     time.Time
}

// CashAffecting reports whether an entry type moves the expected balance.
// Adjustments only correct the actual balance at reconciliation; they do not
// represent recorded cash flow.
func CashAffecting(entryType string) bool {
	return entryType != EntryAdjustment
}
