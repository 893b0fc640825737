package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type OpenDrawerRequest struct {
	OpeningBalance decimal.Decimal `json:"opening_balance" validate:"min=0"`
	Notes          *string         `json:"notes"`
}

type CloseDrawerRequest struct {
	ActualBalance decimal.Decimal `json:"actual_balance" validate:"min=0"`
	Notes         *string         `json:"notes"`
}

type ReconcileDrawerRequest struct {
	ActualBalance decimal.Decimal `json:"actual_balance" validate:"min=0"`
	Notes         *string         `json:"notes"`
}

type ManualTransactionRequest struct {
	Type string `json:"type" validate:"required,oneof=payin payout adjustment"`
	// Amount is always submitted positive; payouts are stored negated and
	// adjustments carry an explicit direction flag.
	Amount      decimal.Decimal `json:"amount"      validate:"required,gt=0"`
	Negative    bool            `json:"negative"`
	Description string          `json:"description" validate:"required,min=3"`
	Notes       *string         `json:"notes"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type DrawerResponse struct {
	ID              string          `json:"id"`
	OperatorID      string          `json:"operator_id"`
	Status          string          `json:"status"`
	OpeningBalance  decimal.Decimal  `json:"opening_balance"`
	CurrentBalance  decimal.Decimal  `json:"current_balance"`
	ExpectedBalance decimal.Decimal  `json:"expected_balance"`
	DeclaredBalance *decimal.Decimal `json:"declared_balance,omitempty"`
	Notes           *string         `json:"notes"`
	OpenedAt        string          `json:"opened_at"`
	ClosedAt        *string         `json:"closed_at"`
	ReconciledAt    *string         `json:"reconciled_at"`
	ReconciledBy    *string         `json:"reconciled_by"`
}

type LedgerEntryResponse struct {
	ID            string          `json:"id"`
	DrawerID      string          `json:"drawer_id"`
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	BalanceBefore decimal.Decimal `json:"balance_before"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	Notes         *string         `json:"notes"`
	CreatedAt     string          `json:"created_at"`
}

type ReconcileResponse struct {
	Drawer      DrawerResponse  `json:"drawer"`
	Discrepancy decimal.Decimal `json:"discrepancy"`
	// Classification: normal (|d| ≤ 1% of expected), warning (≤ 5%),
	// critical (> 5%).
	Classification string `json:"classification"`
}

type DrawerListResponse struct {
	Data  []DrawerResponse `json:"data"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}
