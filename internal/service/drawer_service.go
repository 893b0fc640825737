package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Micjeal/NEXTGEN-POS-sub002/internal/dto"
	"github.com/Micjeal/NEXTGEN-POS-sub002/internal/model"
	"github.com/Micjeal/NEXTGEN-POS-sub002/internal/repository"
	"github.com/Micjeal/NEXTGEN-POS-sub002/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Discrepancy classifications returned by reconciliation.
const (
	DiscrepancyNormal   = "normal"
	DiscrepancyWarning  = "warning"
	DiscrepancyCritical = "critical"
)

var (
	// ErrAlreadyOpen: an operator can have at most one open drawer.
	ErrAlreadyOpen = errors.New("operator already has an open drawer")
	// ErrDrawerNotClosed: reconciliation requires a closed drawer.
	ErrDrawerNotClosed = errors.New("drawer must be closed before reconciliation")
	// ErrNotesRequired: a critical discrepancy cannot be reconciled silently.
	ErrNotesRequired = errors.New("critical discrepancy requires supervisor notes")
	// ErrZeroAmount rejects no-op manual transactions.
	ErrZeroAmount = errors.New("amount must not be zero")
)

type DrawerService interface {
	Open(ctx context.Context, operatorID uuid.UUID, req dto.OpenDrawerRequest) (*dto.DrawerResponse, error)
	Close(ctx context.Context, operatorID, drawerID uuid.UUID, req dto.CloseDrawerRequest) (*dto.DrawerResponse, error)
	Reconcile(ctx context.Context, supervisorID, drawerID uuid.UUID, req dto.ReconcileDrawerRequest) (*dto.ReconcileResponse, error)
	AddManualTransaction(ctx context.Context, operatorID, drawerID uuid.UUID, req dto.ManualTransactionRequest) (*dto.LedgerEntryResponse, error)
	// FindOpen is used by the payment processor and the dashboard read model.
	FindOpen(ctx context.Context, operatorID uuid.UUID) (*model.Drawer, error)
	History(ctx context.Context, page, limit int) (*dto.DrawerListResponse, error)
}

type drawerService struct {
	repo       repository.DrawerRepository
	audit      AuditLogger
	dispatcher *worker.Dispatcher
	// supervisorEmail receives critical-discrepancy notifications.
	supervisorEmail string
}

func NewDrawerService(repo repository.DrawerRepository, audit AuditLogger, dispatcher *worker.Dispatcher, supervisorEmail string) DrawerService {
	return &drawerService{repo: repo, audit: audit, dispatcher: dispatcher, supervisorEmail: supervisorEmail}
}

// ── Open ─────────────────────────────────────────────────────────────────────

func (s *drawerService) Open(ctx context.Context, operatorID uuid.UUID, req dto.OpenDrawerRequest) (*dto.DrawerResponse, error) {
	if req.OpeningBalance.IsNegative() {
		return nil, errors.New("opening balance must not be negative")
	}

	if existing, err := s.repo.FindOpenByOperator(ctx, operatorID); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrAlreadyOpen
	}

	// The drawer starts at zero so the opening_float entry begins the ledger
	// chain; after the append current == expected == opening balance.
	d := &model.Drawer{
		OperatorID:      operatorID,
		Status:          model.DrawerOpen,
		OpeningBalance:  req.OpeningBalance,
		CurrentBalance:  decimal.Zero,
		ExpectedBalance: decimal.Zero,
		Notes:           req.Notes,
		OpenedAt:        time.Now(),
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}

	if req.OpeningBalance.IsPositive() {
		if _, err := s.repo.AppendEntry(ctx, d.ID, repository.NewEntry{
			OperatorID:  operatorID,
			Type:        model.EntryOpeningFloat,
			Amount:      req.OpeningBalance,
			Description: "opening float",
		}); err != nil {
			return nil, err
		}
	}

	opened, err := s.repo.FindByID(ctx, d.ID)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, worker.AuditJobPayload{
		EventType:  "drawer_opened",
		Status:     model.AuditSuccess,
		RiskLevel:  model.RiskLow,
		OperatorID: &operatorID,
		DrawerID:   &d.ID,
		Details:    map[string]interface{}{"opening_balance": req.OpeningBalance.String()},
	})

	resp := drawerToResponse(opened)
	return &resp, nil
}

// ── Close ────────────────────────────────────────────────────────────────────
// Closing records the counted balance and timestamps the close. The running
// balance only ever moves through ledger entries, so the gap between it and
// the count stays open until the reconciliation adjustment settles it.

func (s *drawerService) Close(ctx context.Context, operatorID, drawerID uuid.UUID, req dto.CloseDrawerRequest) (*dto.DrawerResponse, error) {
	d, err := s.repo.FindByID(ctx, drawerID)
	if err != nil {
		return nil, err
	}
	// A foreign drawer is indistinguishable from a missing one to the caller.
	if d.OperatorID != operatorID {
		return nil, repository.ErrDrawerNotFound
	}
	if d.Status != model.DrawerOpen {
		return nil, repository.ErrDrawerNotOpen
	}

	now := time.Now()
	declared := req.ActualBalance
	d.DeclaredBalance = &declared
	d.Status = model.DrawerClosed
	d.ClosedAt = &now
	if req.Notes != nil {
		d.Notes = req.Notes
	}
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, worker.AuditJobPayload{
		EventType:  "drawer_closed",
		Status:     model.AuditSuccess,
		RiskLevel:  model.RiskLow,
		OperatorID: &operatorID,
		DrawerID:   &drawerID,
		Details: map[string]interface{}{
			"declared_balance": req.ActualBalance.String(),
			"expected_balance": d.ExpectedBalance.String(),
		},
	})

	resp := drawerToResponse(d)
	return &resp, nil
}

// ── Reconcile ────────────────────────────────────────────────────────────────

func (s *drawerService) Reconcile(ctx context.Context, supervisorID, drawerID uuid.UUID, req dto.ReconcileDrawerRequest) (*dto.ReconcileResponse, error) {
	d, err := s.repo.FindByID(ctx, drawerID)
	if err != nil {
		return nil, err
	}
	if d.Status != model.DrawerClosed {
		return nil, ErrDrawerNotClosed
	}

	discrepancy := req.ActualBalance.Sub(d.ExpectedBalance)
	classification := classifyDiscrepancy(discrepancy, d.ExpectedBalance)

	if classification == DiscrepancyCritical && (req.Notes == nil || *req.Notes == "") {
		return nil, ErrNotesRequired
	}

	if !discrepancy.IsZero() {
		// The adjustment is the one entry type allowed on a closed drawer:
		// it corrects the running balance to the counted amount.
		if _, err := s.repo.AppendEntry(ctx, drawerID, repository.NewEntry{
			OperatorID:  supervisorID,
			Type:        model.EntryAdjustment,
			Amount:      discrepancy,
			Description: "reconciliation adjustment",
			Notes:       req.Notes,
		}); err != nil {
			return nil, err
		}
		if d, err = s.repo.FindByID(ctx, drawerID); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	d.Status = model.DrawerReconciled
	d.ReconciledAt = &now
	d.ReconciledBy = &supervisorID
	if req.Notes != nil {
		d.Notes = req.Notes
	}
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}

	risk := model.RiskLow
	switch classification {
	case DiscrepancyWarning:
		risk = model.RiskMedium
	case DiscrepancyCritical:
		risk = model.RiskHigh
	}
	s.audit.Record(ctx, worker.AuditJobPayload{
		EventType:  "drawer_reconciled",
		Status:     model.AuditSuccess,
		RiskLevel:  risk,
		OperatorID: &supervisorID,
		DrawerID:   &drawerID,
		Details: map[string]interface{}{
			"discrepancy":    discrepancy.String(),
			"classification": classification,
		},
	})

	// Critical shortages/overages page the supervisor inbox. Fire-and-forget.
	if classification == DiscrepancyCritical && s.dispatcher != nil && s.supervisorEmail != "" {
		_ = s.dispatcher.EnqueueEmail(ctx, worker.EmailJobPayload{
			ToEmail: s.supervisorEmail,
			Subject: fmt.Sprintf("Critical drawer discrepancy: %s", discrepancy.StringFixed(2)),
			Body: fmt.Sprintf(
				"Drawer %s reconciled with a critical discrepancy of %s (expected %s, counted %s).",
				drawerID, discrepancy.StringFixed(2), d.ExpectedBalance.StringFixed(2), req.ActualBalance.StringFixed(2)),
		})
	}

	return &dto.ReconcileResponse{
		Drawer:         drawerToResponse(d),
		Discrepancy:    discrepancy,
		Classification: classification,
	}, nil
}

// ── AddManualTransaction ─────────────────────────────────────────────────────

func (s *drawerService) AddManualTransaction(ctx context.Context, operatorID, drawerID uuid.UUID, req dto.ManualTransactionRequest) (*dto.LedgerEntryResponse, error) {
	if req.Amount.IsZero() {
		return nil, ErrZeroAmount
	}

	d, err := s.repo.FindByID(ctx, drawerID)
	if err != nil {
		return nil, err
	}
	if d.OperatorID != operatorID {
		return nil, repository.ErrDrawerNotFound
	}

	amount := req.Amount
	if req.Type == model.EntryPayout || (req.Type == model.EntryAdjustment && req.Negative) {
		amount = amount.Neg()
	}

	entry, err := s.repo.AppendEntry(ctx, drawerID, repository.NewEntry{
		OperatorID:  operatorID,
		Type:        req.Type,
		Amount:      amount,
		Description: req.Description,
		Notes:       req.Notes,
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, worker.AuditJobPayload{
		EventType:  "manual_transaction",
		Status:     model.AuditSuccess,
		RiskLevel:  model.RiskMedium,
		OperatorID: &operatorID,
		DrawerID:   &drawerID,
		Details: map[string]interface{}{
			"type":        req.Type,
			"amount":      amount.String(),
			"description": req.Description,
		},
	})

	resp := entryToResponse(entry)
	return &resp, nil
}

// ── FindOpen / History ───────────────────────────────────────────────────────

func (s *drawerService) FindOpen(ctx context.Context, operatorID uuid.UUID) (*model.Drawer, error) {
	return s.repo.FindOpenByOperator(ctx, operatorID)
}

func (s *drawerService) History(ctx context.Context, page, limit int) (*dto.DrawerListResponse, error) {
	drawers, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	items := make([]dto.DrawerResponse, 0, len(drawers))
	for i := range drawers {
		items = append(items, drawerToResponse(&drawers[i]))
	}
	return &dto.DrawerListResponse{Data: items, Total: total, Page: page, Limit: limit}, nil
}

// ── Helpers ──────────────────────────────────────────────────────────────────

// classifyDiscrepancy returns normal | warning | critical.
// normal: |d| ≤ 1% of expected, warning: ≤ 5%, critical: > 5%.
func classifyDiscrepancy(discrepancy, expected decimal.Decimal) string {
	if discrepancy.IsZero() {
		return DiscrepancyNormal
	}
	if expected.IsZero() {
		return DiscrepancyCritical
	}
	pct := discrepancy.Div(expected).Mul(decimal.NewFromInt(100)).Abs()
	switch {
	case pct.LessThanOrEqual(decimal.NewFromInt(1)):
		return DiscrepancyNormal
	case pct.LessThanOrEqual(decimal.NewFromInt(5)):
		return DiscrepancyWarning
	default:
		return DiscrepancyCritical
	}
}

const timestampLayout = "2006-01-02T15:04:05Z"

func drawerToResponse(d *model.Drawer) dto.DrawerResponse {
	resp := dto.DrawerResponse{
		ID:              d.ID.String(),
		OperatorID:      d.OperatorID.String(),
		Status:          d.Status,
		OpeningBalance:  d.OpeningBalance,
		CurrentBalance:  d.CurrentBalance,
		ExpectedBalance: d.ExpectedBalance,
		DeclaredBalance: d.DeclaredBalance,
		Notes:           d.Notes,
		OpenedAt:        d.OpenedAt.UTC().Format(timestampLayout),
	}
	if d.ClosedAt != nil {
		t := d.ClosedAt.UTC().Format(timestampLayout)
		resp.ClosedAt = &t
	}
	if d.ReconciledAt != nil {
		t := d.ReconciledAt.UTC().Format(timestampLayout)
		resp.ReconciledAt = &t
	}
	if d.ReconciledBy != nil {
		id := d.ReconciledBy.String()
		resp.ReconciledBy = &id
	}
	return resp
}

func entryToResponse(e *model.LedgerEntry) dto.LedgerEntryResponse {
	return dto.LedgerEntryResponse{
		ID:            e.ID.String(),
		DrawerID:      e.DrawerID.String(),
		Type:          e.Type,
		Amount:        e.Amount,
		Description:   e.Description,
		BalanceBefore: e.BalanceBefore,
		BalanceAfter:  e.BalanceAfter,
		Notes:         e.Notes,
		CreatedAt:     e.CreatedAt.UTC().Format(timestampLayout),
	}
}
