package service_test

import (
	"context"
	"testing"

	"github.com/Micjeal/NEXTGEN-POS-sub002/internal/dto"
	"github.com/Micjeal/NEXTGEN-POS-sub002/internal/model"
	"github.com/Micjeal/NEXTGEN-POS-sub002/internal/repository"
	"github.com/Micjeal/NEXTGEN-POS-sub002/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func newDrawerService(repo *fakeDrawerRepo, audit *captureAudit) service.DrawerService {
	return service.NewDrawerService(repo, audit, nil, "")
}

func TestOpenDrawer(t *testing.T) {
	repo := newFakeDrawerRepo()
	audit := &captureAudit{}
	svc := newDrawerService(repo, audit)
	operator := uuid.New()

	resp, err := svc.Open(context.Background(), operator, dto.OpenDrawerRequest{OpeningBalance: dec(5000)})
	require.NoError(t, err)

	assert.Equal(t, model.DrawerOpen, resp.Status)
	assert.True(t, resp.CurrentBalance.Equal(dec(5000)))
	assert.True(t, resp.ExpectedBalance.Equal(dec(5000)))

	// The opening float is the first ledger entry and starts the chain at zero.
	entries, err := repo.ListEntries(context.Background(), uuid.MustParse(resp.ID))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, model.EntryOpeningFloat, entries[0].Type)
	assert.True(t, entries[0].BalanceBefore.IsZero())
	assert.True(t, entries[0].BalanceAfter.Equal(dec(5000)))

	require.Len(t, audit.byType("drawer_opened"), 1)
}

func TestOpenDrawerSecondOpenRejected(t *testing.T) {
	repo := newFakeDrawerRepo()
	svc := newDrawerService(repo, &captureAudit{})
	operator := uuid.New()

	_, err := svc.Open(context.Background(), operator, dto.OpenDrawerRequest{OpeningBalance: dec(1000)})
	require.NoError(t, err)

	_, err = svc.Open(context.Background(), operator, dto.OpenDrawerRequest{OpeningBalance: dec(1000)})
	assert.ErrorIs(t, err, service.ErrAlreadyOpen)

	// A different operator is unaffected.
	_, err = svc.Open(context.Background(), uuid.New(), dto.OpenDrawerRequest{OpeningBalance: dec(1000)})
	assert.NoError(t, err)
}

func TestCloseDrawer(t *testing.T) {
	repo := newFakeDrawerRepo()
	svc := newDrawerService(repo, &captureAudit{})
	operator := uuid.New()

	opened, err := svc.Open(context.Background(), operator, dto.OpenDrawerRequest{OpeningBalance: dec(10000)})
	require.NoError(t, err)
	drawerID := uuid.MustParse(opened.ID)

	closed, err := svc.Close(context.Background(), operator, drawerID, dto.CloseDrawerRequest{ActualBalance: dec(9500)})
	require.NoError(t, err)
	assert.Equal(t, model.DrawerClosed, closed.Status)
	assert.NotNil(t, closed.ClosedAt)
	require.NotNil(t, closed.DeclaredBalance)
	assert.True(t, closed.DeclaredBalance.Equal(dec(9500)))
	// The running and expected balances are untouched by closing; only the
	// reconciliation adjustment settles the gap.
	assert.True(t, closed.CurrentBalance.Equal(dec(10000)))
	assert.True(t, closed.ExpectedBalance.Equal(dec(10000)))
}

func TestCloseDrawerWrongOperator(t *testing.T) {
	repo := newFakeDrawerRepo()
	svc := newDrawerService(repo, &captureAudit{})
	operator := uuid.New()

	opened, err := svc.Open(context.Background(), operator, dto.OpenDrawerRequest{OpeningBalance: dec(1000)})
	require.NoError(t, err)

	_, err = svc.Close(context.Background(), uuid.New(), uuid.MustParse(opened.ID), dto.CloseDrawerRequest{ActualBalance: dec(1000)})
	assert.ErrorIs(t, err, repository.ErrDrawerNotFound)
}

func TestCloseDrawerTwiceRejected(t *testing.T) {
	repo := newFakeDrawerRepo()
	svc := newDrawerService(repo, &captureAudit{})
	operator := uuid.New()

	opened, err := svc.Open(context.Background(), operator, dto.OpenDrawerRequest{OpeningBalance: dec(1000)})
	require.NoError(t, err)
	drawerID := uuid.MustParse(opened.ID)

	_, err = svc.Close(context.Background(), operator, drawerID, dto.CloseDrawerRequest{ActualBalance: dec(1000)})
	require.NoError(t, err)

	_, err = svc.Close(context.Background(), operator, drawerID, dto.CloseDrawerRequest{ActualBalance: dec(1000)})
	assert.ErrorIs(t, err, repository.ErrDrawerNotOpen)
}

func TestReconcileRequiresClosedDrawer(t *testing.T) {
	repo := newFakeDrawerRepo()
	svc := newDrawerService(repo, &captureAudit{})
	operator := uuid.New()

	opened, err := svc.Open(context.Background(), operator, dto.OpenDrawerRequest{OpeningBalance: dec(1000)})
	require.NoError(t, err)

	_, err = svc.Reconcile(context.Background(), uuid.New(), uuid.MustParse(opened.ID), dto.ReconcileDrawerRequest{ActualBalance: dec(1000)})
	assert.ErrorIs(t, err, service.ErrDrawerNotClosed)
}

func TestReconcileShortageWritesAdjustment(t *testing.T) {
	repo := newFakeDrawerRepo()
	audit := &captureAudit{}
	svc := newDrawerService(repo, audit)
	operator := uuid.New()
	supervisor := uuid.New()

	opened, err := svc.Open(context.Background(), operator, dto.OpenDrawerRequest{OpeningBalance: dec(100000)})
	require.NoError(t, err)
	drawerID := uuid.MustParse(opened.ID)

	_, err = svc.Close(context.Background(), operator, drawerID, dto.CloseDrawerRequest{ActualBalance: dec(98000)})
	require.NoError(t, err)

	resp, err := svc.Reconcile(context.Background(), supervisor, drawerID, dto.ReconcileDrawerRequest{ActualBalance: dec(98000)})
	require.NoError(t, err)

	// A 2000 shortage on 100000 expected is 2% - a warning.
	assert.True(t, resp.Discrepancy.Equal(dec(-2000)))
	assert.Equal(t, service.DiscrepancyWarning, resp.Classification)
	assert.Equal(t, model.DrawerReconciled, resp.Drawer.Status)
	require.NotNil(t, resp.Drawer.ReconciledBy)
	assert.Equal(t, supervisor.String(), *resp.Drawer.ReconciledBy)

	// The adjustment brings the running balance to the counted amount but
	// leaves the expected balance as recorded cash flow.
	assert.True(t, resp.Drawer.CurrentBalance.Equal(dec(98000)))
	assert.True(t, resp.Drawer.ExpectedBalance.Equal(dec(100000)))

	entries, err := repo.ListEntries(context.Background(), drawerID)
	require.NoError(t, err)
	last := entries[len(entries)-1]
	assert.Equal(t, model.EntryAdjustment, last.Type)
	assert.True(t, last.Amount.Equal(dec(-2000)))
	assert.True(t, last.BalanceBefore.Equal(dec(100000)))
	assert.True(t, last.BalanceAfter.Equal(dec(98000)))

	events := audit.byType("drawer_reconciled")
	require.Len(t, events, 1)
	assert.Equal(t, model.RiskMedium, events[0].RiskLevel)
}

func TestReconcileExactMatch(t *testing.T) {
	repo := newFakeDrawerRepo()
	svc := newDrawerService(repo, &captureAudit{})
	operator := uuid.New()

	opened, err := svc.Open(context.Background(), operator, dto.OpenDrawerRequest{OpeningBalance: dec(50000)})
	require.NoError(t, err)
	drawerID := uuid.MustParse(opened.ID)

	_, err = svc.Close(context.Background(), operator, drawerID, dto.CloseDrawerRequest{ActualBalance: dec(50000)})
	require.NoError(t, err)

	resp, err := svc.Reconcile(context.Background(), uuid.New(), drawerID, dto.ReconcileDrawerRequest{ActualBalance: dec(50000)})
	require.NoError(t, err)

	assert.True(t, resp.Discrepancy.IsZero())
	assert.Equal(t, service.DiscrepancyNormal, resp.Classification)

	// No adjustment entry for a zero discrepancy.
	entries, err := repo.ListEntries(context.Background(), drawerID)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotEqual(t, model.EntryAdjustment, e.Type)
	}
}

func TestReconcileCriticalRequiresNotes(t *testing.T) {
	repo := newFakeDrawerRepo()
	audit := &captureAudit{}
	svc := newDrawerService(repo, audit)
	operator := uuid.New()

	opened, err := svc.Open(context.Background(), operator, dto.OpenDrawerRequest{OpeningBalance: dec(100000)})
	require.NoError(t, err)
	drawerID := uuid.MustParse(opened.ID)

	_, err = svc.Close(context.Background(), operator, drawerID, dto.CloseDrawerRequest{ActualBalance: dec(80000)})
	require.NoError(t, err)

	// 20% shortage, no notes - rejected before any ledger write.
	_, err = svc.Reconcile(context.Background(), uuid.New(), drawerID, dto.ReconcileDrawerRequest{ActualBalance: dec(80000)})
	assert.ErrorIs(t, err, service.ErrNotesRequired)

	notes := "till left unattended during shift change"
	resp, err := svc.Reconcile(context.Background(), uuid.New(), drawerID, dto.ReconcileDrawerRequest{ActualBalance: dec(80000), Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, service.DiscrepancyCritical, resp.Classification)

	events := audit.byType("drawer_reconciled")
	require.Len(t, events, 1)
	assert.Equal(t, model.RiskHigh, events[0].RiskLevel)
}

func TestManualTransactions(t *testing.T) {
	repo := newFakeDrawerRepo()
	svc := newDrawerService(repo, &captureAudit{})
	operator := uuid.New()

	opened, err := svc.Open(context.Background(), operator, dto.OpenDrawerRequest{OpeningBalance: dec(10000)})
	require.NoError(t, err)
	drawerID := uuid.MustParse(opened.ID)

	payin, err := svc.AddManualTransaction(context.Background(), operator, drawerID, dto.ManualTransactionRequest{
		Type: model.EntryPayin, Amount: dec(2000), Description: "float top-up",
	})
	require.NoError(t, err)
	assert.True(t, payin.Amount.Equal(dec(2000)))
	assert.True(t, payin.BalanceAfter.Equal(dec(12000)))

	payout, err := svc.AddManualTransaction(context.Background(), operator, drawerID, dto.ManualTransactionRequest{
		Type: model.EntryPayout, Amount: dec(500), Description: "courier paid from till",
	})
	require.NoError(t, err)
	assert.True(t, payout.Amount.Equal(dec(-500)))
	assert.True(t, payout.BalanceAfter.Equal(dec(11500)))

	d, err := repo.FindByID(context.Background(), drawerID)
	require.NoError(t, err)
	assert.True(t, d.CurrentBalance.Equal(dec(11500)))
	assert.True(t, d.ExpectedBalance.Equal(dec(11500)))
}

func TestManualAdjustmentDirection(t *testing.T) {
	repo := newFakeDrawerRepo()
	svc := newDrawerService(repo, &captureAudit{})
	operator := uuid.New()

	opened, err := svc.Open(context.Background(), operator, dto.OpenDrawerRequest{OpeningBalance: dec(10000)})
	require.NoError(t, err)
	drawerID := uuid.MustParse(opened.ID)

	down, err := svc.AddManualTransaction(context.Background(), operator, drawerID, dto.ManualTransactionRequest{
		Type: model.EntryAdjustment, Amount: dec(300), Negative: true, Description: "counting correction",
	})
	require.NoError(t, err)
	assert.True(t, down.Amount.Equal(dec(-300)))

	// Adjustments move the running balance only, never the expected balance.
	d, err := repo.FindByID(context.Background(), drawerID)
	require.NoError(t, err)
	assert.True(t, d.CurrentBalance.Equal(dec(9700)))
	assert.True(t, d.ExpectedBalance.Equal(dec(10000)))
}

func TestLedgerChainInvariant(t *testing.T) {
	repo := newFakeDrawerRepo()
	svc := newDrawerService(repo, &captureAudit{})
	operator := uuid.New()

	opened, err := svc.Open(context.Background(), operator, dto.OpenDrawerRequest{OpeningBalance: dec(1000)})
	require.NoError(t, err)
	drawerID := uuid.MustParse(opened.ID)

	for i := 0; i < 5; i++ {
		_, err := svc.AddManualTransaction(context.Background(), operator, drawerID, dto.ManualTransactionRequest{
			Type: model.EntryPayin, Amount: dec(100), Description: "top-up",
		})
		require.NoError(t, err)
	}

	entries, err := repo.ListEntries(context.Background(), drawerID)
	require.NoError(t, err)
	for i, e := range entries {
		assert.True(t, e.BalanceAfter.Equal(e.BalanceBefore.Add(e.Amount)))
		if i > 0 {
			assert.True(t, e.BalanceBefore.Equal(entries[i-1].BalanceAfter))
		}
	}
}
