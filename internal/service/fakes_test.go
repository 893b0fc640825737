package service_test

import (
	"context"
	"sync"
	"time"

	"github.com/Micjeal/NEXTGEN-POS-sub002/internal/model"
	"github.com/Micjeal/NEXTGEN-POS-sub002/internal/repository"
	"github.com/Micjeal/NEXTGEN-POS-sub002/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ── In-memory DrawerRepository ───────────────────────────────────────────────

type fakeDrawerRepo struct {
	mu      sync.Mutex
	drawers map[uuid.UUID]*model.Drawer
	entries map[uuid.UUID][]model.LedgerEntry
}

func newFakeDrawerRepo() *fakeDrawerRepo {
	return &fakeDrawerRepo{
		drawers: make(map[uuid.UUID]*model.Drawer),
		entries: make(map[uuid.UUID][]model.LedgerEntry),
	}
}

func (r *fakeDrawerRepo) Create(_ context.Context, d *model.Drawer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	cp := *d
	r.drawers[d.ID] = &cp
	return nil
}

func (r *fakeDrawerRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Drawer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.drawers[id]
	if !ok {
		return nil, repository.ErrDrawerNotFound
	}
	cp := *d
	return &cp, nil
}

func (r *fakeDrawerRepo) FindOpenByOperator(_ context.Context, operatorID uuid.UUID) (*model.Drawer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.drawers {
		if d.OperatorID == operatorID && d.Status == model.DrawerOpen {
			cp := *d
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeDrawerRepo) Update(_ context.Context, d *model.Drawer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.drawers[d.ID]; !ok {
		return repository.ErrDrawerNotFound
	}
	cp := *d
	r.drawers[d.ID] = &cp
	return nil
}

func (r *fakeDrawerRepo) AppendEntry(ctx context.Context, drawerID uuid.UUID, e repository.NewEntry) (*model.LedgerEntry, error) {
	entries, err := r.AppendEntries(ctx, drawerID, []repository.NewEntry{e})
	if err != nil {
		return nil, err
	}
	return &entries[0], nil
}

// AppendEntries mirrors the production chaining semantics: balances computed
// under the lock, non-adjustment appends rejected on non-open drawers.
func (r *fakeDrawerRepo) AppendEntries(_ context.Context, drawerID uuid.UUID, newEntries []repository.NewEntry) ([]model.LedgerEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.drawers[drawerID]
	if !ok {
		return nil, repository.ErrDrawerNotFound
	}

	var written []model.LedgerEntry
	for _, e := range newEntries {
		if d.Status != model.DrawerOpen && e.Type != model.EntryAdjustment {
			return nil, repository.ErrDrawerNotOpen
		}
		entry := model.LedgerEntry{
			ID:            uuid.New(),
			DrawerID:      drawerID,
			OperatorID:    e.OperatorID,
			Type:          e.Type,
			Amount:        e.Amount,
			Description:   e.Description,
			BalanceBefore: d.CurrentBalance,
			BalanceAfter:  d.CurrentBalance.Add(e.Amount),
			Notes:         e.Notes,
			CreatedAt:     time.Now(),
		}
		d.CurrentBalance = entry.BalanceAfter
		if model.CashAffecting(e.Type) {
			d.ExpectedBalance = d.ExpectedBalance.Add(e.Amount)
		}
		r.entries[drawerID] = append(r.entries[drawerID], entry)
		written = append(written, entry)
	}
	return written, nil
}

func (r *fakeDrawerRepo) ListEntries(_ context.Context, drawerID uuid.UUID) ([]model.LedgerEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.LedgerEntry(nil), r.entries[drawerID]...), nil
}

func (r *fakeDrawerRepo) List(_ context.Context, page, limit int) ([]model.Drawer, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []model.Drawer
	for _, d := range r.drawers {
		all = append(all, *d)
	}
	return all, int64(len(all)), nil
}

// ── In-memory PaymentRepository ──────────────────────────────────────────────

type fakePaymentRepo struct {
	mu      sync.Mutex
	methods map[uuid.UUID]*model.PaymentMethod
	records []model.PaymentRecord
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{methods: make(map[uuid.UUID]*model.PaymentMethod)}
}

func (r *fakePaymentRepo) addMethod(name, category string) uuid.UUID {
	id := uuid.New()
	r.methods[id] = &model.PaymentMethod{ID: id, Name: name, Category: category, Active: true}
	return id
}

func (r *fakePaymentRepo) Create(_ context.Context, p *model.PaymentRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now()
	r.records = append(r.records, *p)
	return nil
}

func (r *fakePaymentRepo) FindMethod(_ context.Context, id uuid.UUID) (*model.PaymentMethod, error) {
	m, ok := r.methods[id]
	if !ok || !m.Active {
		return nil, repository.ErrMethodNotFound
	}
	return m, nil
}

func (r *fakePaymentRepo) ListBySale(_ context.Context, saleID uuid.UUID) ([]model.PaymentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.PaymentRecord
	for _, rec := range r.records {
		if rec.SaleID == saleID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *fakePaymentRepo) SumByMethodSince(_ context.Context, since time.Time) ([]repository.MethodTotal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	totals := make(map[uuid.UUID]decimal.Decimal)
	for _, rec := range r.records {
		if rec.Status == model.PaymentCompleted && !rec.CreatedAt.Before(since) {
			totals[rec.PaymentMethodID] = totals[rec.PaymentMethodID].Add(rec.Amount)
		}
	}
	var rows []repository.MethodTotal
	for id, total := range totals {
		m := r.methods[id]
		rows = append(rows, repository.MethodTotal{Name: m.Name, Category: m.Category, Total: total})
	}
	return rows, nil
}

// ── In-memory SaleRepository / ProductRepository ─────────────────────────────

type fakeSaleRepo struct {
	sales map[uuid.UUID]*model.Sale
}

func newFakeSaleRepo() *fakeSaleRepo {
	return &fakeSaleRepo{sales: make(map[uuid.UUID]*model.Sale)}
}

func (r *fakeSaleRepo) addSale(total decimal.Decimal) uuid.UUID {
	id := uuid.New()
	r.sales[id] = &model.Sale{ID: id, Total: total, Status: "completed", CreatedAt: time.Now()}
	return id
}

func (r *fakeSaleRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Sale, error) {
	s, ok := r.sales[id]
	if !ok {
		return nil, repository.ErrSaleNotFound
	}
	return s, nil
}

func (r *fakeSaleRepo) SummarySince(_ context.Context, since time.Time) (int64, decimal.Decimal, error) {
	var count int64
	total := decimal.Zero
	for _, s := range r.sales {
		if s.Status == "completed" && !s.CreatedAt.Before(since) {
			count++
			total = total.Add(s.Total)
		}
	}
	return count, total, nil
}

func (r *fakeSaleRepo) TopProductsSince(_ context.Context, _ time.Time, _ int) ([]repository.TopProductRow, error) {
	return nil, nil
}

type fakeProductRepo struct{ low []model.Product }

func (r *fakeProductRepo) LowStock(_ context.Context, _ int) ([]model.Product, error) {
	return r.low, nil
}

// ── Audit capture ────────────────────────────────────────────────────────────

type captureAudit struct {
	mu     sync.Mutex
	events []worker.AuditJobPayload
}

func (a *captureAudit) Record(_ context.Context, evt worker.AuditJobPayload) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, evt)
}

func (a *captureAudit) byType(eventType string) []worker.AuditJobPayload {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []worker.AuditJobPayload
	for _, e := range a.events {
		if e.EventType == eventType {
			out = append(out, e)
		}
	}
	return out
}
