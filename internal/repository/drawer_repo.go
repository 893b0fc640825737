package repository

import (
	"context"
	"errors"

	"github.com/Micjeal/NEXTGEN-POS-sub002/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrDrawerNotFound is returned when the drawer id does not exist.
	ErrDrawerNotFound = errors.New("drawer not found")
	// ErrDrawerNotOpen is returned when a ledger append targets a drawer that
	// is not open. Reconciliation adjustments are the one exception.
	ErrDrawerNotOpen = errors.New("drawer is not open")
)

// NewEntry is the input for a single ledger append. Balances are computed
// inside the append transaction, never by callers.
type NewEntry struct {
	OperatorID  uuid.UUID
	Type        string
	Amount      decimal.Decimal
	Description string
	Notes       *string
}

// DrawerRepository is the ledger store. AppendEntries is the only mutating
// path for balances: it serializes appends per drawer via a row lock, writes
// the immutable entries and updates the drawer in one transaction, so a
// partial write (entry without balance update) cannot occur.
type DrawerRepository interface {
	Create(ctx context.Context, d *model.Drawer) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Drawer, error)
	FindOpenByOperator(ctx context.Context, operatorID uuid.UUID) (*model.Drawer, error)
	Update(ctx context.Context, d *model.Drawer) error
	AppendEntry(ctx context.Context, drawerID uuid.UUID, e NewEntry) (*model.LedgerEntry, error)
	AppendEntries(ctx context.Context, drawerID uuid.UUID, entries []NewEntry) ([]model.LedgerEntry, error)
	ListEntries(ctx context.Context, drawerID uuid.UUID) ([]model.LedgerEntry, error)
	List(ctx context.Context, page, limit int) ([]model.Drawer, int64, error)
}

type drawerRepo struct{ db *gorm.DB }

func NewDrawerRepository(db *gorm.DB) DrawerRepository { return &drawerRepo{db: db} }

func (r *drawerRepo) Create(ctx context.Context, d *model.Drawer) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *drawerRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Drawer, error) {
	var d model.Drawer
	err := r.db.WithContext(ctx).First(&d, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDrawerNotFound
	}
	return &d, err
}

func (r *drawerRepo) FindOpenByOperator(ctx context.Context, operatorID uuid.UUID) (*model.Drawer, error) {
	var d model.Drawer
	err := r.db.WithContext(ctx).
		Where("operator_id = ? AND status = ?", operatorID, model.DrawerOpen).
		First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *drawerRepo) Update(ctx context.Context, d *model.Drawer) error {
	return r.db.WithContext(ctx).Save(d).Error
}

func (r *drawerRepo) AppendEntry(ctx context.Context, drawerID uuid.UUID, e NewEntry) (*model.LedgerEntry, error) {
	entries, err := r.AppendEntries(ctx, drawerID, []NewEntry{e})
	if err != nil {
		return nil, err
	}
	return &entries[0], nil
}

// AppendEntries appends a batch of entries to one drawer's ledger atomically.
// The drawer row is locked FOR UPDATE for the duration, so concurrent appends
// to the same drawer serialize while other drawers proceed in parallel. Each
// entry chains off the previous one: BalanceBefore is the drawer's running
// balance, BalanceAfter = BalanceBefore + Amount. Cash-affecting entries also
// move the expected balance; adjustments only correct the actual balance.
func (r *drawerRepo) AppendEntries(ctx context.Context, drawerID uuid.UUID, entries []NewEntry) ([]model.LedgerEntry, error) {
	if len(entries) == 0 {
		return nil, nil
	}

	var written []model.LedgerEntry
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var d model.Drawer
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&d, "id = ?", drawerID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDrawerNotFound
		}
		if err != nil {
			return err
		}

		for _, e := range entries {
			if d.Status != model.DrawerOpen && e.Type != model.EntryAdjustment {
				return ErrDrawerNotOpen
			}

			entry := model.LedgerEntry{
				DrawerID:      drawerID,
				OperatorID:    e.OperatorID,
				Type:          e.Type,
				Amount:        e.Amount,
				Description:   e.Description,
				BalanceBefore: d.CurrentBalance,
				BalanceAfter:  d.CurrentBalance.Add(e.Amount),
				Notes:         e.Notes,
			}
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}

			d.CurrentBalance = entry.BalanceAfter
			if model.CashAffecting(e.Type) {
				d.ExpectedBalance = d.ExpectedBalance.Add(e.Amount)
			}
			written = append(written, entry)
		}

		return tx.Model(&model.Drawer{}).
			Where("id = ?", drawerID).
			Updates(map[string]interface{}{
				"current_balance":  d.CurrentBalance,
				"expected_balance": d.ExpectedBalance,
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return written, nil
}

func (r *drawerRepo) ListEntries(ctx context.Context, drawerID uuid.UUID) ([]model.LedgerEntry, error) {
	var entries []model.LedgerEntry
	err := r.db.WithContext(ctx).
		Where("drawer_id = ?", drawerID).
		Order("created_at ASC").
		Find(&entries).Error
	return entries, err
}

func (r *drawerRepo) List(ctx context.Context, page, limit int) ([]model.Drawer, int64, error) {
	var drawers []model.Drawer
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Drawer{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.db.WithContext(ctx).
		Order("opened_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&drawers).Error
	return drawers, total, err
}
