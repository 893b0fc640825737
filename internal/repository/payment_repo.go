package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Micjeal/NEXTGEN-POS-sub002/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrMethodNotFound is returned when the payment-method id is not in the
// directory (or the method is inactive).
var ErrMethodNotFound = errors.New("payment method not found")

// MethodTotal is one row of the shift payment breakdown.
type MethodTotal struct {
	Name     string
	Category string
	Total    decimal.Decimal
}

// PaymentRepository persists payment records (write-once) and reads the
// externally-owned payment-method directory.
type PaymentRepository interface {
	Create(ctx context.Context, p *model.PaymentRecord) error
	FindMethod(ctx context.Context, id uuid.UUID) (*model.PaymentMethod, error)
	ListBySale(ctx context.Context, saleID uuid.UUID) ([]model.PaymentRecord, error)
	// SumByMethodSince totals completed payments per method since the cutoff.
	SumByMethodSince(ctx context.Context, since time.Time) ([]MethodTotal, error)
}

type paymentRepo struct{ db *gorm.DB }

func NewPaymentRepository(db *gorm.DB) PaymentRepository { return &paymentRepo{db: db} }

func (r *paymentRepo) Create(ctx context.Context, p *model.PaymentRecord) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *paymentRepo) FindMethod(ctx context.Context, id uuid.UUID) (*model.PaymentMethod, error) {
	var m model.PaymentMethod
	err := r.db.WithContext(ctx).First(&m, "id = ? AND active", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMethodNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *paymentRepo) ListBySale(ctx context.Context, saleID uuid.UUID) ([]model.PaymentRecord, error) {
	var records []model.PaymentRecord
	err := r.db.WithContext(ctx).
		Where("sale_id = ?", saleID).
		Order("created_at ASC").
		Find(&records).Error
	return records, err
}

func (r *paymentRepo) SumByMethodSince(ctx context.Context, since time.Time) ([]MethodTotal, error) {
	var rows []MethodTotal
	err := r.db.WithContext(ctx).
		Model(&model.PaymentRecord{}).
		Select("payment_methods.name AS name, payment_methods.category AS category, COALESCE(SUM(payment_records.amount), 0) AS total").
		Joins("JOIN payment_methods ON payment_methods.id = payment_records.payment_method_id").
		Where("payment_records.status = ? AND payment_records.created_at >= ?", model.PaymentCompleted, since).
		Group("payment_methods.name, payment_methods.category").
		Scan(&rows).Error
	return rows, err
}
