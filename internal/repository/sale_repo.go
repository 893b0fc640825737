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

// ErrSaleNotFound is returned when the sale id does not exist upstream.
var ErrSaleNotFound = errors.New("sale not found")

// TopProductRow is one row of the top-sellers shift report.
type TopProductRow struct {
	ProductID uuid.UUID
	Name      string
	Quantity  int64
	Revenue   decimal.Decimal
}

// SaleRepository reads the external Order/Sale collaborator's tables. This
// engine never writes sales.
type SaleRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	// SummarySince returns count and total of completed sales after the cutoff.
	SummarySince(ctx context.Context, since time.Time) (int64, decimal.Decimal, error)
	TopProductsSince(ctx context.Context, since time.Time, limit int) ([]TopProductRow, error)
}

type saleRepo struct{ db *gorm.DB }

func NewSaleRepository(db *gorm.DB) SaleRepository { return &saleRepo{db: db} }

func (r *saleRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	var s model.Sale
	err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSaleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *saleRepo) SummarySince(ctx context.Context, since time.Time) (int64, decimal.Decimal, error) {
	var row struct {
		Count int64
		Total decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Model(&model.Sale{}).
		Select("COUNT(*) AS count, COALESCE(SUM(total), 0) AS total").
		Where("status = ? AND created_at >= ?", "completed", since).
		Scan(&row).Error
	return row.Count, row.Total, err
}

func (r *saleRepo) TopProductsSince(ctx context.Context, since time.Time, limit int) ([]TopProductRow, error) {
	var rows []TopProductRow
	err := r.db.WithContext(ctx).
		Model(&model.SaleItem{}).
		Select("sale_items.product_id AS product_id, products.name AS name, SUM(sale_items.quantity) AS quantity, COALESCE(SUM(sale_items.subtotal), 0) AS revenue").
		Joins("JOIN sales ON sales.id = sale_items.sale_id").
		Joins("JOIN products ON products.id = sale_items.product_id").
		Where("sales.status = ? AND sales.created_at >= ?", "completed", since).
		Group("sale_items.product_id, products.name").
		Order("quantity DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// ProductRepository reads the inventory collaborator's product table for the
// dashboard's low-stock alerts.
type ProductRepository interface {
	LowStock(ctx context.Context, limit int) ([]model.Product, error)
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) LowStock(ctx context.Context, limit int) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Where("active AND stock <= min_stock").
		Order("stock ASC").
		Limit(limit).
		Find(&products).Error
	return products, err
}
