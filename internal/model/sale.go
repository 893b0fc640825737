package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale is the external Order/Sale collaborator's record. This engine only
// reads sales - creation, line editing and voiding happen upstream.
type Sale struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OperatorID uuid.UUID       `gorm:"type:uuid;index"`
	Total      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Status     string          `gorm:"type:varchar(20);not null"`
	CreatedAt  time.Time

	Items []SaleItem `gorm:"foreignKey:SaleID"`
}

// SaleItem is read for the top-products shift report.
type SaleItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SaleID    uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity  int             `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

// Product is the inventory collaborator's record, read for product names in
// the shift report and for low-stock alerts on the drawer dashboard.
type Product struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name     string    `gorm:"not null"`
	Stock    int       `gorm:"not null"`
	MinStock int       `gorm:"not null;default:0"`
	Active   bool      `gorm:"not null;default:true"`
}
