package dto

import "github.com/shopspring/decimal"

// MethodBreakdown groups today's completed payments by directory category.
type MethodBreakdown struct {
	Cash   decimal.Decimal `json:"cash"`
	Card   decimal.Decimal `json:"card"`
	Mobile decimal.Decimal `json:"mobile"`
	Other  decimal.Decimal `json:"other"`
	Total  decimal.Decimal `json:"total"`
}

type SalesSummary struct {
	Count int64           `json:"count"`
	Total decimal.Decimal `json:"total"`
}

type TopProduct struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int64           `json:"quantity"`
	Revenue   decimal.Decimal `json:"revenue"`
}

type LowStockAlert struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Stock     int    `json:"stock"`
	MinStock  int    `json:"min_stock"`
}

// DrawerStateResponse is the operator dashboard read model: the open drawer
// (or none), its ledger, and today's shift figures.
type DrawerStateResponse struct {
	Drawer      *DrawerResponse       `json:"drawer"`
	Entries     []LedgerEntryResponse `json:"entries"`
	Sales       SalesSummary          `json:"sales"`
	Breakdown   MethodBreakdown       `json:"breakdown"`
	TopProducts []TopProduct          `json:"top_products"`
	LowStock    []LowStockAlert       `json:"low_stock"`
}

// DrawerReportResponse is the per-drawer shift report used by the report
// endpoints and the PDF export.
type DrawerReportResponse struct {
	Drawer      DrawerResponse        `json:"drawer"`
	Entries     []LedgerEntryResponse `json:"entries"`
	Breakdown   MethodBreakdown       `json:"breakdown"`
	TopProducts []TopProduct          `json:"top_products"`
}
