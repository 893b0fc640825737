package service

import (
	"context"
	"strings"
	"time"

	"github.com/Micjeal/NEXTGEN-POS-sub002/internal/dto"
	"github.com/Micjeal/NEXTGEN-POS-sub002/internal/model"
	"github.com/Micjeal/NEXTGEN-POS-sub002/internal/repository"

	"github.com/google/uuid"
)

const topProductsLimit = 5
const lowStockLimit = 10

// ReportService builds the dashboard and shift-report read models. Reads
// only - it never touches the ledger.
type ReportService interface {
	DrawerState(ctx context.Context, operatorID uuid.UUID) (*dto.DrawerStateResponse, error)
	DrawerReport(ctx context.Context, drawerID uuid.UUID) (*dto.DrawerReportResponse, error)
}

type reportService struct {
	drawers  repository.DrawerRepository
	payments repository.PaymentRepository
	sales    repository.SaleRepository
	products repository.ProductRepository
}

func NewReportService(
	drawers repository.DrawerRepository,
	payments repository.PaymentRepository,
	sales repository.SaleRepository,
	products repository.ProductRepository,
) ReportService {
	return &reportService{drawers: drawers, payments: payments, sales: sales, products: products}
}

// DrawerState assembles the operator dashboard: the open drawer with its
// ledger (nil drawer when none is open) plus today's shift figures.
func (s *reportService) DrawerState(ctx context.Context, operatorID uuid.UUID) (*dto.DrawerStateResponse, error) {
	since := startOfDay(time.Now())

	resp := &dto.DrawerStateResponse{
		Entries:     []dto.LedgerEntryResponse{},
		TopProducts: []dto.TopProduct{},
		LowStock:    []dto.LowStockAlert{},
	}

	drawer, err := s.drawers.FindOpenByOperator(ctx, operatorID)
	if err != nil {
		return nil, err
	}
	if drawer != nil {
		d := drawerToResponse(drawer)
		resp.Drawer = &d
		entries, err := s.drawers.ListEntries(ctx, drawer.ID)
		if err != nil {
			return nil, err
		}
		for i := range entries {
			resp.Entries = append(resp.Entries, entryToResponse(&entries[i]))
		}
	}

	count, total, err := s.sales.SummarySince(ctx, since)
	if err != nil {
		return nil, err
	}
	resp.Sales = dto.SalesSummary{Count: count, Total: total}

	breakdown, err := s.breakdownSince(ctx, since)
	if err != nil {
		return nil, err
	}
	resp.Breakdown = breakdown

	top, err := s.sales.TopProductsSince(ctx, since, topProductsLimit)
	if err != nil {
		return nil, err
	}
	for _, row := range top {
		resp.TopProducts = append(resp.TopProducts, dto.TopProduct{
			ProductID: row.ProductID.String(),
			Name:      row.Name,
			Quantity:  row.Quantity,
			Revenue:   row.Revenue,
		})
	}

	low, err := s.products.LowStock(ctx, lowStockLimit)
	if err != nil {
		return nil, err
	}
	for _, p := range low {
		resp.LowStock = append(resp.LowStock, dto.LowStockAlert{
			ProductID: p.ID.String(),
			Name:      p.Name,
			Stock:     p.Stock,
			MinStock:  p.MinStock,
		})
	}

	return resp, nil
}

// DrawerReport builds the per-shift report for one drawer, open or not. The
// payment breakdown and top sellers cover the drawer's open period.
func (s *reportService) DrawerReport(ctx context.Context, drawerID uuid.UUID) (*dto.DrawerReportResponse, error) {
	drawer, err := s.drawers.FindByID(ctx, drawerID)
	if err != nil {
		return nil, err
	}

	entries, err := s.drawers.ListEntries(ctx, drawerID)
	if err != nil {
		return nil, err
	}

	resp := &dto.DrawerReportResponse{
		Drawer:      drawerToResponse(drawer),
		Entries:     []dto.LedgerEntryResponse{},
		TopProducts: []dto.TopProduct{},
	}
	for i := range entries {
		resp.Entries = append(resp.Entries, entryToResponse(&entries[i]))
	}

	breakdown, err := s.breakdownSince(ctx, drawer.OpenedAt)
	if err != nil {
		return nil, err
	}
	resp.Breakdown = breakdown

	top, err := s.sales.TopProductsSince(ctx, drawer.OpenedAt, topProductsLimit)
	if err != nil {
		return nil, err
	}
	for _, row := range top {
		resp.TopProducts = append(resp.TopProducts, dto.TopProduct{
			ProductID: row.ProductID.String(),
			Name:      row.Name,
			Quantity:  row.Quantity,
			Revenue:   row.Revenue,
		})
	}

	return resp, nil
}

func (s *reportService) breakdownSince(ctx context.Context, since time.Time) (dto.MethodBreakdown, error) {
	var b dto.MethodBreakdown
	rows, err := s.payments.SumByMethodSince(ctx, since)
	if err != nil {
		return b, err
	}
	for _, row := range rows {
		category := row.Category
		if category == "" || category == model.MethodOther {
			category = classifyMethodName(row.Name)
		}
		switch category {
		case model.MethodCash:
			b.Cash = b.Cash.Add(row.Total)
		case model.MethodCard:
			b.Card = b.Card.Add(row.Total)
		case model.MethodMobile:
			b.Mobile = b.Mobile.Add(row.Total)
		default:
			b.Other = b.Other.Add(row.Total)
		}
		b.Total = b.Total.Add(row.Total)
	}
	return b, nil
}

// classifyMethodName is the fallback for directory rows created before the
// category column existed. Matching on the display name is best-effort.
func classifyMethodName(name string) string {
	n := strings.ToLower(name)
	switch {
	case strings.Contains(n, "cash"):
		return model.MethodCash
	case strings.Contains(n, "card"), strings.Contains(n, "credit"), strings.Contains(n, "debit"):
		return model.MethodCard
	case strings.Contains(n, "mobile"), strings.Contains(n, "momo"), strings.Contains(n, "wallet"):
		return model.MethodMobile
	default:
		return model.MethodOther
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
