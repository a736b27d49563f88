// Package analytics contiene el caso de uso de solo lectura que arma el
// resumen del dashboard: conteos del catálogo, total de ventas del período
// y la actividad más reciente del ledger.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/mercado-api/internal/application/dto"
	"github.com/tu-usuario/mercado-api/internal/domain/entity"
	"github.com/tu-usuario/mercado-api/internal/domain/repository"
)

const (
	dashboardRecentLimit = 5  // movimientos y ventas recientes en el widget
	defaultWindowDays    = 30 // ventana por defecto del total de ventas
)

// DashboardUseCase genera el resumen del dashboard.
//
// Fuente de datos: DashboardRepository (consultas read-only). Una lectura
// ligeramente desfasada es aceptable; no se toman bloqueos.
type DashboardUseCase struct {
	repo repository.DashboardRepository
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(repo repository.DashboardRepository) *DashboardUseCase {
	return &DashboardUseCase{repo: repo}
}

// GetSummary construye el DashboardSummaryDTO.
//
// windowDays acota la suma de ventas a los últimos N días; 0 suma todo el
// historial; negativo usa el default (30). Cuatro llamadas en paralelo:
//  1. GetCounts            → totales del catálogo + stock bajo
//  2. GetSalesTotal        → suma de total_amount en la ventana
//  3. GetRecentMovements   → últimos 5 movimientos (desc)
//  4. GetRecentSales       → últimas 5 ventas (desc)
func (uc *DashboardUseCase) GetSummary(ctx context.Context, windowDays int) (*dto.DashboardSummaryDTO, error) {
	if windowDays < 0 {
		windowDays = defaultWindowDays
	}
	var since *time.Time
	if windowDays > 0 {
		t := time.Now().AddDate(0, 0, -windowDays)
		since = &t
	}

	type countsResult struct {
		counts repository.DashboardCounts
		err    error
	}
	type totalResult struct {
		total decimal.Decimal
		err   error
	}
	type movementsResult struct {
		movements []*entity.StockMovement
		err       error
	}
	type salesResult struct {
		sales []*entity.Sale
		err   error
	}

	countsCh := make(chan countsResult, 1)
	totalCh := make(chan totalResult, 1)
	movsCh := make(chan movementsResult, 1)
	salesCh := make(chan salesResult, 1)

	go func() {
		c, err := uc.repo.GetCounts(ctx)
		countsCh <- countsResult{c, err}
	}()
	go func() {
		t, err := uc.repo.GetSalesTotal(ctx, since)
		totalCh <- totalResult{t, err}
	}()
	go func() {
		m, err := uc.repo.GetRecentMovements(ctx, dashboardRecentLimit)
		movsCh <- movementsResult{m, err}
	}()
	go func() {
		s, err := uc.repo.GetRecentSales(ctx, dashboardRecentLimit)
		salesCh <- salesResult{s, err}
	}()

	counts := <-countsCh
	total := <-totalCh
	movs := <-movsCh
	sales := <-salesCh

	if counts.err != nil {
		return nil, fmt.Errorf("dashboard: conteos: %w", counts.err)
	}
	if total.err != nil {
		return nil, fmt.Errorf("dashboard: total de ventas: %w", total.err)
	}
	if movs.err != nil {
		return nil, fmt.Errorf("dashboard: movimientos recientes: %w", movs.err)
	}
	if sales.err != nil {
		return nil, fmt.Errorf("dashboard: ventas recientes: %w", sales.err)
	}

	recentMovs := make([]dto.MovementResponse, 0, len(movs.movements))
	for _, m := range movs.movements {
		recentMovs = append(recentMovs, dto.MovementResponse{
			ID:              m.ID,
			ProductID:       m.ProductID,
			Type:            m.Type,
			Quantity:        m.Quantity,
			ReferenceNumber: m.ReferenceNumber,
			Notes:           m.Notes,
			CreatedBy:       m.CreatedBy,
			CreatedAt:       m.CreatedAt,
		})
	}
	recentSales := make([]dto.SaleResponse, 0, len(sales.sales))
	for _, s := range sales.sales {
		recentSales = append(recentSales, dto.SaleResponse{
			ID:          s.ID,
			ProductID:   s.ProductID,
			Quantity:    s.Quantity,
			UnitPrice:   s.UnitPrice,
			TotalAmount: s.TotalAmount,
			SaleDate:    s.SaleDate,
			CreatedBy:   s.CreatedBy,
			CreatedAt:   s.CreatedAt,
		})
	}

	return &dto.DashboardSummaryDTO{
		TotalProducts:   counts.counts.Products,
		TotalCategories: counts.counts.Categories,
		TotalSuppliers:  counts.counts.Suppliers,
		LowStockCount:   counts.counts.LowStock,
		TotalSales:      total.total.Round(2),
		WindowDays:      windowDays,
		RecentMovements: recentMovs,
		RecentSales:     recentSales,
	}, nil
}
