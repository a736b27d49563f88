package dto

import "github.com/shopspring/decimal"

// DashboardSummaryDTO respuesta de GET /api/dashboard/summary.
// Conteos del catálogo, total de ventas del período y actividad reciente.
type DashboardSummaryDTO struct {
	TotalProducts   int64 `json:"total_products"`
	TotalCategories int64 `json:"total_categories"`
	TotalSuppliers  int64 `json:"total_suppliers"`
	LowStockCount   int64 `json:"low_stock_count"`

	// Suma de total_amount de las ventas dentro de la ventana.
	// WindowDays == 0 significa todo el historial.
	TotalSales decimal.Decimal `json:"total_sales"`
	WindowDays int             `json:"window_days"`

	// Actividad más reciente, orden descendente por fecha.
	RecentMovements []MovementResponse `json:"recent_movements"`
	RecentSales     []SaleResponse     `json:"recent_sales"`
}
