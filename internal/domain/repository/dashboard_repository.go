package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/mercado-api/internal/domain/entity"
)

// DashboardCounts totales del catálogo para el resumen.
type DashboardCounts struct {
	Products   int64
	Categories int64
	Suppliers  int64
	LowStock   int64
}

// DashboardRepository consultas de solo lectura para el resumen del dashboard.
// Lecturas ligeramente desfasadas son aceptables; no requiere bloqueos.
type DashboardRepository interface {
	// GetCounts devuelve los conteos de productos, categorías, proveedores
	// y productos en stock bajo.
	GetCounts(ctx context.Context) (DashboardCounts, error)
	// GetSalesTotal suma total_amount de las ventas desde `since`.
	// since == nil suma todo el historial.
	GetSalesTotal(ctx context.Context, since *time.Time) (decimal.Decimal, error)
	// GetRecentMovements devuelve los `limit` movimientos más recientes (desc).
	GetRecentMovements(ctx context.Context, limit int) ([]*entity.StockMovement, error)
	// GetRecentSales devuelve las `limit` ventas más recientes por sale_date (desc).
	GetRecentSales(ctx context.Context, limit int) ([]*entity.Sale, error)
}
