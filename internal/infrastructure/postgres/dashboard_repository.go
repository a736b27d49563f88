package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/mercado-api/internal/domain/entity"
	"github.com/tu-usuario/mercado-api/internal/domain/repository"
)

var _ repository.DashboardRepository = (*DashboardRepo)(nil)

// DashboardRepo consultas de solo lectura para el resumen del dashboard.
// Va directo al pool: no participa en transacciones del ledger.
type DashboardRepo struct {
	pool *pgxpool.Pool
}

// NewDashboardRepository construye el adaptador de dashboard.
func NewDashboardRepository(pool *pgxpool.Pool) *DashboardRepo {
	return &DashboardRepo{pool: pool}
}

// GetCounts devuelve los conteos del catálogo y de productos en stock bajo
// en una sola consulta (subqueries escalares).
func (r *DashboardRepo) GetCounts(ctx context.Context) (repository.DashboardCounts, error) {
	const query = `
	SELECT
	    (SELECT COUNT(*) FROM products)                                    AS total_products,
	    (SELECT COUNT(*) FROM categories)                                  AS total_categories,
	    (SELECT COUNT(*) FROM suppliers)                                   AS total_suppliers,
	    (SELECT COUNT(*) FROM products WHERE quantity <= reorder_level)    AS low_stock`
	var c repository.DashboardCounts
	err := r.pool.QueryRow(ctx, query).Scan(&c.Products, &c.Categories, &c.Suppliers, &c.LowStock)
	if err != nil {
		return repository.DashboardCounts{}, fmt.Errorf("dashboard.GetCounts: %w", err)
	}
	return c, nil
}

// GetSalesTotal suma total_amount de las ventas desde `since`.
// since == nil suma todo el historial. COALESCE devuelve cero si no hay filas.
func (r *DashboardRepo) GetSalesTotal(ctx context.Context, since *time.Time) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(total_amount), 0) FROM sales`
	args := []any{}
	if since != nil {
		query += ` WHERE sale_date >= $1`
		args = append(args, *since)
	}
	var total decimal.Decimal
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("dashboard.GetSalesTotal: %w", err)
	}
	return total, nil
}

// GetRecentMovements devuelve los `limit` movimientos más recientes (desc).
func (r *DashboardRepo) GetRecentMovements(ctx context.Context, limit int) ([]*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements ORDER BY created_at DESC LIMIT $1`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("dashboard.GetRecentMovements: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		if err := rows.Scan(&m.ID, &m.ProductID, &m.Type, &m.Quantity, &m.ReferenceNumber,
			&m.Notes, &m.CreatedBy, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("dashboard.GetRecentMovements scan: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}

// GetRecentSales devuelve las `limit` ventas más recientes por sale_date (desc).
func (r *DashboardRepo) GetRecentSales(ctx context.Context, limit int) ([]*entity.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales ORDER BY sale_date DESC LIMIT $1`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("dashboard.GetRecentSales: %w", err)
	}
	defer rows.Close()
	var list []*entity.Sale
	for rows.Next() {
		var s entity.Sale
		if err := rows.Scan(&s.ID, &s.ProductID, &s.Quantity, &s.UnitPrice, &s.TotalAmount,
			&s.SaleDate, &s.CreatedBy, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("dashboard.GetRecentSales scan: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}
