package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo de la tienda.
// Quantity es la existencia actual; solo la muta el motor del ledger
// (movimientos y ventas), nunca el CRUD de productos.
type Product struct {
	ID           string
	SKU          string // código único
	Name         string
	Description  string
	CategoryID   string
	SupplierID   string
	Price        decimal.Decimal // precio de venta
	CostPrice    decimal.Decimal // costo de compra
	Quantity     int64           // existencia actual (on-hand)
	ReorderLevel int64           // umbral de reposición
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// LowStock indica si el producto está en o por debajo del umbral de reposición.
// El límite es inclusivo: Quantity == ReorderLevel cuenta como stock bajo.
func (p *Product) LowStock() bool {
	return p.Quantity <= p.ReorderLevel
}
