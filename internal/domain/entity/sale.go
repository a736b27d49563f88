package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale es el registro inmutable de una venta. UnitPrice se copia del
// producto al momento de la venta; TotalAmount = Quantity × UnitPrice.
// Una venta siempre decrementa la existencia del producto.
type Sale struct {
	ID          string
	ProductID   string
	Quantity    int64
	UnitPrice   decimal.Decimal
	TotalAmount decimal.Decimal
	SaleDate    time.Time
	CreatedBy   string
	CreatedAt   time.Time
}
