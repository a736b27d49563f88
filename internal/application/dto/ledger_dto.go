package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecordMovementRequest body para POST /api/stock-movements.
// Para IN/OUT Quantity debe ser > 0; para ADJ es un delta con signo (≠ 0).
type RecordMovementRequest struct {
	ProductID       string `json:"product_id"`
	Type            string `json:"type"` // IN, OUT, ADJ
	Quantity        int64  `json:"quantity"`
	ReferenceNumber string `json:"reference_number,omitempty"`
	Notes           string `json:"notes,omitempty"`
}

// MovementResponse salida de un movimiento registrado.
type MovementResponse struct {
	ID              string    `json:"id"`
	ProductID       string    `json:"product_id"`
	Type            string    `json:"type"`
	Quantity        int64     `json:"quantity"` // efecto con signo
	ReferenceNumber string    `json:"reference_number,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	CreatedBy       string    `json:"created_by"`
	CreatedAt       time.Time `json:"created_at"`
}

// RecordMovementResponse respuesta de POST /api/stock-movements:
// el movimiento creado más el estado resultante del producto.
type RecordMovementResponse struct {
	Movement MovementResponse `json:"movement"`
	Product  ProductSnapshot  `json:"product"`
}

// MovementListResponse listado paginado de movimientos (desc por fecha).
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// RecordSaleRequest body para POST /api/sales. UnitPrice nil usa el precio
// actual del producto.
type RecordSaleRequest struct {
	ProductID string           `json:"product_id"`
	Quantity  int64            `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
}

// SaleResponse salida de una venta.
type SaleResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	SaleDate    time.Time       `json:"sale_date"`
	CreatedBy   string          `json:"created_by"`
	CreatedAt   time.Time       `json:"created_at"`
}

// RecordSaleResponse respuesta de POST /api/sales: la venta creada más el
// estado resultante del producto.
type RecordSaleResponse struct {
	Sale    SaleResponse    `json:"sale"`
	Product ProductSnapshot `json:"product"`
}

// SaleListResponse listado paginado de ventas (desc por sale_date).
type SaleListResponse struct {
	Items []SaleResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}
