package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest body para POST /api/products. Quantity es la
// existencia inicial; después de crear, solo el ledger la modifica.
type CreateProductRequest struct {
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	CategoryID   string          `json:"category_id"`
	SupplierID   string          `json:"supplier_id"`
	Price        decimal.Decimal `json:"price"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	Quantity     int64           `json:"quantity"`
	ReorderLevel *int64          `json:"reorder_level,omitempty"` // nil = 10
}

// UpdateProductRequest body para PUT /api/products/:id (parcial).
// No incluye quantity: la existencia solo cambia vía movimientos y ventas.
type UpdateProductRequest struct {
	Name         *string          `json:"name,omitempty"`
	Description  *string          `json:"description,omitempty"`
	CategoryID   *string          `json:"category_id,omitempty"`
	SupplierID   *string          `json:"supplier_id,omitempty"`
	Price        *decimal.Decimal `json:"price,omitempty"`
	CostPrice    *decimal.Decimal `json:"cost_price,omitempty"`
	ReorderLevel *int64           `json:"reorder_level,omitempty"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID           string          `json:"id"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	CategoryID   string          `json:"category_id"`
	SupplierID   string          `json:"supplier_id"`
	Price        decimal.Decimal `json:"price"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	Quantity     int64           `json:"quantity"`
	ReorderLevel int64           `json:"reorder_level"`
	LowStock     bool            `json:"low_stock"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ProductListResponse listado paginado de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// ProductSnapshot estado del producto devuelto junto a cada operación del
// ledger: id, existencia resultante y bandera de stock bajo.
type ProductSnapshot struct {
	ID       string `json:"id"`
	Quantity int64  `json:"quantity"`
	LowStock bool   `json:"low_stock"`
}
