package repository

import "github.com/tu-usuario/mercado-api/internal/domain/entity"

// ProductRepository define el puerto de persistencia para Product (DIP).
// Quantity solo se actualiza vía GetForUpdate + UpdateQuantity dentro de
// una transacción del ledger; Update nunca la toca.
type ProductRepository interface {
	Create(product *entity.Product) error
	GetByID(id string) (*entity.Product, error)
	GetBySKU(sku string) (*entity.Product, error)
	Update(product *entity.Product) error
	List(limit, offset int) ([]*entity.Product, error)
	ListLowStock() ([]*entity.Product, error)
	Delete(id string) error

	// GetForUpdate bloquea la fila del producto (SELECT FOR UPDATE).
	// Solo tiene sentido dentro de una transacción.
	GetForUpdate(id string) (*entity.Product, error)
	// UpdateQuantity escribe la nueva existencia del producto.
	UpdateQuantity(id string, quantity int64) error
}
