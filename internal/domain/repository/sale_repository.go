package repository

import (
	"time"

	"github.com/tu-usuario/mercado-api/internal/domain/entity"
)

// SaleFilter criterios de listado de ventas. Campos vacíos/nil no filtran.
type SaleFilter struct {
	ProductID string
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// SaleRepository define el puerto de persistencia para Sale.
// Las ventas son inmutables: solo Create y lecturas.
type SaleRepository interface {
	Create(sale *entity.Sale) error
	GetByID(id string) (*entity.Sale, error)
	List(filter SaleFilter) ([]*entity.Sale, error)
}
