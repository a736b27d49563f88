package repository

import (
	"time"

	"github.com/tu-usuario/mercado-api/internal/domain/entity"
)

// MovementFilter criterios de listado de movimientos. Campos vacíos/nil no filtran.
type MovementFilter struct {
	ProductID string
	Type      string
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// StockMovementRepository define el puerto de persistencia para StockMovement.
// Los movimientos son inmutables: solo Create y lecturas.
type StockMovementRepository interface {
	Create(movement *entity.StockMovement) error
	GetByID(id string) (*entity.StockMovement, error)
	List(filter MovementFilter) ([]*entity.StockMovement, error)
}
