package entity

import "time"

// Tipos de movimiento de stock.
const (
	MovementTypeIN  = "IN"  // entrada
	MovementTypeOUT = "OUT" // salida
	MovementTypeADJ = "ADJ" // ajuste (delta con signo)
)

// ValidMovementType verifica que el tipo sea uno de los conocidos.
func ValidMovementType(t string) bool {
	return t == MovementTypeIN || t == MovementTypeOUT || t == MovementTypeADJ
}

// StockMovement es una entrada inmutable del ledger: una vez creada nunca
// se modifica. Quantity guarda el efecto con signo sobre la existencia
// (IN positivo, OUT negativo, ADJ el delta tal cual).
type StockMovement struct {
	ID              string
	ProductID       string
	Type            string
	Quantity        int64 // efecto con signo aplicado a la existencia
	ReferenceNumber string
	Notes           string
	CreatedBy       string // actor que registró el movimiento
	CreatedAt       time.Time
}
