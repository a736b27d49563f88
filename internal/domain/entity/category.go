package entity

import "time"

// Category agrupa productos; datos de referencia sin comportamiento.
type Category struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
