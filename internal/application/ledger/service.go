// Package ledger implementa el servicio de ledger de inventario: el único
// camino de escritura que muta la existencia de un producto. Handlers HTTP y
// cualquier otro caso de uso registran movimientos y ventas a través de este
// paquete; nadie más toca product.quantity.
package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/mercado-api/internal/application/dto"
	"github.com/tu-usuario/mercado-api/internal/domain"
	"github.com/tu-usuario/mercado-api/internal/domain/entity"
	"github.com/tu-usuario/mercado-api/internal/domain/repository"
)

// Service registra movimientos de stock y ventas de forma transaccional,
// con bloqueo de fila por producto (SELECT FOR UPDATE) y Commit/Rollback.
// Operaciones sobre productos distintos avanzan en paralelo; sobre el mismo
// producto se serializan en la fila bloqueada.
type Service struct {
	txRunner     TxRunner
	productRepo  repository.ProductRepository
	movementRepo repository.StockMovementRepository
	saleRepo     repository.SaleRepository
}

// NewService construye el servicio del ledger. movementRepo y saleRepo se
// usan solo para lecturas; las escrituras pasan por los repos de la tx.
func NewService(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	movementRepo repository.StockMovementRepository,
	saleRepo repository.SaleRepository,
) *Service {
	return &Service{
		txRunner:     txRunner,
		productRepo:  productRepo,
		movementRepo: movementRepo,
		saleRepo:     saleRepo,
	}
}

// signedEffect traduce tipo+cantidad al delta aplicado a la existencia.
// IN suma, OUT resta. ADJ aplica el delta con su signo: un ajuste positivo
// entra stock y uno negativo lo saca.
func signedEffect(movementType string, quantity int64) int64 {
	switch movementType {
	case entity.MovementTypeIN:
		return quantity
	case entity.MovementTypeOUT:
		return -quantity
	default: // ADJ
		return quantity
	}
}

// validateMovement revisa tipo y cantidad antes de abrir la transacción.
func validateMovement(in dto.RecordMovementRequest) error {
	if in.ProductID == "" || !entity.ValidMovementType(in.Type) {
		return domain.ErrInvalidInput
	}
	switch in.Type {
	case entity.MovementTypeIN, entity.MovementTypeOUT:
		if in.Quantity <= 0 {
			return domain.ErrInvalidQuantity
		}
	case entity.MovementTypeADJ:
		if in.Quantity == 0 {
			return domain.ErrInvalidQuantity
		}
	}
	return nil
}

// RecordMovement valida la petición, abre una transacción, bloquea la fila
// del producto, verifica existencia disponible para efectos negativos y
// persiste el movimiento junto con la nueva cantidad.
//
// Errores: ErrInvalidInput / ErrInvalidQuantity (entrada), ErrProductNotFound,
// ErrInsufficientStock (efecto negativo mayor que la existencia).
func (s *Service) RecordMovement(ctx context.Context, actorID string, in dto.RecordMovementRequest) (*dto.RecordMovementResponse, error) {
	if err := validateMovement(in); err != nil {
		return nil, err
	}
	// Chequeo de existencia fuera de la tx: rechaza productos desconocidos
	// sin abrir transacción. El chequeo definitivo ocurre bajo el lock.
	product, err := s.productRepo.GetByID(in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}

	var out dto.RecordMovementResponse
	err = s.txRunner.Run(ctx, func(
		movRepo repository.StockMovementRepository,
		_ repository.SaleRepository,
		productRepo repository.ProductRepository,
	) error {
		// Bloquea la fila del producto: dos operaciones concurrentes sobre
		// el mismo producto no pueden intercalar su read-modify-write.
		p, err := productRepo.GetForUpdate(in.ProductID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrProductNotFound
		}
		delta := signedEffect(in.Type, in.Quantity)
		if delta < 0 && p.Quantity < -delta {
			return domain.ErrInsufficientStock
		}
		newQty := p.Quantity + delta
		if err := productRepo.UpdateQuantity(p.ID, newQty); err != nil {
			return err
		}
		now := time.Now()
		mov := &entity.StockMovement{
			ID:              uuid.New().String(),
			ProductID:       p.ID,
			Type:            in.Type,
			Quantity:        delta,
			ReferenceNumber: in.ReferenceNumber,
			Notes:           in.Notes,
			CreatedBy:       actorID,
			CreatedAt:       now,
		}
		if err := movRepo.Create(mov); err != nil {
			return err
		}
		out = dto.RecordMovementResponse{
			Movement: toMovementResponse(mov),
			Product: dto.ProductSnapshot{
				ID:       p.ID,
				Quantity: newQty,
				LowStock: newQty <= p.ReorderLevel,
			},
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// RecordSale valida la petición, bloquea la fila del producto, verifica
// existencia suficiente y persiste la venta junto con la nueva cantidad.
// UnitPrice nil copia el precio actual del producto; el total se calcula
// con aritmética decimal exacta.
//
// Errores: ErrInvalidInput / ErrInvalidQuantity, ErrProductNotFound,
// ErrInsufficientStock.
func (s *Service) RecordSale(ctx context.Context, actorID string, in dto.RecordSaleRequest) (*dto.RecordSaleResponse, error) {
	if in.ProductID == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.Quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	if in.UnitPrice != nil && in.UnitPrice.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	product, err := s.productRepo.GetByID(in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}

	var out dto.RecordSaleResponse
	err = s.txRunner.Run(ctx, func(
		_ repository.StockMovementRepository,
		saleRepo repository.SaleRepository,
		productRepo repository.ProductRepository,
	) error {
		p, err := productRepo.GetForUpdate(in.ProductID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrProductNotFound
		}
		if p.Quantity < in.Quantity {
			return domain.ErrInsufficientStock
		}
		// El precio se copia al momento de la venta, bajo el mismo lock.
		unitPrice := p.Price
		if in.UnitPrice != nil {
			unitPrice = *in.UnitPrice
		}
		total := unitPrice.Mul(decimal.NewFromInt(in.Quantity))

		newQty := p.Quantity - in.Quantity
		if err := productRepo.UpdateQuantity(p.ID, newQty); err != nil {
			return err
		}
		now := time.Now()
		sale := &entity.Sale{
			ID:          uuid.New().String(),
			ProductID:   p.ID,
			Quantity:    in.Quantity,
			UnitPrice:   unitPrice,
			TotalAmount: total,
			SaleDate:    now,
			CreatedBy:   actorID,
			CreatedAt:   now,
		}
		if err := saleRepo.Create(sale); err != nil {
			return err
		}
		out = dto.RecordSaleResponse{
			Sale: toSaleResponse(sale),
			Product: dto.ProductSnapshot{
				ID:       p.ID,
				Quantity: newQty,
				LowStock: newQty <= p.ReorderLevel,
			},
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func toMovementResponse(m *entity.StockMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:              m.ID,
		ProductID:       m.ProductID,
		Type:            m.Type,
		Quantity:        m.Quantity,
		ReferenceNumber: m.ReferenceNumber,
		Notes:           m.Notes,
		CreatedBy:       m.CreatedBy,
		CreatedAt:       m.CreatedAt,
	}
}

func toSaleResponse(s *entity.Sale) dto.SaleResponse {
	return dto.SaleResponse{
		ID:          s.ID,
		ProductID:   s.ProductID,
		Quantity:    s.Quantity,
		UnitPrice:   s.UnitPrice,
		TotalAmount: s.TotalAmount,
		SaleDate:    s.SaleDate,
		CreatedBy:   s.CreatedBy,
		CreatedAt:   s.CreatedAt,
	}
}
