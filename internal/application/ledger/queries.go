package ledger

import (
	"github.com/tu-usuario/mercado-api/internal/application/dto"
	"github.com/tu-usuario/mercado-api/internal/domain/repository"
)

// Lecturas del ledger: listados inmutables, orden descendente por fecha.
// No abren transacción; una lectura ligeramente desfasada es aceptable.

// ListMovements lista movimientos con filtros opcionales.
func (s *Service) ListMovements(filter repository.MovementFilter) (*dto.MovementListResponse, error) {
	list, err := s.movementRepo.List(filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, toMovementResponse(m))
	}
	return &dto.MovementListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset},
	}, nil
}

// GetMovement obtiene un movimiento por ID; nil si no existe.
func (s *Service) GetMovement(id string) (*dto.MovementResponse, error) {
	m, err := s.movementRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, nil
	}
	out := toMovementResponse(m)
	return &out, nil
}

// ListSales lista ventas con filtros opcionales.
func (s *Service) ListSales(filter repository.SaleFilter) (*dto.SaleListResponse, error) {
	list, err := s.saleRepo.List(filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SaleResponse, 0, len(list))
	for _, sl := range list {
		items = append(items, toSaleResponse(sl))
	}
	return &dto.SaleListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset},
	}, nil
}

// GetSale obtiene una venta por ID; nil si no existe.
func (s *Service) GetSale(id string) (*dto.SaleResponse, error) {
	sl, err := s.saleRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if sl == nil {
		return nil, nil
	}
	out := toSaleResponse(sl)
	return &out, nil
}
