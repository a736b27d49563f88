package ledger_test

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/mercado-api/internal/application/dto"
	"github.com/tu-usuario/mercado-api/internal/application/ledger"
	"github.com/tu-usuario/mercado-api/internal/domain"
	"github.com/tu-usuario/mercado-api/internal/domain/entity"
	"github.com/tu-usuario/mercado-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
// ──────────────────────────────────────────────────────────────────────────────

// memStore emula la base de datos: productos, movimientos y ventas.
// El mutex del fakeTxRunner serializa el read-modify-write igual que el
// SELECT FOR UPDATE sobre la fila del producto en PostgreSQL.
type memStore struct {
	mu        sync.Mutex   // serializa las "transacciones" (fakeTxRunner.Run)
	pmu       sync.RWMutex // protege lecturas/escrituras de productos fuera de la tx
	products  map[string]*entity.Product
	movements []*entity.StockMovement
	sales     []*entity.Sale
}

func newMemStore(products ...*entity.Product) *memStore {
	s := &memStore{products: map[string]*entity.Product{}}
	for _, p := range products {
		cp := *p
		s.products[p.ID] = &cp
	}
	return s
}

type fakeProductRepo struct{ store *memStore }

func (r *fakeProductRepo) Create(p *entity.Product) error { r.store.products[p.ID] = p; return nil }
func (r *fakeProductRepo) GetByID(id string) (*entity.Product, error) {
	r.store.pmu.RLock()
	defer r.store.pmu.RUnlock()
	p, ok := r.store.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}
func (r *fakeProductRepo) GetBySKU(string) (*entity.Product, error)     { return nil, nil }
func (r *fakeProductRepo) Update(*entity.Product) error                 { return nil }
func (r *fakeProductRepo) List(int, int) ([]*entity.Product, error)     { return nil, nil }
func (r *fakeProductRepo) ListLowStock() ([]*entity.Product, error)     { return nil, nil }
func (r *fakeProductRepo) Delete(string) error                          { return nil }
func (r *fakeProductRepo) GetForUpdate(id string) (*entity.Product, error) {
	return r.GetByID(id)
}
func (r *fakeProductRepo) UpdateQuantity(id string, quantity int64) error {
	r.store.pmu.Lock()
	defer r.store.pmu.Unlock()
	p, ok := r.store.products[id]
	if !ok {
		return domain.ErrProductNotFound
	}
	p.Quantity = quantity
	return nil
}

type fakeMovementRepo struct{ store *memStore }

func (r *fakeMovementRepo) Create(m *entity.StockMovement) error {
	r.store.movements = append(r.store.movements, m)
	return nil
}
func (r *fakeMovementRepo) GetByID(id string) (*entity.StockMovement, error) {
	for _, m := range r.store.movements {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, nil
}
func (r *fakeMovementRepo) List(repository.MovementFilter) ([]*entity.StockMovement, error) {
	return r.store.movements, nil
}

type fakeSaleRepo struct{ store *memStore }

func (r *fakeSaleRepo) Create(s *entity.Sale) error {
	r.store.sales = append(r.store.sales, s)
	return nil
}
func (r *fakeSaleRepo) GetByID(id string) (*entity.Sale, error) {
	for _, s := range r.store.sales {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, nil
}
func (r *fakeSaleRepo) List(repository.SaleFilter) ([]*entity.Sale, error) {
	return r.store.sales, nil
}

// fakeTxRunner serializa las "transacciones" con un mutex: mientras una fn
// está dentro, ninguna otra puede leer ni escribir la existencia.
type fakeTxRunner struct{ store *memStore }

func (t *fakeTxRunner) Run(_ context.Context, fn func(
	movRepo repository.StockMovementRepository,
	saleRepo repository.SaleRepository,
	productRepo repository.ProductRepository,
) error) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	return fn(
		&fakeMovementRepo{store: t.store},
		&fakeSaleRepo{store: t.store},
		&fakeProductRepo{store: t.store},
	)
}

func newService(store *memStore) *ledger.Service {
	return ledger.NewService(
		&fakeTxRunner{store: store},
		&fakeProductRepo{store: store},
		&fakeMovementRepo{store: store},
		&fakeSaleRepo{store: store},
	)
}

func testProduct(qty, reorder int64) *entity.Product {
	return &entity.Product{
		ID:           "p-1",
		SKU:          "ARROZ-1KG",
		Name:         "Arroz 1kg",
		Price:        decimal.RequireFromString("2.50"),
		CostPrice:    decimal.RequireFromString("1.80"),
		Quantity:     qty,
		ReorderLevel: reorder,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// RecordMovement
// ──────────────────────────────────────────────────────────────────────────────

func TestRecordMovement_INSumaExistencia(t *testing.T) {
	store := newMemStore(testProduct(10, 5))
	svc := newService(store)

	out, err := svc.RecordMovement(context.Background(), "user-1", dto.RecordMovementRequest{
		ProductID: "p-1", Type: entity.MovementTypeIN, Quantity: 7, ReferenceNumber: "PO-001",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(17), out.Product.Quantity)
	assert.Equal(t, int64(7), out.Movement.Quantity, "el efecto de IN es positivo")
	assert.Equal(t, "user-1", out.Movement.CreatedBy)
	assert.Equal(t, int64(17), store.products["p-1"].Quantity)
}

func TestRecordMovement_OUTRestaExistencia(t *testing.T) {
	store := newMemStore(testProduct(10, 5))
	svc := newService(store)

	out, err := svc.RecordMovement(context.Background(), "user-1", dto.RecordMovementRequest{
		ProductID: "p-1", Type: entity.MovementTypeOUT, Quantity: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(6), out.Product.Quantity)
	assert.Equal(t, int64(-4), out.Movement.Quantity, "el efecto de OUT es negativo")
}

// OUT por más de la existencia debe fallar y dejar la cantidad intacta.
func TestRecordMovement_OUTInsuficiente(t *testing.T) {
	store := newMemStore(testProduct(10, 5))
	svc := newService(store)

	_, err := svc.RecordMovement(context.Background(), "user-1", dto.RecordMovementRequest{
		ProductID: "p-1", Type: entity.MovementTypeOUT, Quantity: 11,
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int64(10), store.products["p-1"].Quantity, "la existencia no debe cambiar")
	assert.Empty(t, store.movements, "no debe quedar movimiento en el ledger")
}

// Política ADJ: delta con signo. Positivo entra, negativo sale, y un negativo
// mayor que la existencia falla igual que un OUT.
func TestRecordMovement_ADJDeltaConSigno(t *testing.T) {
	store := newMemStore(testProduct(10, 5))
	svc := newService(store)
	ctx := context.Background()

	out, err := svc.RecordMovement(ctx, "user-1", dto.RecordMovementRequest{
		ProductID: "p-1", Type: entity.MovementTypeADJ, Quantity: 5, Notes: "conteo físico",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(15), out.Product.Quantity)

	out, err = svc.RecordMovement(ctx, "user-1", dto.RecordMovementRequest{
		ProductID: "p-1", Type: entity.MovementTypeADJ, Quantity: -3,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(12), out.Product.Quantity)

	_, err = svc.RecordMovement(ctx, "user-1", dto.RecordMovementRequest{
		ProductID: "p-1", Type: entity.MovementTypeADJ, Quantity: -100,
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int64(12), store.products["p-1"].Quantity)
}

func TestRecordMovement_CantidadInvalida(t *testing.T) {
	store := newMemStore(testProduct(10, 5))
	svc := newService(store)
	ctx := context.Background()

	cases := []dto.RecordMovementRequest{
		{ProductID: "p-1", Type: entity.MovementTypeIN, Quantity: 0},
		{ProductID: "p-1", Type: entity.MovementTypeIN, Quantity: -5},
		{ProductID: "p-1", Type: entity.MovementTypeOUT, Quantity: 0},
		{ProductID: "p-1", Type: entity.MovementTypeOUT, Quantity: -2},
		{ProductID: "p-1", Type: entity.MovementTypeADJ, Quantity: 0},
	}
	for _, in := range cases {
		_, err := svc.RecordMovement(ctx, "user-1", in)
		assert.ErrorIs(t, err, domain.ErrInvalidQuantity, "tipo=%s qty=%d", in.Type, in.Quantity)
	}
	assert.Equal(t, int64(10), store.products["p-1"].Quantity)
}

func TestRecordMovement_ProductoDesconocido(t *testing.T) {
	svc := newService(newMemStore())
	_, err := svc.RecordMovement(context.Background(), "user-1", dto.RecordMovementRequest{
		ProductID: "no-existe", Type: entity.MovementTypeIN, Quantity: 1,
	})
	require.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestRecordMovement_TipoDesconocido(t *testing.T) {
	svc := newService(newMemStore(testProduct(10, 5)))
	_, err := svc.RecordMovement(context.Background(), "user-1", dto.RecordMovementRequest{
		ProductID: "p-1", Type: "TRANSFER", Quantity: 1,
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

// Propiedad del ledger: la existencia final es la inicial más la suma de
// efectos con signo aplicados en orden de commit.
func TestLedger_SumaDeEfectos(t *testing.T) {
	store := newMemStore(testProduct(10, 5))
	svc := newService(store)
	ctx := context.Background()

	steps := []dto.RecordMovementRequest{
		{ProductID: "p-1", Type: entity.MovementTypeIN, Quantity: 20},
		{ProductID: "p-1", Type: entity.MovementTypeOUT, Quantity: 8},
		{ProductID: "p-1", Type: entity.MovementTypeADJ, Quantity: -2},
		{ProductID: "p-1", Type: entity.MovementTypeIN, Quantity: 1},
	}
	for _, in := range steps {
		_, err := svc.RecordMovement(ctx, "user-1", in)
		require.NoError(t, err)
	}
	_, err := svc.RecordSale(ctx, "user-1", dto.RecordSaleRequest{ProductID: "p-1", Quantity: 6})
	require.NoError(t, err)

	var sum int64
	for _, m := range store.movements {
		sum += m.Quantity
	}
	for _, s := range store.sales {
		sum -= s.Quantity
	}
	assert.Equal(t, int64(10)+sum, store.products["p-1"].Quantity,
		"existencia final = inicial + suma de efectos con signo")
	assert.Equal(t, int64(15), store.products["p-1"].Quantity)
}

// Chequeo de lost-update: dos IN(5) concurrentes sobre existencia 10 deben
// terminar en 20, nunca 15.
func TestLedger_ConcurrenciaSinLostUpdate(t *testing.T) {
	store := newMemStore(testProduct(10, 5))
	svc := newService(store)

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.RecordMovement(context.Background(), "user-1", dto.RecordMovementRequest{
				ProductID: "p-1", Type: entity.MovementTypeIN, Quantity: 5,
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, int64(20), store.products["p-1"].Quantity)
}

// Muchas salidas concurrentes nunca dejan la existencia negativa: las que no
// alcanzan stock fallan con ErrInsufficientStock.
func TestLedger_ConcurrenciaNuncaNegativo(t *testing.T) {
	store := newMemStore(testProduct(10, 5))
	svc := newService(store)

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.RecordMovement(context.Background(), "user-1", dto.RecordMovementRequest{
				ProductID: "p-1", Type: entity.MovementTypeOUT, Quantity: 3,
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	okCount := 0
	for err := range errs {
		if err == nil {
			okCount++
			continue
		}
		require.ErrorIs(t, err, domain.ErrInsufficientStock)
	}
	assert.Equal(t, 3, okCount, "solo caben 3 salidas de 3 unidades en 10")
	assert.Equal(t, int64(1), store.products["p-1"].Quantity)
	assert.GreaterOrEqual(t, store.products["p-1"].Quantity, int64(0))
}

// ──────────────────────────────────────────────────────────────────────────────
// RecordSale
// ──────────────────────────────────────────────────────────────────────────────

func TestRecordSale_TotalDecimalExacto(t *testing.T) {
	store := newMemStore(testProduct(10, 5))
	svc := newService(store)

	unitPrice := decimal.RequireFromString("2.50")
	out, err := svc.RecordSale(context.Background(), "user-1", dto.RecordSaleRequest{
		ProductID: "p-1", Quantity: 3, UnitPrice: &unitPrice,
	})
	require.NoError(t, err)
	assert.True(t, out.Sale.TotalAmount.Equal(decimal.RequireFromString("7.50")),
		"3 × 2.50 debe ser exactamente 7.50, fue %s", out.Sale.TotalAmount)
	assert.Equal(t, int64(7), out.Product.Quantity)
}

func TestRecordSale_PrecioPorDefectoDelProducto(t *testing.T) {
	store := newMemStore(testProduct(10, 5))
	svc := newService(store)

	out, err := svc.RecordSale(context.Background(), "user-1", dto.RecordSaleRequest{
		ProductID: "p-1", Quantity: 2,
	})
	require.NoError(t, err)
	assert.True(t, out.Sale.UnitPrice.Equal(decimal.RequireFromString("2.50")),
		"sin override se copia el precio actual del producto")
	assert.True(t, out.Sale.TotalAmount.Equal(decimal.RequireFromString("5.00")))
}

func TestRecordSale_InsuficienteNoDejaRastro(t *testing.T) {
	store := newMemStore(testProduct(2, 5))
	svc := newService(store)

	_, err := svc.RecordSale(context.Background(), "user-1", dto.RecordSaleRequest{
		ProductID: "p-1", Quantity: 3,
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int64(2), store.products["p-1"].Quantity, "la existencia no debe cambiar")
	assert.Empty(t, store.sales, "no debe quedar venta registrada")
}

func TestRecordSale_CantidadInvalida(t *testing.T) {
	svc := newService(newMemStore(testProduct(10, 5)))
	for _, qty := range []int64{0, -1} {
		_, err := svc.RecordSale(context.Background(), "user-1", dto.RecordSaleRequest{
			ProductID: "p-1", Quantity: qty,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidQuantity, "qty=%d", qty)
	}
}

func TestRecordSale_ProductoDesconocido(t *testing.T) {
	svc := newService(newMemStore())
	_, err := svc.RecordSale(context.Background(), "user-1", dto.RecordSaleRequest{
		ProductID: "no-existe", Quantity: 1,
	})
	require.ErrorIs(t, err, domain.ErrProductNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Bandera de stock bajo en el snapshot
// ──────────────────────────────────────────────────────────────────────────────

// Límite inclusivo: quantity == reorder_level es stock bajo; una entrada de
// una unidad lo saca de la lista.
func TestSnapshot_LowStockLimiteInclusivo(t *testing.T) {
	store := newMemStore(testProduct(10, 10))
	svc := newService(store)
	ctx := context.Background()

	require.True(t, store.products["p-1"].LowStock(), "en el límite cuenta como stock bajo")

	out, err := svc.RecordMovement(ctx, "user-1", dto.RecordMovementRequest{
		ProductID: "p-1", Type: entity.MovementTypeIN, Quantity: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(11), out.Product.Quantity)
	assert.False(t, out.Product.LowStock, "11 > 10 ya no es stock bajo")

	out, err = svc.RecordMovement(ctx, "user-1", dto.RecordMovementRequest{
		ProductID: "p-1", Type: entity.MovementTypeOUT, Quantity: 1,
	})
	require.NoError(t, err)
	assert.True(t, out.Product.LowStock, "de vuelta en el límite vuelve a ser stock bajo")
}
