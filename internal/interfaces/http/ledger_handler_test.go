package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/mercado-api/internal/application/dto"
	"github.com/tu-usuario/mercado-api/internal/application/ledger"
	"github.com/tu-usuario/mercado-api/internal/domain"
	"github.com/tu-usuario/mercado-api/internal/domain/entity"
	"github.com/tu-usuario/mercado-api/internal/domain/repository"
	apphttp "github.com/tu-usuario/mercado-api/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria para el ledger a nivel HTTP
// ──────────────────────────────────────────────────────────────────────────────

type ledgerStore struct {
	mu        sync.Mutex
	products  map[string]*entity.Product
	movements []*entity.StockMovement
	sales     []*entity.Sale
}

type stubProductRepo struct{ store *ledgerStore }

func (r *stubProductRepo) Create(p *entity.Product) error { r.store.products[p.ID] = p; return nil }
func (r *stubProductRepo) GetByID(id string) (*entity.Product, error) {
	p, ok := r.store.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}
func (r *stubProductRepo) GetBySKU(string) (*entity.Product, error) { return nil, nil }
func (r *stubProductRepo) Update(*entity.Product) error             { return nil }
func (r *stubProductRepo) List(int, int) ([]*entity.Product, error) { return nil, nil }
func (r *stubProductRepo) ListLowStock() ([]*entity.Product, error) { return nil, nil }
func (r *stubProductRepo) Delete(string) error                      { return nil }
func (r *stubProductRepo) GetForUpdate(id string) (*entity.Product, error) {
	return r.GetByID(id)
}
func (r *stubProductRepo) UpdateQuantity(id string, quantity int64) error {
	p, ok := r.store.products[id]
	if !ok {
		return domain.ErrProductNotFound
	}
	p.Quantity = quantity
	return nil
}

type stubMovementRepo struct{ store *ledgerStore }

func (r *stubMovementRepo) Create(m *entity.StockMovement) error {
	r.store.movements = append(r.store.movements, m)
	return nil
}
func (r *stubMovementRepo) GetByID(id string) (*entity.StockMovement, error) {
	for _, m := range r.store.movements {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, nil
}
func (r *stubMovementRepo) List(repository.MovementFilter) ([]*entity.StockMovement, error) {
	return r.store.movements, nil
}

type stubSaleRepo struct{ store *ledgerStore }

func (r *stubSaleRepo) Create(s *entity.Sale) error {
	r.store.sales = append(r.store.sales, s)
	return nil
}
func (r *stubSaleRepo) GetByID(id string) (*entity.Sale, error) {
	for _, s := range r.store.sales {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, nil
}
func (r *stubSaleRepo) List(repository.SaleFilter) ([]*entity.Sale, error) {
	return r.store.sales, nil
}

type stubTxRunner struct{ store *ledgerStore }

func (t *stubTxRunner) Run(_ context.Context, fn func(
	movRepo repository.StockMovementRepository,
	saleRepo repository.SaleRepository,
	productRepo repository.ProductRepository,
) error) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	// Emula rollback: si fn falla, se restaura el snapshot previo.
	snapshot := map[string]entity.Product{}
	for id, p := range t.store.products {
		snapshot[id] = *p
	}
	nMovs, nSales := len(t.store.movements), len(t.store.sales)
	err := fn(&stubMovementRepo{t.store}, &stubSaleRepo{t.store}, &stubProductRepo{t.store})
	if err != nil {
		for id := range t.store.products {
			cp := snapshot[id]
			t.store.products[id] = &cp
		}
		t.store.movements = t.store.movements[:nMovs]
		t.store.sales = t.store.sales[:nSales]
	}
	return err
}

// buildLedgerApp monta las rutas del ledger detrás del middleware de auth,
// igual que el router real.
func buildLedgerApp(store *ledgerStore) *fiber.App {
	svc := ledger.NewService(
		&stubTxRunner{store},
		&stubProductRepo{store},
		&stubMovementRepo{store},
		&stubSaleRepo{store},
	)
	handler := apphttp.NewLedgerHandler(svc)

	app := fiber.New()
	grp := app.Group("/api", apphttp.AuthMiddleware(testJWTSecret))
	grp.Post("/stock-movements", handler.RecordMovement)
	grp.Get("/stock-movements", handler.ListMovements)
	grp.Post("/sales", handler.RecordSale)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, body any, authHeader string) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func seedStore(quantity int64, price string) (*ledgerStore, *entity.Product) {
	p := &entity.Product{
		ID:           "11111111-1111-1111-1111-111111111111",
		SKU:          "ARROZ-1KG",
		Name:         "Arroz blanco 1kg",
		Price:        decimal.RequireFromString(price),
		Quantity:     quantity,
		ReorderLevel: 10,
	}
	store := &ledgerStore{products: map[string]*entity.Product{p.ID: p}}
	return store, p
}

// ──────────────────────────────────────────────────────────────────────────────
// POST /api/stock-movements
// ──────────────────────────────────────────────────────────────────────────────

func TestRecordMovementHTTP_INRetorna201ConSnapshot(t *testing.T) {
	store, p := seedStore(10, "2.50")
	app := buildLedgerApp(store)

	resp := postJSON(t, app, "/api/stock-movements", dto.RecordMovementRequest{
		ProductID: p.ID,
		Type:      entity.MovementTypeIN,
		Quantity:  5,
	}, tokenForRole(t, "staff"))
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var out dto.RecordMovementResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, int64(5), out.Movement.Quantity, "IN guarda efecto positivo")
	assert.Equal(t, testUserID, out.Movement.CreatedBy, "el actor sale del token")
	assert.Equal(t, int64(15), out.Product.Quantity, "snapshot con la existencia resultante")
}

func TestRecordMovementHTTP_OUTInsuficienteRetorna409(t *testing.T) {
	store, p := seedStore(3, "2.50")
	app := buildLedgerApp(store)

	resp := postJSON(t, app, "/api/stock-movements", dto.RecordMovementRequest{
		ProductID: p.ID,
		Type:      entity.MovementTypeOUT,
		Quantity:  5,
	}, tokenForRole(t, "staff"))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	var out dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "INSUFFICIENT_STOCK", out.Code)
	assert.Equal(t, int64(3), store.products[p.ID].Quantity, "la existencia no cambia")
	assert.Empty(t, store.movements, "no queda rastro en el ledger")
}

func TestRecordMovementHTTP_ProductoDesconocidoRetorna404(t *testing.T) {
	store, _ := seedStore(10, "2.50")
	app := buildLedgerApp(store)

	resp := postJSON(t, app, "/api/stock-movements", dto.RecordMovementRequest{
		ProductID: "99999999-9999-9999-9999-999999999999",
		Type:      entity.MovementTypeIN,
		Quantity:  5,
	}, tokenForRole(t, "staff"))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var out dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "PRODUCT_NOT_FOUND", out.Code)
}

func TestRecordMovementHTTP_CantidadInvalidaRetorna400(t *testing.T) {
	store, p := seedStore(10, "2.50")
	app := buildLedgerApp(store)

	resp := postJSON(t, app, "/api/stock-movements", dto.RecordMovementRequest{
		ProductID: p.ID,
		Type:      entity.MovementTypeIN,
		Quantity:  0,
	}, tokenForRole(t, "staff"))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var out dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "INVALID_QUANTITY", out.Code)
}

func TestRecordMovementHTTP_SinTokenRetorna401(t *testing.T) {
	store, p := seedStore(10, "2.50")
	app := buildLedgerApp(store)

	resp := postJSON(t, app, "/api/stock-movements", dto.RecordMovementRequest{
		ProductID: p.ID,
		Type:      entity.MovementTypeIN,
		Quantity:  5,
	}, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Empty(t, store.movements)
}

// ──────────────────────────────────────────────────────────────────────────────
// POST /api/sales
// ──────────────────────────────────────────────────────────────────────────────

func TestRecordSaleHTTP_TotalCalculadoEnServidor(t *testing.T) {
	store, p := seedStore(10, "2.50")
	app := buildLedgerApp(store)

	resp := postJSON(t, app, "/api/sales", dto.RecordSaleRequest{
		ProductID: p.ID,
		Quantity:  3,
	}, tokenForRole(t, "staff"))
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var out dto.RecordSaleResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.True(t, decimal.RequireFromString("7.50").Equal(out.Sale.TotalAmount),
		"3 × 2.50 debe ser exactamente 7.50, no 7.499…")
	assert.Equal(t, int64(7), out.Product.Quantity)
	assert.Len(t, store.sales, 1)
}

func TestRecordSaleHTTP_InsuficienteRetorna409(t *testing.T) {
	store, p := seedStore(2, "2.50")
	app := buildLedgerApp(store)

	resp := postJSON(t, app, "/api/sales", dto.RecordSaleRequest{
		ProductID: p.ID,
		Quantity:  3,
	}, tokenForRole(t, "staff"))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Empty(t, store.sales, "venta rechazada no deja registro")
	assert.Equal(t, int64(2), store.products[p.ID].Quantity)
}
