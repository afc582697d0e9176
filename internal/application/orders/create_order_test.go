package orders_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/application/orders"
	"github.com/jhoicas/inventario-ledger/internal/application/ports"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

type recorder struct {
	mu     sync.Mutex
	events []ports.Event
	err    error
}

func (r *recorder) Notify(_ context.Context, evt ports.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
	return r.err
}

type metricsSpy struct {
	ports.NopMetrics
	mu       sync.Mutex
	created  int
	rejected []string
}

func (m *metricsSpy) OrderCreated(int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created++
}

func (m *metricsSpy) OrderRejected(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejected = append(m.rejected, kind)
}

type fixture struct {
	store   *memory.Store
	uc      *orders.CreateOrderUseCase
	rec     *recorder
	metrics *metricsSpy
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	ctx := context.Background()
	txRunner := memory.NewTxRunner(store)

	// El stock inicial entra por el libro, como en cmd/seed
	adjust := inventory.NewAdjustStockUseCase(txRunner, nil, nil, logger.Nop())
	require.NoError(t, adjust.ImportCatalog(ctx, inventory.CatalogImport{
		TenantID: "t1",
		Products: []*entity.Product{{ID: "p1", Name: "Camiseta", Variants: []entity.ProductVariant{{SKU: "A"}, {SKU: "B"}}}},
		Opening:  []inventory.OpeningStock{{ProductID: "p1", SKU: "A", Quantity: 10}, {ProductID: "p1", SKU: "B", Quantity: 3}},
	}))
	require.NoError(t, adjust.ImportCatalog(ctx, inventory.CatalogImport{
		TenantID: "t2",
		Products: []*entity.Product{{ID: "p2", Name: "Gorra", Variants: []entity.ProductVariant{{SKU: "A"}}}},
		Opening:  []inventory.OpeningStock{{ProductID: "p2", SKU: "A", Quantity: 10}},
	}))

	rec := &recorder{}
	m := &metricsSpy{}
	uc := orders.NewCreateOrderUseCase(txRunner, store.Repos().Orders, rec, m, logger.Nop())
	return &fixture{store: store, uc: uc, rec: rec, metrics: m}
}

func (f *fixture) stock(t *testing.T, tenant, productID, sku string) int64 {
	t.Helper()
	v, err := f.store.Repos().Products.GetVariant(context.Background(), tenant, productID, sku)
	require.NoError(t, err)
	require.NotNil(t, v)
	return v.Stock
}

// assertLedgerMatchesStock verifica stock == Σ movimientos para cada sku.
func (f *fixture) assertLedgerMatchesStock(t *testing.T, tenant, productID string, skus ...string) {
	t.Helper()
	ledger := inventory.NewLedgerUseCase(f.store.Repos().Movements)
	for _, sku := range skus {
		rec, err := ledger.ReconcileVariant(context.Background(), tenant, productID, sku)
		require.NoError(t, err)
		assert.True(t, rec.Consistent, "sku %s: stock %d, libro %d", sku, rec.Stock, rec.LedgerSum)
	}
}

func outMovements(t *testing.T, f *fixture, tenant string) []*entity.StockMovement {
	t.Helper()
	movs, err := f.store.Repos().Movements.List(context.Background(), tenant, repository.MovementFilter{Type: entity.MovementTypeOUT})
	require.NoError(t, err)
	return movs
}

// ─────────────────────────────────────────────────────────────────────────────
// Camino feliz
// ─────────────────────────────────────────────────────────────────────────────

func TestCreateOrder_ConfirmaYDescuenta(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	order, err := f.uc.CreateOrder(ctx, "t1", []orders.ItemInput{
		{ProductID: "p1", VariantSKU: "A", Quantity: 4, Price: decimal.RequireFromString("12.50")},
		{ProductID: "p1", VariantSKU: "B", Quantity: 1, Price: decimal.RequireFromString("3")},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusConfirmed, order.Status)
	assert.True(t, decimal.RequireFromString("53").Equal(order.TotalAmount), "total %s", order.TotalAmount)
	assert.Equal(t, int64(6), f.stock(t, "t1", "p1", "A"))
	assert.Equal(t, int64(2), f.stock(t, "t1", "p1", "B"))
	f.assertLedgerMatchesStock(t, "t1", "p1", "A", "B")

	movs := outMovements(t, f, "t1")
	require.Len(t, movs, 2)
	for _, m := range movs {
		assert.Equal(t, entity.MovementTypeOUT, m.Type)
		assert.Equal(t, order.ID, m.ReferenceID)
		assert.Negative(t, m.Quantity)
	}

	require.Len(t, f.rec.events, 2)
	assert.Equal(t, ports.EventOrderCreated, f.rec.events[0].Type)
	assert.Equal(t, ports.EventStockChanged, f.rec.events[1].Type)
	assert.Equal(t, 1, f.metrics.created)

	got, err := f.uc.GetOrder(ctx, "t1", order.ID)
	require.NoError(t, err)
	assert.Len(t, got.Items, 2)
}

func TestCreateOrder_SkuRepetidoSeDescuentaEnSecuencia(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.CreateOrder(context.Background(), "t1", []orders.ItemInput{
		{ProductID: "p1", VariantSKU: "A", Quantity: 6},
		{ProductID: "p1", VariantSKU: "A", Quantity: 4},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), f.stock(t, "t1", "p1", "A"))
	f.assertLedgerMatchesStock(t, "t1", "p1", "A")

	_, err = f.uc.CreateOrder(context.Background(), "t1", []orders.ItemInput{
		{ProductID: "p1", VariantSKU: "B", Quantity: 2},
		{ProductID: "p1", VariantSKU: "B", Quantity: 2},
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int64(3), f.stock(t, "t1", "p1", "B"))
	f.assertLedgerMatchesStock(t, "t1", "p1", "B")
}

// ─────────────────────────────────────────────────────────────────────────────
// Atomicidad y validación
// ─────────────────────────────────────────────────────────────────────────────

func TestCreateOrder_FalloParcialNoDejaRastro(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.CreateOrder(ctx, "t1", []orders.ItemInput{
		{ProductID: "p1", VariantSKU: "A", Quantity: 5},
		{ProductID: "p1", VariantSKU: "B", Quantity: 1000},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Contains(t, err.Error(), "sku B")
	assert.Contains(t, err.Error(), "1000")

	assert.Equal(t, int64(10), f.stock(t, "t1", "p1", "A"))
	assert.Empty(t, outMovements(t, f, "t1"))
	f.assertLedgerMatchesStock(t, "t1", "p1", "A", "B")
	list, err := f.uc.ListOrders(ctx, "t1", 0, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Empty(t, f.rec.events)
	assert.Equal(t, []string{domain.KindInsufficientStock}, f.metrics.rejected)
}

func TestCreateOrder_EntradaInvalida(t *testing.T) {
	f := newFixture(t)
	cases := map[string][]orders.ItemInput{
		"sin líneas":      nil,
		"cantidad cero":   {{ProductID: "p1", VariantSKU: "A", Quantity: 0}},
		"precio negativo": {{ProductID: "p1", VariantSKU: "A", Quantity: 1, Price: decimal.NewFromInt(-1)}},
		"sin sku":         {{ProductID: "p1", Quantity: 1}},
	}
	for name, items := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.uc.CreateOrder(context.Background(), "t1", items)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
	assert.Equal(t, int64(10), f.stock(t, "t1", "p1", "A"))
}

func TestCreateOrder_AislamientoDeTenant(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.CreateOrder(context.Background(), "t1", []orders.ItemInput{{ProductID: "p2", VariantSKU: "A", Quantity: 1}})
	assert.True(t, errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInsufficientStock))
	assert.Equal(t, int64(10), f.stock(t, "t2", "p2", "A"))

	_, err = f.uc.GetOrder(context.Background(), "t2", "cualquiera")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateOrder_ErrorDelNotificadorNoRevierte(t *testing.T) {
	f := newFixture(t)
	f.rec.err = errors.New("broker caído")

	order, err := f.uc.CreateOrder(context.Background(), "t1", []orders.ItemInput{{ProductID: "p1", VariantSKU: "A", Quantity: 1}})
	require.NoError(t, err)
	assert.NotEmpty(t, order.ID)
	assert.Equal(t, int64(9), f.stock(t, "t1", "p1", "A"))
	f.assertLedgerMatchesStock(t, "t1", "p1", "A")
}

// ─────────────────────────────────────────────────────────────────────────────
// Concurrencia
// ─────────────────────────────────────────────────────────────────────────────

func TestCreateOrder_ConcurrentesSobreMismaVariante(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	results := make([]error, 2)
	var g errgroup.Group
	for i := range results {
		g.Go(func() error {
			_, err := f.uc.CreateOrder(ctx, "t1", []orders.ItemInput{{ProductID: "p1", VariantSKU: "A", Quantity: 6}})
			results[i] = err
			return nil
		})
	}
	require.NoError(t, g.Wait())

	ok, insufficient := 0, 0
	for _, err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrInsufficientStock):
			insufficient++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, insufficient)
	assert.Equal(t, int64(4), f.stock(t, "t1", "p1", "A"))

	ledger := inventory.NewLedgerUseCase(f.store.Repos().Movements)
	movs, err := ledger.ListMovements(ctx, "t1", repository.MovementFilter{ProductID: "p1", SKU: "A", Type: entity.MovementTypeOUT})
	require.NoError(t, err)
	assert.Len(t, movs, 1)
	f.assertLedgerMatchesStock(t, "t1", "p1", "A")
}

func TestCreateOrder_ManyConcurrentNuncaNegativo(t *testing.T) {
	f := newFixture(t)
	var g errgroup.Group
	var mu sync.Mutex
	confirmed := 0
	for i := 0; i < 25; i++ {
		g.Go(func() error {
			if _, err := f.uc.CreateOrder(context.Background(), "t1", []orders.ItemInput{{ProductID: "p1", VariantSKU: "A", Quantity: 1}}); err == nil {
				mu.Lock()
				confirmed++
				mu.Unlock()
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, 10, confirmed)
	assert.Equal(t, int64(0), f.stock(t, "t1", "p1", "A"))
	f.assertLedgerMatchesStock(t, "t1", "p1", "A")
	assert.Len(t, outMovements(t, f, "t1"), 10)
}
