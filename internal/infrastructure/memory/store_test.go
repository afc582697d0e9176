package memory_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/application/ports"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/memory"
)

// seed crea el producto en stock 0 y registra la apertura con su movimiento, en una tx.
func seed(t *testing.T, s *memory.Store, tenant, productID string, stock int64) {
	t.Helper()
	err := memory.NewTxRunner(s).Run(context.Background(), func(ctx context.Context, repos ports.TxRepos) error {
		if err := repos.Products.Create(ctx, &entity.Product{
			ID:       productID,
			TenantID: tenant,
			Name:     "Camiseta",
			Variants: []entity.ProductVariant{{SKU: "M", Attributes: map[string]string{"talla": "M"}}},
		}); err != nil {
			return err
		}
		if stock == 0 {
			return nil
		}
		if _, err := repos.Products.AdjustStock(ctx, tenant, productID, "M", stock); err != nil {
			return err
		}
		return repos.Movements.Create(ctx, &entity.StockMovement{
			ID: "apertura-" + tenant + "-" + productID, TenantID: tenant, ProductID: productID, VariantSKU: "M",
			Type: entity.MovementTypeADJUSTMENT, Quantity: stock,
		})
	})
	require.NoError(t, err)
}

// ─────────────────────────────────────────────────────────────────────────────
// Mutación condicional
// ─────────────────────────────────────────────────────────────────────────────

func TestAdjustStock_Condicional(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	seed(t, s, "t1", "p1", 5)
	products := s.Repos().Products

	stock, err := products.AdjustStock(ctx, "t1", "p1", "M", -5)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stock)

	_, err = products.AdjustStock(ctx, "t1", "p1", "M", -1)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	_, err = products.AdjustStock(ctx, "t1", "p1", "XL", 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = products.AdjustStock(ctx, "t2", "p1", "M", 1)
	assert.ErrorIs(t, err, domain.ErrNotFound, "otro tenant no ve la variante")

	v, err := products.GetVariant(ctx, "t1", "p1", "M")
	require.NoError(t, err)
	assert.Equal(t, int64(0), v.Stock)
}

func TestAdjustStock_DesbordeEsEntradaInvalida(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	seed(t, s, "t1", "p1", 5)

	_, err := s.Repos().Products.AdjustStock(ctx, "t1", "p1", "M", math.MaxInt64)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	stock, err := s.Repos().Products.AdjustStock(ctx, "t1", "p1", "M", math.MaxInt64-5)
	require.NoError(t, err, "justo en el límite")
	assert.Equal(t, int64(math.MaxInt64), stock)
}

// ─────────────────────────────────────────────────────────────────────────────
// Alta de productos
// ─────────────────────────────────────────────────────────────────────────────

func TestCreate_RechazaStockInicial(t *testing.T) {
	s := memory.NewStore()
	err := s.Repos().Products.Create(context.Background(), &entity.Product{
		ID: "p1", TenantID: "t1", Variants: []entity.ProductVariant{{SKU: "M", Stock: 10}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	p, err := s.Repos().Products.GetByID(context.Background(), "t1", "p1")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestCreate_SkuUnicoPorTenant(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	products := s.Repos().Products

	require.NoError(t, products.Create(ctx, &entity.Product{ID: "p1", TenantID: "t1", Variants: []entity.ProductVariant{{SKU: "A"}}}))

	err := products.Create(ctx, &entity.Product{ID: "p2", TenantID: "t1", Variants: []entity.ProductVariant{{SKU: "A"}}})
	assert.ErrorIs(t, err, domain.ErrDuplicate, "mismo sku en otro producto del tenant")

	err = products.Create(ctx, &entity.Product{ID: "p3", TenantID: "t1", Variants: []entity.ProductVariant{{SKU: "B"}, {SKU: "B"}}})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	require.NoError(t, products.Create(ctx, &entity.Product{ID: "p2", TenantID: "t2", Variants: []entity.ProductVariant{{SKU: "A"}}}),
		"otro tenant puede usar el mismo sku")
}

func TestCreate_SkuNoQuedaReservadoTrasRollback(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	boom := errors.New("boom")

	err := memory.NewTxRunner(s).Run(ctx, func(ctx context.Context, repos ports.TxRepos) error {
		require.NoError(t, repos.Products.Create(ctx, &entity.Product{ID: "p1", TenantID: "t1", Variants: []entity.ProductVariant{{SKU: "A"}}}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	assert.NoError(t, s.Repos().Products.Create(ctx, &entity.Product{ID: "p2", TenantID: "t1", Variants: []entity.ProductVariant{{SKU: "A"}}}))
}

func TestGetByID_DevuelveCopia(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	seed(t, s, "t1", "p1", 5)

	p, err := s.Repos().Products.GetByID(ctx, "t1", "p1")
	require.NoError(t, err)
	p.Variants[0].Stock = 999
	p.Variants[0].Attributes["talla"] = "XXL"

	again, err := s.Repos().Products.GetByID(ctx, "t1", "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(5), again.Variants[0].Stock)
	assert.Equal(t, "M", again.Variants[0].Attributes["talla"])

	missing, err := s.Repos().Products.GetByID(ctx, "t2", "p1")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

// ─────────────────────────────────────────────────────────────────────────────
// Transacciones
// ─────────────────────────────────────────────────────────────────────────────

func TestTxRunner_RollbackDescartaCambios(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	seed(t, s, "t1", "p1", 10)
	boom := errors.New("boom")

	err := memory.NewTxRunner(s).Run(ctx, func(ctx context.Context, repos ports.TxRepos) error {
		_, err := repos.Products.AdjustStock(ctx, "t1", "p1", "M", -4)
		require.NoError(t, err)
		require.NoError(t, repos.Movements.Create(ctx, &entity.StockMovement{
			ID: "m1", TenantID: "t1", ProductID: "p1", VariantSKU: "M", Type: entity.MovementTypeOUT, Quantity: -4,
		}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	v, err := s.Repos().Products.GetVariant(ctx, "t1", "p1", "M")
	require.NoError(t, err)
	assert.Equal(t, int64(10), v.Stock)

	movs, err := s.Repos().Movements.List(ctx, "t1", repository.MovementFilter{Type: entity.MovementTypeOUT})
	require.NoError(t, err)
	assert.Empty(t, movs)

	bal, err := s.Repos().Movements.Balance(ctx, "t1", "p1", "M")
	require.NoError(t, err)
	assert.Equal(t, bal.Stock, bal.LedgerSum)
}

func TestTxRunner_CommitPublicaCambios(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	seed(t, s, "t1", "p1", 10)

	err := memory.NewTxRunner(s).Run(ctx, func(ctx context.Context, repos ports.TxRepos) error {
		if _, err := repos.Products.AdjustStock(ctx, "t1", "p1", "M", 3); err != nil {
			return err
		}
		return repos.Movements.Create(ctx, &entity.StockMovement{
			ID: "m1", TenantID: "t1", ProductID: "p1", VariantSKU: "M", Type: entity.MovementTypeIN, Quantity: 3,
		})
	})
	require.NoError(t, err)

	bal, err := s.Repos().Movements.Balance(ctx, "t1", "p1", "M")
	require.NoError(t, err)
	assert.Equal(t, int64(13), bal.Stock)
	assert.Equal(t, int64(13), bal.LedgerSum)
}

func TestTxRunner_ContextoCancelado(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := memory.NewTxRunner(memory.NewStore()).Run(ctx, func(context.Context, ports.TxRepos) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

// ─────────────────────────────────────────────────────────────────────────────
// Órdenes de compra y listados
// ─────────────────────────────────────────────────────────────────────────────

func TestMarkReceived_SegundaVezEsEstadoInvalido(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	pos := s.Repos().PurchaseOrders
	po := &entity.PurchaseOrder{
		ID: "po1", TenantID: "t1", SupplierID: "s1", Status: entity.PurchaseOrderStatusPending,
		Items: []entity.PurchaseOrderItem{{ProductID: "p1", SKU: "M", QuantityOrdered: 4}},
	}
	require.NoError(t, pos.Create(ctx, po))

	require.NoError(t, pos.MarkReceived(ctx, po))
	got, err := pos.GetByID(ctx, "t1", "po1")
	require.NoError(t, err)
	assert.True(t, got.IsReceived())
	assert.Equal(t, int64(4), got.Items[0].QuantityReceived)

	assert.ErrorIs(t, pos.MarkReceived(ctx, po), domain.ErrInvalidState)
	assert.ErrorIs(t, pos.MarkReceived(ctx, &entity.PurchaseOrder{ID: "po1", TenantID: "t2"}), domain.ErrNotFound)
}

func TestMovementsList_FiltrosYOrden(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	movs := s.Repos().Movements
	for i, m := range []entity.StockMovement{
		{ID: "a", TenantID: "t1", ProductID: "p1", VariantSKU: "M", Type: entity.MovementTypeADJUSTMENT, Quantity: 10},
		{ID: "b", TenantID: "t1", ProductID: "p1", VariantSKU: "M", Type: entity.MovementTypeOUT, Quantity: -2},
		{ID: "c", TenantID: "t2", ProductID: "p1", VariantSKU: "M", Type: entity.MovementTypeOUT, Quantity: -1},
		{ID: "d", TenantID: "t1", ProductID: "p2", VariantSKU: "S", Type: entity.MovementTypeIN, Quantity: 5},
	} {
		m := m
		require.NoError(t, movs.Create(ctx, &m), "movimiento %d", i)
	}
	assert.ErrorIs(t, movs.Create(ctx, &entity.StockMovement{ID: "a", TenantID: "t1"}), domain.ErrDuplicate)

	all, err := movs.List(ctx, "t1", repository.MovementFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "d", all[0].ID, "más reciente primero")

	outs, err := movs.List(ctx, "t1", repository.MovementFilter{Type: entity.MovementTypeOUT})
	require.NoError(t, err)
	require.Len(t, outs, 1)
	assert.Equal(t, "b", outs[0].ID)

	page, err := movs.List(ctx, "t1", repository.MovementFilter{ProductID: "p1", Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "a", page[0].ID)
}
