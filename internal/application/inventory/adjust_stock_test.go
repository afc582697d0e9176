package inventory_test

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
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
}

func (r *recorder) Notify(_ context.Context, evt ports.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
	return nil
}

func setup(t *testing.T, stock int64) (*memory.Store, *inventory.AdjustStockUseCase, *recorder) {
	t.Helper()
	store := memory.NewStore()
	rec := &recorder{}
	uc := inventory.NewAdjustStockUseCase(memory.NewTxRunner(store), rec, nil, logger.Nop())
	require.NoError(t, uc.ImportCatalog(context.Background(), inventory.CatalogImport{
		TenantID: "t1",
		Products: []*entity.Product{{ID: "p1", Name: "Taza", Variants: []entity.ProductVariant{{SKU: "ROJA"}}}},
		Opening:  []inventory.OpeningStock{{ProductID: "p1", SKU: "ROJA", Quantity: stock}},
	}))
	return store, uc, rec
}

func assertLedgerMatchesStock(t *testing.T, store *memory.Store) {
	t.Helper()
	rec, err := inventory.NewLedgerUseCase(store.Repos().Movements).ReconcileVariant(context.Background(), "t1", "p1", "ROJA")
	require.NoError(t, err)
	assert.True(t, rec.Consistent, "stock %d, libro %d", rec.Stock, rec.LedgerSum)
}

func TestAdjustStock_ValidaEntrada(t *testing.T) {
	_, uc, _ := setup(t, 5)
	ctx := context.Background()
	cases := []struct {
		name string
		in   inventory.AdjustStockInput
	}{
		{"delta cero", inventory.AdjustStockInput{TenantID: "t1", ProductID: "p1", SKU: "ROJA", Type: entity.MovementTypeADJUSTMENT}},
		{"tipo desconocido", inventory.AdjustStockInput{TenantID: "t1", ProductID: "p1", SKU: "ROJA", Delta: 1, Type: "TRANSFER"}},
		{"IN negativo", inventory.AdjustStockInput{TenantID: "t1", ProductID: "p1", SKU: "ROJA", Delta: -1, Type: entity.MovementTypeIN}},
		{"OUT positivo", inventory.AdjustStockInput{TenantID: "t1", ProductID: "p1", SKU: "ROJA", Delta: 1, Type: entity.MovementTypeOUT}},
		{"sin sku", inventory.AdjustStockInput{TenantID: "t1", ProductID: "p1", Delta: 1, Type: entity.MovementTypeIN}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.AdjustStock(ctx, tc.in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestAdjustStock_RegistraMovimientoConSigno(t *testing.T) {
	store, uc, rec := setup(t, 5)
	ctx := context.Background()

	mov, err := uc.AdjustStock(ctx, inventory.AdjustStockInput{
		TenantID: "t1", ProductID: "p1", SKU: "ROJA", Delta: -3, Type: entity.MovementTypeADJUSTMENT, ReferenceID: "conteo-1",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(-3), mov.Quantity)
	assert.Equal(t, "conteo-1", mov.ReferenceID)
	assert.Empty(t, rec.events, "la primitiva no notifica")

	v, err := store.Repos().Products.GetVariant(ctx, "t1", "p1", "ROJA")
	require.NoError(t, err)
	assert.Equal(t, int64(2), v.Stock)
	assertLedgerMatchesStock(t, store)
}

func TestAdjustStock_NoPermiteStockNegativo(t *testing.T) {
	store, uc, _ := setup(t, 2)
	ctx := context.Background()

	_, err := uc.AdjustStock(ctx, inventory.AdjustStockInput{
		TenantID: "t1", ProductID: "p1", SKU: "ROJA", Delta: -3, Type: entity.MovementTypeADJUSTMENT,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	movs, err := store.Repos().Movements.List(ctx, "t1", repository.MovementFilter{})
	require.NoError(t, err)
	require.Len(t, movs, 1, "solo la apertura; sin movimiento si el ajuste falla")
	assert.Equal(t, int64(2), movs[0].Quantity)
	assertLedgerMatchesStock(t, store)
}

func TestAdjustStock_DesbordeEsEntradaInvalida(t *testing.T) {
	store, uc, _ := setup(t, 5)

	_, err := uc.AdjustStock(context.Background(), inventory.AdjustStockInput{
		TenantID: "t1", ProductID: "p1", SKU: "ROJA", Delta: math.MaxInt64, Type: entity.MovementTypeIN,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.NotErrorIs(t, err, domain.ErrInsufficientStock)

	v, err := store.Repos().Products.GetVariant(context.Background(), "t1", "p1", "ROJA")
	require.NoError(t, err)
	assert.Equal(t, int64(5), v.Stock)
	assertLedgerMatchesStock(t, store)
}

func TestAdjustStock_VarianteInexistenteOTenantAjeno(t *testing.T) {
	_, uc, _ := setup(t, 2)
	ctx := context.Background()

	_, err := uc.AdjustStock(ctx, inventory.AdjustStockInput{TenantID: "t1", ProductID: "p1", SKU: "AZUL", Delta: 1, Type: entity.MovementTypeIN})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.AdjustStock(ctx, inventory.AdjustStockInput{TenantID: "t2", ProductID: "p1", SKU: "ROJA", Delta: 1, Type: entity.MovementTypeIN})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRegisterAdjustment_NotificaTrasCommit(t *testing.T) {
	_, uc, rec := setup(t, 0)

	_, err := uc.RegisterAdjustment(context.Background(), inventory.AdjustStockInput{
		TenantID: "t1", ProductID: "p1", SKU: "ROJA", Delta: 7, Type: entity.MovementTypeIN,
	})
	require.NoError(t, err)
	require.Len(t, rec.events, 1)
	assert.Equal(t, ports.EventStockChanged, rec.events[0].Type)
	assert.Equal(t, "t1", rec.events[0].TenantID)
}

// ─────────────────────────────────────────────────────────────────────────────
// Carga de catálogo
// ─────────────────────────────────────────────────────────────────────────────

func TestImportCatalog_NoAceptaStockEscritoDirecto(t *testing.T) {
	store := memory.NewStore()
	uc := inventory.NewAdjustStockUseCase(memory.NewTxRunner(store), nil, nil, logger.Nop())
	ctx := context.Background()

	err := uc.ImportCatalog(ctx, inventory.CatalogImport{
		TenantID: "t1",
		Products: []*entity.Product{{ID: "p1", Name: "Taza", Variants: []entity.ProductVariant{{SKU: "ROJA", Stock: 10}}}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	p, err := store.Repos().Products.GetByID(ctx, "t1", "p1")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestImportCatalog_AperturaFallidaRevierteTodo(t *testing.T) {
	store := memory.NewStore()
	uc := inventory.NewAdjustStockUseCase(memory.NewTxRunner(store), nil, nil, logger.Nop())
	ctx := context.Background()

	err := uc.ImportCatalog(ctx, inventory.CatalogImport{
		TenantID: "t1",
		Products: []*entity.Product{{ID: "p1", Name: "Taza", Variants: []entity.ProductVariant{{SKU: "ROJA"}}}},
		Opening:  []inventory.OpeningStock{{ProductID: "p1", SKU: "ROJA", Quantity: 3}, {ProductID: "p1", SKU: "VERDE", Quantity: 1}},
		Supplier: &entity.Supplier{ID: "s1", Name: "Loza"},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	p, err := store.Repos().Products.GetByID(ctx, "t1", "p1")
	require.NoError(t, err)
	assert.Nil(t, p)
	movs, err := store.Repos().Movements.List(ctx, "t1", repository.MovementFilter{})
	require.NoError(t, err)
	assert.Empty(t, movs)
	s, err := store.Repos().Suppliers.GetByID(ctx, "t1", "s1")
	require.NoError(t, err)
	assert.Nil(t, s)

	assert.ErrorIs(t, uc.ImportCatalog(ctx, inventory.CatalogImport{}), domain.ErrInvalidInput)
}

// ─────────────────────────────────────────────────────────────────────────────
// Libro y conciliación
// ─────────────────────────────────────────────────────────────────────────────

func TestReconcileVariant_LibroCuadraConStock(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, store.Repos().Products.Create(ctx, &entity.Product{
		ID: "p1", TenantID: "t1", Name: "Taza",
		Variants: []entity.ProductVariant{{SKU: "ROJA"}},
	}))
	uc := inventory.NewAdjustStockUseCase(memory.NewTxRunner(store), nil, nil, logger.Nop())
	for _, in := range []inventory.AdjustStockInput{
		{TenantID: "t1", ProductID: "p1", SKU: "ROJA", Delta: 10, Type: entity.MovementTypeADJUSTMENT},
		{TenantID: "t1", ProductID: "p1", SKU: "ROJA", Delta: 4, Type: entity.MovementTypeIN},
		{TenantID: "t1", ProductID: "p1", SKU: "ROJA", Delta: -6, Type: entity.MovementTypeOUT},
	} {
		_, err := uc.AdjustStock(ctx, in)
		require.NoError(t, err)
	}
	_, err := uc.AdjustStock(ctx, inventory.AdjustStockInput{TenantID: "t1", ProductID: "p1", SKU: "ROJA", Delta: -20, Type: entity.MovementTypeOUT})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	ledger := inventory.NewLedgerUseCase(store.Repos().Movements)
	rec, err := ledger.ReconcileVariant(ctx, "t1", "p1", "ROJA")
	require.NoError(t, err)
	assert.Equal(t, int64(8), rec.Stock)
	assert.Equal(t, int64(8), rec.LedgerSum)
	assert.True(t, rec.Consistent)

	movs, err := ledger.ListMovements(ctx, "t1", repository.MovementFilter{Type: entity.MovementTypeOUT})
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, int64(-6), movs[0].Quantity)

	_, err = ledger.ListMovements(ctx, "t1", repository.MovementFilter{Type: "TRANSFER"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = ledger.ReconcileVariant(ctx, "t2", "p1", "ROJA")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
