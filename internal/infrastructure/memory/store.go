// Package memory implementa los puertos de persistencia en memoria con la misma semántica
// de mutación condicional que el store Postgres. Se usa en desarrollo y en tests.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/inventario-ledger/internal/application/ports"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// state es inmutable por entidad: las actualizaciones reemplazan el puntero por una copia,
// así clonar el estado para una transacción solo copia los índices.
type state struct {
	products       map[string]*entity.Product
	skus           map[string]string // tenant+sku -> product id
	movements      []*entity.StockMovement
	movementIDs    map[string]struct{}
	orders         map[string]*entity.Order
	orderSeq       []string
	purchaseOrders map[string]*entity.PurchaseOrder
	poSeq          []string
	suppliers      map[string]*entity.Supplier
}

func newState() *state {
	return &state{
		products:       make(map[string]*entity.Product),
		skus:           make(map[string]string),
		movementIDs:    make(map[string]struct{}),
		orders:         make(map[string]*entity.Order),
		purchaseOrders: make(map[string]*entity.PurchaseOrder),
		suppliers:      make(map[string]*entity.Supplier),
	}
}

func (s *state) clone() *state {
	c := &state{
		products:       make(map[string]*entity.Product, len(s.products)),
		skus:           make(map[string]string, len(s.skus)),
		movements:      append([]*entity.StockMovement(nil), s.movements...),
		movementIDs:    make(map[string]struct{}, len(s.movementIDs)),
		orders:         make(map[string]*entity.Order, len(s.orders)),
		orderSeq:       append([]string(nil), s.orderSeq...),
		purchaseOrders: make(map[string]*entity.PurchaseOrder, len(s.purchaseOrders)),
		poSeq:          append([]string(nil), s.poSeq...),
		suppliers:      make(map[string]*entity.Supplier, len(s.suppliers)),
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.skus {
		c.skus[k] = v
	}
	for k := range s.movementIDs {
		c.movementIDs[k] = struct{}{}
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.purchaseOrders {
		c.purchaseOrders[k] = v
	}
	for k, v := range s.suppliers {
		c.suppliers[k] = v
	}
	return c
}

func key(tenantID, id string) string {
	return tenantID + "\x00" + id
}

// Store contenedor en memoria. Una transacción toma el mutex global durante todo fn,
// de modo que las unidades de trabajo se serializan como lo harían sobre la misma fila.
type Store struct {
	mu sync.Mutex
	st *state
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{st: newState()}
}

// Repos devuelve repositorios fuera de transacción; cada llamada es atómica por sí sola.
func (s *Store) Repos() ports.TxRepos {
	return reposFor(s, nil)
}

func reposFor(s *Store, tx *state) ports.TxRepos {
	b := base{store: s, tx: tx}
	return ports.TxRepos{
		Products:       &ProductRepository{base: b},
		Movements:      &StockMovementRepository{base: b},
		Orders:         &OrderRepository{base: b},
		PurchaseOrders: &PurchaseOrderRepository{base: b},
		Suppliers:      &SupplierRepository{base: b},
	}
}

// base enruta cada operación al estado de la transacción o al estado compartido.
type base struct {
	store *Store
	tx    *state
}

func (b base) with(ctx context.Context, fn func(st *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if b.tx != nil {
		return fn(b.tx)
	}
	b.store.mu.Lock()
	defer b.store.mu.Unlock()
	return fn(b.store.st)
}

// TxRunner implementa ports.TxRunner sobre el Store.
type TxRunner struct {
	store *Store
}

// NewTxRunner crea un TxRunner para el store.
func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store}
}

var _ ports.TxRunner = (*TxRunner)(nil)

// Run ejecuta fn sobre una copia del estado y la publica solo si fn no retorna error.
func (r *TxRunner) Run(ctx context.Context, fn func(ctx context.Context, repos ports.TxRepos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	tx := r.store.st.clone()
	if err := fn(ctx, reposFor(r.store, tx)); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.st = tx
	return nil
}
