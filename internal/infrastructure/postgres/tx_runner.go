package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/inventario-ledger/internal/application/ports"
)

var _ ports.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
// Usa READ COMMITTED: las mutaciones condicionales sobre la misma variante se serializan
// en el bloqueo de fila del UPDATE y reevalúan su condición con el valor ya confirmado.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(ctx context.Context, repos ports.TxRepos) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return wrapErr("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(ctx, NewRepos(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return wrapErr("commit transaction", err)
	}
	return nil
}

// NewRepos construye el juego de repositorios sobre un pool o una tx.
func NewRepos(q Querier) ports.TxRepos {
	return ports.TxRepos{
		Products:       NewProductRepository(q),
		Movements:      NewStockMovementRepository(q),
		Orders:         NewOrderRepository(q),
		PurchaseOrders: NewPurchaseOrderRepository(q),
		Suppliers:      NewSupplierRepository(q),
	}
}
