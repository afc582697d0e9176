package ports

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// TxRepos agrupa los repositorios atados a una misma transacción (unidad de trabajo).
// Quien recibe un TxRepos no hace Commit ni Rollback: los límites los fija TxRunner.Run.
type TxRepos struct {
	Products       repository.ProductRepository
	Movements      repository.StockMovementRepository
	Orders         repository.OrderRepository
	PurchaseOrders repository.PurchaseOrderRepository
	Suppliers      repository.SupplierRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn retorna error se hace Rollback y nada de lo hecho en fn queda visible; si no, Commit.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context, repos TxRepos) error) error
}
