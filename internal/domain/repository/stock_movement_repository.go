package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// MovementFilter filtros para listar el libro de movimientos.
type MovementFilter struct {
	ProductID string
	SKU       string
	Type      entity.MovementType
	Limit     int
	Offset    int
}

// StockMovementRepository define el puerto del libro de movimientos (solo inserción y lectura).
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	List(ctx context.Context, tenantID string, filter MovementFilter) ([]*entity.StockMovement, error)
	// Balance lee en una sola instantánea el stock de la variante y la suma del libro.
	// Retorna domain.ErrNotFound si la variante no existe en el tenant.
	Balance(ctx context.Context, tenantID, productID, sku string) (LedgerBalance, error)
}

// LedgerBalance contador vivo frente a la suma de movimientos de una variante.
type LedgerBalance struct {
	Stock     int64
	LedgerSum int64
}
