package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// OrderRepository define el puerto de persistencia para órdenes de venta.
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.Order, error)
	ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*entity.Order, error)
}
