package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// PurchaseOrderRepository define el puerto de persistencia para órdenes de compra.
type PurchaseOrderRepository interface {
	Create(ctx context.Context, po *entity.PurchaseOrder) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.PurchaseOrder, error)
	// GetForUpdate obtiene la orden y bloquea su fila hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, tenantID, id string) (*entity.PurchaseOrder, error)
	// MarkReceived cambia el estado a RECEIVED solo si aún no lo está y fija
	// quantity_received = quantity_ordered en todas las líneas.
	// Retorna domain.ErrInvalidState si la orden ya estaba recibida.
	MarkReceived(ctx context.Context, po *entity.PurchaseOrder) error
	ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*entity.PurchaseOrder, error)
}
