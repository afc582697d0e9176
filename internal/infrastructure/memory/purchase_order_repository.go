package memory

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// PurchaseOrderRepository órdenes de compra en memoria.
type PurchaseOrderRepository struct {
	base
}

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepository)(nil)

func clonePurchaseOrder(po *entity.PurchaseOrder) *entity.PurchaseOrder {
	c := *po
	c.Items = append([]entity.PurchaseOrderItem(nil), po.Items...)
	if po.ReceivedAt != nil {
		at := *po.ReceivedAt
		c.ReceivedAt = &at
	}
	return &c
}

func (r *PurchaseOrderRepository) Create(ctx context.Context, po *entity.PurchaseOrder) error {
	return r.with(ctx, func(st *state) error {
		k := key(po.TenantID, po.ID)
		if _, ok := st.purchaseOrders[k]; ok {
			return fmt.Errorf("orden de compra %s: %w", po.ID, domain.ErrDuplicate)
		}
		st.purchaseOrders[k] = clonePurchaseOrder(po)
		st.poSeq = append(st.poSeq, k)
		return nil
	})
}

func (r *PurchaseOrderRepository) GetByID(ctx context.Context, tenantID, id string) (*entity.PurchaseOrder, error) {
	var out *entity.PurchaseOrder
	err := r.with(ctx, func(st *state) error {
		if po, ok := st.purchaseOrders[key(tenantID, id)]; ok {
			out = clonePurchaseOrder(po)
		}
		return nil
	})
	return out, err
}

// GetForUpdate equivale a GetByID: dentro de una transacción el mutex del store ya
// excluye a cualquier otra unidad de trabajo.
func (r *PurchaseOrderRepository) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.PurchaseOrder, error) {
	return r.GetByID(ctx, tenantID, id)
}

func (r *PurchaseOrderRepository) MarkReceived(ctx context.Context, po *entity.PurchaseOrder) error {
	return r.with(ctx, func(st *state) error {
		k := key(po.TenantID, po.ID)
		cur, ok := st.purchaseOrders[k]
		if !ok {
			return domain.ErrNotFound
		}
		if cur.IsReceived() {
			return fmt.Errorf("orden de compra %s: %w", po.ID, domain.ErrInvalidState)
		}
		c := clonePurchaseOrder(cur)
		c.Status = entity.PurchaseOrderStatusReceived
		c.ReceivedAt = po.ReceivedAt
		for i := range c.Items {
			c.Items[i].QuantityReceived = c.Items[i].QuantityOrdered
		}
		st.purchaseOrders[k] = clonePurchaseOrder(c)
		return nil
	})
}

func (r *PurchaseOrderRepository) ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*entity.PurchaseOrder, error) {
	out := make([]*entity.PurchaseOrder, 0)
	err := r.with(ctx, func(st *state) error {
		skipped := 0
		for i := len(st.poSeq) - 1; i >= 0; i-- {
			po := st.purchaseOrders[st.poSeq[i]]
			if po.TenantID != tenantID {
				continue
			}
			if skipped < offset {
				skipped++
				continue
			}
			out = append(out, clonePurchaseOrder(po))
			if limit > 0 && len(out) >= limit {
				break
			}
		}
		return nil
	})
	return out, err
}
