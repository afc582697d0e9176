package memory

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// OrderRepository órdenes de venta en memoria.
type OrderRepository struct {
	base
}

var _ repository.OrderRepository = (*OrderRepository)(nil)

func cloneOrder(o *entity.Order) *entity.Order {
	c := *o
	c.Items = append([]entity.OrderItem(nil), o.Items...)
	return &c
}

func (r *OrderRepository) Create(ctx context.Context, o *entity.Order) error {
	return r.with(ctx, func(st *state) error {
		k := key(o.TenantID, o.ID)
		if _, ok := st.orders[k]; ok {
			return fmt.Errorf("orden %s: %w", o.ID, domain.ErrDuplicate)
		}
		st.orders[k] = cloneOrder(o)
		st.orderSeq = append(st.orderSeq, k)
		return nil
	})
}

func (r *OrderRepository) GetByID(ctx context.Context, tenantID, id string) (*entity.Order, error) {
	var out *entity.Order
	err := r.with(ctx, func(st *state) error {
		if o, ok := st.orders[key(tenantID, id)]; ok {
			out = cloneOrder(o)
		}
		return nil
	})
	return out, err
}

func (r *OrderRepository) ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*entity.Order, error) {
	out := make([]*entity.Order, 0)
	err := r.with(ctx, func(st *state) error {
		skipped := 0
		for i := len(st.orderSeq) - 1; i >= 0; i-- {
			o := st.orders[st.orderSeq[i]]
			if o.TenantID != tenantID {
				continue
			}
			if skipped < offset {
				skipped++
				continue
			}
			out = append(out, cloneOrder(o))
			if limit > 0 && len(out) >= limit {
				break
			}
		}
		return nil
	})
	return out, err
}
