package memory

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// StockMovementRepository libro de movimientos en memoria (solo inserción).
type StockMovementRepository struct {
	base
}

var _ repository.StockMovementRepository = (*StockMovementRepository)(nil)

func (r *StockMovementRepository) Create(ctx context.Context, m *entity.StockMovement) error {
	return r.with(ctx, func(st *state) error {
		if _, ok := st.movementIDs[m.ID]; ok {
			return fmt.Errorf("movimiento %s: %w", m.ID, domain.ErrDuplicate)
		}
		c := *m
		st.movements = append(st.movements, &c)
		st.movementIDs[m.ID] = struct{}{}
		return nil
	})
}

// List devuelve los movimientos del tenant, más recientes primero.
func (r *StockMovementRepository) List(ctx context.Context, tenantID string, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	out := make([]*entity.StockMovement, 0)
	err := r.with(ctx, func(st *state) error {
		skipped := 0
		for i := len(st.movements) - 1; i >= 0; i-- {
			m := st.movements[i]
			if m.TenantID != tenantID {
				continue
			}
			if f.ProductID != "" && m.ProductID != f.ProductID {
				continue
			}
			if f.SKU != "" && m.VariantSKU != f.SKU {
				continue
			}
			if f.Type != "" && m.Type != f.Type {
				continue
			}
			if skipped < f.Offset {
				skipped++
				continue
			}
			c := *m
			out = append(out, &c)
			if f.Limit > 0 && len(out) >= f.Limit {
				break
			}
		}
		return nil
	})
	return out, err
}

func (r *StockMovementRepository) Balance(ctx context.Context, tenantID, productID, sku string) (repository.LedgerBalance, error) {
	var bal repository.LedgerBalance
	err := r.with(ctx, func(st *state) error {
		p, ok := st.products[key(tenantID, productID)]
		if !ok {
			return domain.ErrNotFound
		}
		v, ok := p.Variant(sku)
		if !ok {
			return domain.ErrNotFound
		}
		bal.Stock = v.Stock
		for _, m := range st.movements {
			if m.TenantID == tenantID && m.ProductID == productID && m.VariantSKU == sku {
				bal.LedgerSum += m.Quantity
			}
		}
		return nil
	})
	return bal, err
}
