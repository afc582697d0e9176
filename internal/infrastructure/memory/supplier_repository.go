package memory

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// SupplierRepository proveedores en memoria.
type SupplierRepository struct {
	base
}

var _ repository.SupplierRepository = (*SupplierRepository)(nil)

func (r *SupplierRepository) Create(ctx context.Context, s *entity.Supplier) error {
	return r.with(ctx, func(st *state) error {
		k := key(s.TenantID, s.ID)
		if _, ok := st.suppliers[k]; ok {
			return fmt.Errorf("proveedor %s: %w", s.ID, domain.ErrDuplicate)
		}
		c := *s
		st.suppliers[k] = &c
		return nil
	})
}

func (r *SupplierRepository) GetByID(ctx context.Context, tenantID, id string) (*entity.Supplier, error) {
	var out *entity.Supplier
	err := r.with(ctx, func(st *state) error {
		if s, ok := st.suppliers[key(tenantID, id)]; ok {
			c := *s
			out = &c
		}
		return nil
	})
	return out, err
}
