package postgres

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.SupplierRepository = (*SupplierRepo)(nil)

// SupplierRepo proveedores sobre PostgreSQL.
type SupplierRepo struct {
	q Querier
}

// NewSupplierRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSupplierRepository(q Querier) *SupplierRepo {
	return &SupplierRepo{q: q}
}

func (r *SupplierRepo) Create(ctx context.Context, s *entity.Supplier) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO suppliers (tenant_id, id, name, contact, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		s.TenantID, s.ID, s.Name, s.Contact, s.CreatedAt,
	)
	if err != nil {
		return wrapErr("create supplier", err)
	}
	return nil
}

// GetByID nil, nil si el proveedor no existe en el tenant.
func (r *SupplierRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.Supplier, error) {
	var s entity.Supplier
	err := r.q.QueryRow(ctx, `
		SELECT tenant_id, id, name, contact, created_at
		FROM suppliers WHERE tenant_id = $1 AND id = $2`, tenantID, id,
	).Scan(&s.TenantID, &s.ID, &s.Name, &s.Contact, &s.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, wrapErr("get supplier", err)
	}
	return &s, nil
}
