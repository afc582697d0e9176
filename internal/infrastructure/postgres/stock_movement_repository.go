package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo libro de movimientos sobre PostgreSQL (solo INSERT y SELECT).
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	var ref *string
	if m.ReferenceID != "" {
		ref = &m.ReferenceID
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_movements (id, tenant_id, product_id, variant_sku, type, quantity, reference_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		m.ID, m.TenantID, m.ProductID, m.VariantSKU, string(m.Type), m.Quantity, ref, m.CreatedAt,
	)
	if err != nil {
		return wrapErr("create stock movement", err)
	}
	return nil
}

// List devuelve los movimientos del tenant que cumplen el filtro, más recientes primero.
func (r *StockMovementRepo) List(ctx context.Context, tenantID string, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	where := []string{"tenant_id = $1"}
	args := []any{tenantID}
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.ProductID != "" {
		add("product_id = $%d", f.ProductID)
	}
	if f.SKU != "" {
		add("variant_sku = $%d", f.SKU)
	}
	if f.Type != "" {
		add("type = $%d", string(f.Type))
	}
	args = append(args, f.Limit, f.Offset)
	query := fmt.Sprintf(`
		SELECT id, tenant_id, product_id, variant_sku, type, quantity, COALESCE(reference_id, ''), created_at
		FROM stock_movements
		WHERE %s
		ORDER BY created_at DESC, id
		LIMIT $%d OFFSET $%d`, strings.Join(where, " AND "), len(args)-1, len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr("list stock movements", err)
	}
	defer rows.Close()

	out := make([]*entity.StockMovement, 0)
	for rows.Next() {
		var m entity.StockMovement
		var typ string
		if err := rows.Scan(&m.ID, &m.TenantID, &m.ProductID, &m.VariantSKU, &typ, &m.Quantity, &m.ReferenceID, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		m.Type = entity.MovementType(typ)
		out = append(out, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list stock movements", err)
	}
	return out, nil
}

// Balance lee stock y suma del libro en una sola sentencia (misma instantánea).
func (r *StockMovementRepo) Balance(ctx context.Context, tenantID, productID, sku string) (repository.LedgerBalance, error) {
	var bal repository.LedgerBalance
	err := r.q.QueryRow(ctx, `
		SELECT v.stock,
		       COALESCE((
		           SELECT SUM(m.quantity)
		           FROM stock_movements m
		           WHERE m.tenant_id = v.tenant_id AND m.product_id = v.product_id AND m.variant_sku = v.sku
		       ), 0)::BIGINT
		FROM product_variants v
		WHERE v.tenant_id = $1 AND v.product_id = $2 AND v.sku = $3`,
		tenantID, productID, sku,
	).Scan(&bal.Stock, &bal.LedgerSum)
	if err != nil {
		if isNoRows(err) {
			return bal, domain.ErrNotFound
		}
		return bal, wrapErr("ledger balance", err)
	}
	return bal, nil
}
