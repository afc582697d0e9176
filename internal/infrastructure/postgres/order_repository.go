package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo órdenes de venta sobre PostgreSQL; las líneas viven en order_items.
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

// Create inserta cabecera y líneas en un batch.
func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	batch := &pgx.Batch{}
	batch.Queue(`
		INSERT INTO orders (tenant_id, id, status, total_amount, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		o.TenantID, o.ID, string(o.Status), o.TotalAmount, o.CreatedAt,
	)
	for i, it := range o.Items {
		batch.Queue(`
			INSERT INTO order_items (tenant_id, order_id, position, product_id, variant_sku, quantity, price)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			o.TenantID, o.ID, i, it.ProductID, it.VariantSKU, it.Quantity, it.Price,
		)
	}
	if err := r.q.SendBatch(ctx, batch).Close(); err != nil {
		return wrapErr("create order", err)
	}
	return nil
}

// GetByID nil, nil si la orden no existe en el tenant.
func (r *OrderRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.Order, error) {
	var o entity.Order
	var status string
	err := r.q.QueryRow(ctx, `
		SELECT tenant_id, id, status, total_amount, created_at
		FROM orders WHERE tenant_id = $1 AND id = $2`, tenantID, id,
	).Scan(&o.TenantID, &o.ID, &status, &o.TotalAmount, &o.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, wrapErr("get order", err)
	}
	o.Status = entity.OrderStatus(status)
	if err := r.loadItems(ctx, tenantID, []*entity.Order{&o}); err != nil {
		return nil, err
	}
	return &o, nil
}

// ListByTenant órdenes del tenant, más recientes primero.
func (r *OrderRepo) ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*entity.Order, error) {
	rows, err := r.q.Query(ctx, `
		SELECT tenant_id, id, status, total_amount, created_at
		FROM orders WHERE tenant_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3`, tenantID, limit, offset)
	if err != nil {
		return nil, wrapErr("list orders", err)
	}
	defer rows.Close()

	out := make([]*entity.Order, 0)
	for rows.Next() {
		var o entity.Order
		var status string
		if err := rows.Scan(&o.TenantID, &o.ID, &status, &o.TotalAmount, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		o.Status = entity.OrderStatus(status)
		out = append(out, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list orders", err)
	}
	rows.Close()

	if err := r.loadItems(ctx, tenantID, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *OrderRepo) loadItems(ctx context.Context, tenantID string, orders []*entity.Order) error {
	if len(orders) == 0 {
		return nil
	}
	byID := make(map[string]*entity.Order, len(orders))
	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		byID[o.ID] = o
		ids = append(ids, o.ID)
	}
	rows, err := r.q.Query(ctx, `
		SELECT order_id, product_id, variant_sku, quantity, price
		FROM order_items
		WHERE tenant_id = $1 AND order_id = ANY($2)
		ORDER BY order_id, position`, tenantID, ids)
	if err != nil {
		return wrapErr("list order items", err)
	}
	defer rows.Close()
	for rows.Next() {
		var orderID string
		var it entity.OrderItem
		if err := rows.Scan(&orderID, &it.ProductID, &it.VariantSKU, &it.Quantity, &it.Price); err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		if o, ok := byID[orderID]; ok {
			o.Items = append(o.Items, it)
		}
	}
	if err := rows.Err(); err != nil {
		return wrapErr("list order items", err)
	}
	return nil
}
