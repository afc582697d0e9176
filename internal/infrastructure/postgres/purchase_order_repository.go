package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)

// PurchaseOrderRepo órdenes de compra sobre PostgreSQL; las líneas viven en purchase_order_items.
type PurchaseOrderRepo struct {
	q Querier
}

// NewPurchaseOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPurchaseOrderRepository(q Querier) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{q: q}
}

const purchaseOrderColumns = `tenant_id, id, supplier_id, status, created_at, received_at`

func scanPurchaseOrder(row pgx.Row) (*entity.PurchaseOrder, error) {
	var po entity.PurchaseOrder
	var status string
	var receivedAt *time.Time
	if err := row.Scan(&po.TenantID, &po.ID, &po.SupplierID, &status, &po.CreatedAt, &receivedAt); err != nil {
		return nil, err
	}
	po.Status = entity.PurchaseOrderStatus(status)
	po.ReceivedAt = receivedAt
	return &po, nil
}

// Create inserta cabecera y líneas en un batch.
func (r *PurchaseOrderRepo) Create(ctx context.Context, po *entity.PurchaseOrder) error {
	batch := &pgx.Batch{}
	batch.Queue(`
		INSERT INTO purchase_orders (tenant_id, id, supplier_id, status, created_at, received_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		po.TenantID, po.ID, po.SupplierID, string(po.Status), po.CreatedAt, po.ReceivedAt,
	)
	for i, it := range po.Items {
		batch.Queue(`
			INSERT INTO purchase_order_items
				(tenant_id, purchase_order_id, position, product_id, sku, quantity_ordered, quantity_received, price)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			po.TenantID, po.ID, i, it.ProductID, it.SKU, it.QuantityOrdered, it.QuantityReceived, it.Price,
		)
	}
	if err := r.q.SendBatch(ctx, batch).Close(); err != nil {
		return wrapErr("create purchase order", err)
	}
	return nil
}

// GetByID nil, nil si la orden no existe en el tenant.
func (r *PurchaseOrderRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.PurchaseOrder, error) {
	return r.get(ctx, tenantID, id, false)
}

// GetForUpdate como GetByID pero con SELECT ... FOR UPDATE sobre la cabecera.
func (r *PurchaseOrderRepo) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.PurchaseOrder, error) {
	return r.get(ctx, tenantID, id, true)
}

func (r *PurchaseOrderRepo) get(ctx context.Context, tenantID, id string, forUpdate bool) (*entity.PurchaseOrder, error) {
	query := `SELECT ` + purchaseOrderColumns + ` FROM purchase_orders WHERE tenant_id = $1 AND id = $2`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	po, err := scanPurchaseOrder(r.q.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, wrapErr("get purchase order", err)
	}
	if err := r.loadItems(ctx, tenantID, []*entity.PurchaseOrder{po}); err != nil {
		return nil, err
	}
	return po, nil
}

// MarkReceived cambio de estado condicional: solo afecta a órdenes que aún no están RECEIVED.
func (r *PurchaseOrderRepo) MarkReceived(ctx context.Context, po *entity.PurchaseOrder) error {
	receivedAt := time.Now().UTC()
	if po.ReceivedAt != nil {
		receivedAt = *po.ReceivedAt
	}
	tag, err := r.q.Exec(ctx, `
		UPDATE purchase_orders SET status = 'RECEIVED', received_at = $3
		WHERE tenant_id = $1 AND id = $2 AND status <> 'RECEIVED'`,
		po.TenantID, po.ID, receivedAt,
	)
	if err != nil {
		return wrapErr("mark purchase order received", err)
	}
	if tag.RowsAffected() == 0 {
		existing, err := r.GetByID(ctx, po.TenantID, po.ID)
		if err != nil {
			return err
		}
		if existing == nil {
			return domain.ErrNotFound
		}
		return fmt.Errorf("orden de compra %s: %w", po.ID, domain.ErrInvalidState)
	}
	_, err = r.q.Exec(ctx, `
		UPDATE purchase_order_items SET quantity_received = quantity_ordered
		WHERE tenant_id = $1 AND purchase_order_id = $2`,
		po.TenantID, po.ID,
	)
	if err != nil {
		return wrapErr("mark purchase order items received", err)
	}
	return nil
}

// ListByTenant órdenes de compra del tenant, más recientes primero.
func (r *PurchaseOrderRepo) ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*entity.PurchaseOrder, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+purchaseOrderColumns+`
		FROM purchase_orders WHERE tenant_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3`, tenantID, limit, offset)
	if err != nil {
		return nil, wrapErr("list purchase orders", err)
	}
	defer rows.Close()

	out := make([]*entity.PurchaseOrder, 0)
	for rows.Next() {
		po, err := scanPurchaseOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan purchase order: %w", err)
		}
		out = append(out, po)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list purchase orders", err)
	}
	rows.Close()

	if err := r.loadItems(ctx, tenantID, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PurchaseOrderRepo) loadItems(ctx context.Context, tenantID string, pos []*entity.PurchaseOrder) error {
	if len(pos) == 0 {
		return nil
	}
	byID := make(map[string]*entity.PurchaseOrder, len(pos))
	ids := make([]string, 0, len(pos))
	for _, po := range pos {
		byID[po.ID] = po
		ids = append(ids, po.ID)
	}
	rows, err := r.q.Query(ctx, `
		SELECT purchase_order_id, product_id, sku, quantity_ordered, quantity_received, price
		FROM purchase_order_items
		WHERE tenant_id = $1 AND purchase_order_id = ANY($2)
		ORDER BY purchase_order_id, position`, tenantID, ids)
	if err != nil {
		return wrapErr("list purchase order items", err)
	}
	defer rows.Close()
	for rows.Next() {
		var poID string
		var it entity.PurchaseOrderItem
		if err := rows.Scan(&poID, &it.ProductID, &it.SKU, &it.QuantityOrdered, &it.QuantityReceived, &it.Price); err != nil {
			return fmt.Errorf("scan purchase order item: %w", err)
		}
		if po, ok := byID[poID]; ok {
			po.Items = append(po.Items, it)
		}
	}
	if err := rows.Err(); err != nil {
		return wrapErr("list purchase order items", err)
	}
	return nil
}
