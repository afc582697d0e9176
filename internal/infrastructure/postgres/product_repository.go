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

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación de ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create inserta el producto y sus variantes en un único batch. Las variantes nacen con
// stock 0; la existencia inicial entra por AdjustStock con su movimiento.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	for _, v := range p.Variants {
		if v.Stock != 0 {
			return fmt.Errorf("variante %s con stock inicial %d: %w", v.SKU, v.Stock, domain.ErrInvalidInput)
		}
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}
	batch := &pgx.Batch{}
	batch.Queue(`
		INSERT INTO products (tenant_id, id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		p.TenantID, p.ID, p.Name, p.Description, p.CreatedAt, p.UpdatedAt,
	)
	for _, v := range p.Variants {
		attrs := v.Attributes
		if attrs == nil {
			attrs = map[string]string{}
		}
		batch.Queue(`
			INSERT INTO product_variants (tenant_id, product_id, sku, attributes, price, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			p.TenantID, p.ID, v.SKU, attrs, v.Price, p.UpdatedAt,
		)
	}
	if err := r.q.SendBatch(ctx, batch).Close(); err != nil {
		return wrapErr("create product", err)
	}
	return nil
}

// GetByID obtiene el producto con sus variantes. nil, nil si no existe en el tenant.
func (r *ProductRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.Product, error) {
	var p entity.Product
	err := r.q.QueryRow(ctx, `
		SELECT tenant_id, id, name, description, created_at, updated_at
		FROM products WHERE tenant_id = $1 AND id = $2`, tenantID, id,
	).Scan(&p.TenantID, &p.ID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, wrapErr("get product", err)
	}

	rows, err := r.q.Query(ctx, `
		SELECT product_id, sku, attributes, stock, price, updated_at
		FROM product_variants WHERE tenant_id = $1 AND product_id = $2
		ORDER BY sku`, tenantID, id)
	if err != nil {
		return nil, wrapErr("list variants", err)
	}
	defer rows.Close()
	for rows.Next() {
		var v entity.ProductVariant
		if err := rows.Scan(&v.ProductID, &v.SKU, &v.Attributes, &v.Stock, &v.Price, &v.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan variant: %w", err)
		}
		p.Variants = append(p.Variants, v)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list variants", err)
	}
	return &p, nil
}

// GetVariant obtiene una variante. nil, nil si no existe en el tenant.
func (r *ProductRepo) GetVariant(ctx context.Context, tenantID, productID, sku string) (*entity.ProductVariant, error) {
	var v entity.ProductVariant
	err := r.q.QueryRow(ctx, `
		SELECT product_id, sku, attributes, stock, price, updated_at
		FROM product_variants WHERE tenant_id = $1 AND product_id = $2 AND sku = $3`,
		tenantID, productID, sku,
	).Scan(&v.ProductID, &v.SKU, &v.Attributes, &v.Stock, &v.Price, &v.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, wrapErr("get variant", err)
	}
	return &v, nil
}

// AdjustStock suma delta al stock solo si el resultado no queda negativo. La condición
// y la escritura van en la misma sentencia; el bloqueo de fila dura hasta el commit.
func (r *ProductRepo) AdjustStock(ctx context.Context, tenantID, productID, sku string, delta int64) (int64, error) {
	var stock int64
	err := r.q.QueryRow(ctx, `
		UPDATE product_variants
		SET stock = stock + $4, updated_at = now()
		WHERE tenant_id = $1 AND product_id = $2 AND sku = $3 AND stock + $4 >= 0
		RETURNING stock`,
		tenantID, productID, sku, delta,
	).Scan(&stock)
	if err == nil {
		return stock, nil
	}
	if !isNoRows(err) {
		return 0, wrapErr("adjust stock", err)
	}

	var exists bool
	err = r.q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM product_variants
			WHERE tenant_id = $1 AND product_id = $2 AND sku = $3
		)`, tenantID, productID, sku,
	).Scan(&exists)
	if err != nil {
		return 0, wrapErr("check variant", err)
	}
	if !exists {
		return 0, domain.ErrNotFound
	}
	return 0, domain.ErrInsufficientStock
}
