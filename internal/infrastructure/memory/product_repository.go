package memory

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// ProductRepository implementación en memoria de repository.ProductRepository.
type ProductRepository struct {
	base
}

var _ repository.ProductRepository = (*ProductRepository)(nil)

func cloneProduct(p *entity.Product) *entity.Product {
	c := *p
	c.Variants = make([]entity.ProductVariant, len(p.Variants))
	for i, v := range p.Variants {
		c.Variants[i] = v
		if v.Attributes != nil {
			c.Variants[i].Attributes = make(map[string]string, len(v.Attributes))
			for k, a := range v.Attributes {
				c.Variants[i].Attributes[k] = a
			}
		}
	}
	return &c
}

// Create registra el producto con sus variantes en stock 0; la existencia inicial entra
// después por AdjustStock con su movimiento. El SKU es único dentro del tenant.
func (r *ProductRepository) Create(ctx context.Context, p *entity.Product) error {
	return r.with(ctx, func(st *state) error {
		k := key(p.TenantID, p.ID)
		if _, ok := st.products[k]; ok {
			return fmt.Errorf("producto %s: %w", p.ID, domain.ErrDuplicate)
		}
		seen := make(map[string]struct{}, len(p.Variants))
		for _, v := range p.Variants {
			if v.Stock != 0 {
				return fmt.Errorf("variante %s con stock inicial %d: %w", v.SKU, v.Stock, domain.ErrInvalidInput)
			}
			if _, dup := seen[v.SKU]; dup {
				return fmt.Errorf("variante %s: %w", v.SKU, domain.ErrDuplicate)
			}
			if owner, taken := st.skus[key(p.TenantID, v.SKU)]; taken {
				return fmt.Errorf("sku %s ya usado por el producto %s: %w", v.SKU, owner, domain.ErrDuplicate)
			}
			seen[v.SKU] = struct{}{}
		}
		c := cloneProduct(p)
		for i := range c.Variants {
			c.Variants[i].ProductID = p.ID
			st.skus[key(p.TenantID, c.Variants[i].SKU)] = p.ID
		}
		st.products[k] = c
		return nil
	})
}

func (r *ProductRepository) GetByID(ctx context.Context, tenantID, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.with(ctx, func(st *state) error {
		if p, ok := st.products[key(tenantID, id)]; ok {
			out = cloneProduct(p)
		}
		return nil
	})
	return out, err
}

func (r *ProductRepository) GetVariant(ctx context.Context, tenantID, productID, sku string) (*entity.ProductVariant, error) {
	var out *entity.ProductVariant
	err := r.with(ctx, func(st *state) error {
		p, ok := st.products[key(tenantID, productID)]
		if !ok {
			return nil
		}
		if v, ok := cloneProduct(p).Variant(sku); ok {
			out = v
		}
		return nil
	})
	return out, err
}

// AdjustStock aplica delta solo si el resultado no queda negativo.
func (r *ProductRepository) AdjustStock(ctx context.Context, tenantID, productID, sku string, delta int64) (int64, error) {
	var stock int64
	err := r.with(ctx, func(st *state) error {
		p, ok := st.products[key(tenantID, productID)]
		if !ok {
			return domain.ErrNotFound
		}
		c := cloneProduct(p)
		v, ok := c.Variant(sku)
		if !ok {
			return domain.ErrNotFound
		}
		if delta > 0 && v.Stock > math.MaxInt64-delta {
			return fmt.Errorf("stock %d + %d fuera de rango: %w", v.Stock, delta, domain.ErrInvalidInput)
		}
		if v.Stock+delta < 0 {
			return domain.ErrInsufficientStock
		}
		v.Stock += delta
		v.UpdatedAt = time.Now().UTC()
		c.UpdatedAt = v.UpdatedAt
		st.products[key(tenantID, productID)] = c
		stock = v.Stock
		return nil
	})
	return stock, err
}
