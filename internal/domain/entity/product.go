package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product agrupa las variantes vendibles de un artículo dentro de un tenant.
type Product struct {
	ID          string
	TenantID    string
	Name        string
	Description string
	Variants    []ProductVariant
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProductVariant es un SKU concreto con su propio contador de stock y precio.
// Stock solo cambia mediante el ajuste condicional de inventario; nunca es negativo tras un commit.
type ProductVariant struct {
	ProductID  string
	SKU        string // único por tenant
	Attributes map[string]string
	Stock      int64
	Price      decimal.Decimal
	UpdatedAt  time.Time
}

// Variant busca una variante por SKU dentro del producto.
func (p *Product) Variant(sku string) (*ProductVariant, bool) {
	for i := range p.Variants {
		if p.Variants[i].SKU == sku {
			return &p.Variants[i], true
		}
	}
	return nil, false
}
