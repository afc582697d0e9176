package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para productos y sus variantes (DIP).
// Todas las operaciones filtran por tenantID en la propia sentencia.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.Product, error)
	GetVariant(ctx context.Context, tenantID, productID, sku string) (*entity.ProductVariant, error)

	// AdjustStock aplica delta al contador de la variante en una única mutación condicional
	// (stock + delta >= 0) y devuelve el stock resultante.
	// Retorna domain.ErrNotFound si la variante no existe en el tenant y
	// domain.ErrInsufficientStock si existe pero el resultado sería negativo.
	AdjustStock(ctx context.Context, tenantID, productID, sku string, delta int64) (int64, error)
}
