package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventario-ledger/internal/application/ports"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// OpeningStock existencia inicial de una variante al cargar un catálogo.
type OpeningStock struct {
	ProductID string
	SKU       string
	Quantity  int64
}

// CatalogImport productos (variantes en stock 0), su stock de apertura y un proveedor opcional.
type CatalogImport struct {
	TenantID string
	Products []*entity.Product
	Opening  []OpeningStock
	Supplier *entity.Supplier
}

// ImportCatalog crea productos y proveedor y registra el stock de apertura como movimientos
// ADJUSTMENT, todo en una transacción. Si algo falla no queda nada guardado.
func (uc *AdjustStockUseCase) ImportCatalog(ctx context.Context, in CatalogImport) error {
	if in.TenantID == "" {
		return domain.ErrInvalidInput
	}
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos ports.TxRepos) error {
		for _, p := range in.Products {
			p.TenantID = in.TenantID
			if err := repos.Products.Create(ctx, p); err != nil {
				return fmt.Errorf("producto %s: %w", p.ID, err)
			}
		}
		for _, o := range in.Opening {
			if o.Quantity == 0 {
				continue
			}
			if _, err := uc.AdjustStockInTx(ctx, repos, AdjustStockInput{
				TenantID:  in.TenantID,
				ProductID: o.ProductID,
				SKU:       o.SKU,
				Delta:     o.Quantity,
				Type:      entity.MovementTypeADJUSTMENT,
			}); err != nil {
				return err
			}
		}
		if in.Supplier != nil {
			in.Supplier.TenantID = in.TenantID
			if err := repos.Suppliers.Create(ctx, in.Supplier); err != nil {
				return fmt.Errorf("proveedor: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	uc.log.Info().
		Str("tenant_id", in.TenantID).
		Int("productos", len(in.Products)).
		Int("aperturas", len(in.Opening)).
		Msg("catálogo importado")
	return nil
}
