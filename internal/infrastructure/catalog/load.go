package catalog

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// Importer persiste un catálogo parseado; lo implementa inventory.AdjustStockUseCase.
type Importer interface {
	ImportCatalog(ctx context.Context, in inventory.CatalogImport) error
}

// FileOptions origen y destino de LoadFile.
type FileOptions struct {
	Path     string
	TenantID string
	Latin1   bool
	Supplier string // si no está vacío se crea un proveedor con ese nombre
}

// LoadFile lee el CSV de opts.Path y lo importa en el tenant en una sola transacción.
// Devuelve lo importado (incluido el proveedor creado, si hubo).
func LoadFile(ctx context.Context, importer Importer, opts FileOptions) (inventory.CatalogImport, error) {
	f, err := os.Open(opts.Path)
	if err != nil {
		return inventory.CatalogImport{}, fmt.Errorf("catalog: abrir %s: %w", opts.Path, err)
	}
	defer f.Close()

	cat, err := Parse(f, opts.TenantID, opts.Latin1)
	if err != nil {
		return inventory.CatalogImport{}, err
	}

	var supplier *entity.Supplier
	if opts.Supplier != "" {
		supplier = &entity.Supplier{
			ID:        uuid.New().String(),
			Name:      opts.Supplier,
			CreatedAt: time.Now().UTC(),
		}
	}
	in := cat.Import(opts.TenantID, supplier)
	if err := importer.ImportCatalog(ctx, in); err != nil {
		return inventory.CatalogImport{}, err
	}
	return in, nil
}
