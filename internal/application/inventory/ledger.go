package inventory

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

const (
	defaultMovementLimit = 50
	maxMovementLimit     = 500
)

// LedgerUseCase consultas de solo lectura sobre el libro de movimientos.
type LedgerUseCase struct {
	movements repository.StockMovementRepository
}

// NewLedgerUseCase construye el caso de uso.
func NewLedgerUseCase(movements repository.StockMovementRepository) *LedgerUseCase {
	return &LedgerUseCase{movements: movements}
}

// ListMovements lista los movimientos del tenant, más recientes primero.
func (uc *LedgerUseCase) ListMovements(ctx context.Context, tenantID string, filter repository.MovementFilter) ([]*entity.StockMovement, error) {
	if tenantID == "" {
		return nil, domain.ErrInvalidInput
	}
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, domain.ErrInvalidInput
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultMovementLimit
	}
	if filter.Limit > maxMovementLimit {
		filter.Limit = maxMovementLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return uc.movements.List(ctx, tenantID, filter)
}

// Reconciliation resultado de comparar el contador de una variante con su libro.
type Reconciliation struct {
	TenantID   string
	ProductID  string
	SKU        string
	Stock      int64
	LedgerSum  int64
	Consistent bool
}

// ReconcileVariant verifica que la suma del libro coincida con el stock vivo de la variante.
func (uc *LedgerUseCase) ReconcileVariant(ctx context.Context, tenantID, productID, sku string) (*Reconciliation, error) {
	if tenantID == "" || productID == "" || sku == "" {
		return nil, domain.ErrInvalidInput
	}
	bal, err := uc.movements.Balance(ctx, tenantID, productID, sku)
	if err != nil {
		return nil, err
	}
	return &Reconciliation{
		TenantID:   tenantID,
		ProductID:  productID,
		SKU:        sku,
		Stock:      bal.Stock,
		LedgerSum:  bal.LedgerSum,
		Consistent: bal.Stock == bal.LedgerSum,
	}, nil
}
