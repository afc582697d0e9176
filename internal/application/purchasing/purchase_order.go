package purchasing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/application/ports"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// PurchaseOrderUseCase alta y consulta de órdenes de compra.
type PurchaseOrderUseCase struct {
	txRunner       ports.TxRunner
	purchaseOrders repository.PurchaseOrderRepository
	log            *logger.Logger
	now            func() time.Time
}

// NewPurchaseOrderUseCase construye el caso de uso.
func NewPurchaseOrderUseCase(txRunner ports.TxRunner, purchaseOrders repository.PurchaseOrderRepository, log *logger.Logger) *PurchaseOrderUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &PurchaseOrderUseCase{
		txRunner:       txRunner,
		purchaseOrders: purchaseOrders,
		log:            log.Component("purchase_order"),
		now:            time.Now,
	}
}

// ItemInput línea pedida al proveedor.
type ItemInput struct {
	ProductID       string
	SKU             string
	QuantityOrdered int64
	Price           decimal.Decimal
}

// CreatePurchaseOrder crea una orden PENDING con cantidades recibidas en cero.
// El proveedor debe existir en el tenant.
func (uc *PurchaseOrderUseCase) CreatePurchaseOrder(ctx context.Context, tenantID, supplierID string, items []ItemInput) (*entity.PurchaseOrder, error) {
	if tenantID == "" || supplierID == "" {
		return nil, fmt.Errorf("%w: tenant y proveedor requeridos", domain.ErrInvalidInput)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: la orden de compra no tiene líneas", domain.ErrInvalidInput)
	}
	po := &entity.PurchaseOrder{
		ID:         uuid.New().String(),
		TenantID:   tenantID,
		SupplierID: supplierID,
		Status:     entity.PurchaseOrderStatusPending,
		Items:      make([]entity.PurchaseOrderItem, 0, len(items)),
		CreatedAt:  uc.now().UTC(),
	}
	for i, it := range items {
		if it.ProductID == "" || it.SKU == "" {
			return nil, fmt.Errorf("%w: línea %d sin producto o sku", domain.ErrInvalidInput, i)
		}
		if it.QuantityOrdered < 1 {
			return nil, fmt.Errorf("%w: línea %d con cantidad %d", domain.ErrInvalidInput, i, it.QuantityOrdered)
		}
		if it.Price.IsNegative() {
			return nil, fmt.Errorf("%w: línea %d con precio negativo", domain.ErrInvalidInput, i)
		}
		po.Items = append(po.Items, entity.PurchaseOrderItem{
			ProductID:       it.ProductID,
			SKU:             it.SKU,
			QuantityOrdered: it.QuantityOrdered,
			Price:           it.Price,
		})
	}

	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos ports.TxRepos) error {
		supplier, err := repos.Suppliers.GetByID(ctx, tenantID, supplierID)
		if err != nil {
			return err
		}
		if supplier == nil {
			return fmt.Errorf("proveedor %s: %w", supplierID, domain.ErrNotFound)
		}
		return repos.PurchaseOrders.Create(ctx, po)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("tenant_id", tenantID).Str("purchase_order_id", po.ID).Int("items", len(po.Items)).Msg("orden de compra creada")
	return po, nil
}

// GetPurchaseOrder devuelve la orden de compra del tenant. ErrNotFound si no existe.
func (uc *PurchaseOrderUseCase) GetPurchaseOrder(ctx context.Context, tenantID, id string) (*entity.PurchaseOrder, error) {
	po, err := uc.purchaseOrders.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if po == nil {
		return nil, domain.ErrNotFound
	}
	return po, nil
}

// ListPurchaseOrders órdenes de compra del tenant, más recientes primero.
func (uc *PurchaseOrderUseCase) ListPurchaseOrders(ctx context.Context, tenantID string, limit, offset int) ([]*entity.PurchaseOrder, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 500 {
		limit = 500
	}
	if offset < 0 {
		offset = 0
	}
	return uc.purchaseOrders.ListByTenant(ctx, tenantID, limit, offset)
}
