package purchasing

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/application/events"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/application/ports"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// StockAdjuster primitiva de ajuste ejecutada dentro de la transacción del caller.
type StockAdjuster interface {
	AdjustStockInTx(ctx context.Context, repos ports.TxRepos, in inventory.AdjustStockInput) (*entity.StockMovement, error)
}

// ReceivePurchaseOrderUseCase recepción completa de una orden de compra.
type ReceivePurchaseOrderUseCase struct {
	txRunner ports.TxRunner
	adjuster StockAdjuster
	notifier ports.Notifier
	metrics  ports.Metrics
	log      *logger.Logger
	now      func() time.Time
}

// NewReceivePurchaseOrderUseCase construye el caso de uso.
func NewReceivePurchaseOrderUseCase(
	txRunner ports.TxRunner,
	adjuster StockAdjuster,
	notifier ports.Notifier,
	metrics ports.Metrics,
	log *logger.Logger,
) *ReceivePurchaseOrderUseCase {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ReceivePurchaseOrderUseCase{
		txRunner: txRunner,
		adjuster: adjuster,
		notifier: notifier,
		metrics:  metrics,
		log:      log.Component("receive_purchase_order"),
		now:      time.Now,
	}
}

// ReceivePurchaseOrder bloquea la orden, suma al stock la cantidad pedida de cada línea
// (movimiento IN referenciando la orden) y la marca RECEIVED, todo en una transacción.
// Una orden ya recibida se rechaza con ErrInvalidState; no es idempotente.
func (uc *ReceivePurchaseOrderUseCase) ReceivePurchaseOrder(ctx context.Context, tenantID, poID string) (*entity.PurchaseOrder, error) {
	if tenantID == "" || poID == "" {
		return nil, fmt.Errorf("%w: tenant y orden requeridos", domain.ErrInvalidInput)
	}
	var received *entity.PurchaseOrder
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos ports.TxRepos) error {
		po, err := repos.PurchaseOrders.GetForUpdate(ctx, tenantID, poID)
		if err != nil {
			return err
		}
		if po == nil {
			return fmt.Errorf("orden de compra %s: %w", poID, domain.ErrNotFound)
		}
		if po.IsReceived() {
			return fmt.Errorf("orden de compra %s ya recibida: %w", poID, domain.ErrInvalidState)
		}

		for _, it := range po.Items {
			_, err := uc.adjuster.AdjustStockInTx(ctx, repos, inventory.AdjustStockInput{
				TenantID:    tenantID,
				ProductID:   it.ProductID,
				SKU:         it.SKU,
				Delta:       it.QuantityOrdered,
				Type:        entity.MovementTypeIN,
				ReferenceID: po.ID,
			})
			if err != nil {
				return err
			}
		}

		at := uc.now().UTC()
		po.Status = entity.PurchaseOrderStatusReceived
		po.ReceivedAt = &at
		for i := range po.Items {
			po.Items[i].QuantityReceived = po.Items[i].QuantityOrdered
		}
		if err := repos.PurchaseOrders.MarkReceived(ctx, po); err != nil {
			return err
		}
		received = po
		return nil
	})
	if err != nil {
		uc.log.Debug().Err(err).Str("tenant_id", tenantID).Str("purchase_order_id", poID).Msg("recepción rechazada")
		return nil, err
	}

	uc.metrics.PurchaseOrderReceived(len(received.Items))
	uc.log.Info().
		Str("tenant_id", tenantID).
		Str("purchase_order_id", received.ID).
		Int("items", len(received.Items)).
		Msg("orden de compra recibida")
	events.Emit(ctx, uc.notifier, uc.metrics, uc.log, ports.Event{
		Type:        ports.EventStockChanged,
		TenantID:    tenantID,
		ReferenceID: received.ID,
		OccurredAt:  *received.ReceivedAt,
	})
	return received, nil
}
