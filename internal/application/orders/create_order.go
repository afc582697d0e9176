package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/application/events"
	"github.com/jhoicas/inventario-ledger/internal/application/ports"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// CreateOrderUseCase reserva stock para una orden de venta de varias líneas
// en una sola unidad de trabajo.
type CreateOrderUseCase struct {
	txRunner ports.TxRunner
	orders   repository.OrderRepository
	notifier ports.Notifier
	metrics  ports.Metrics
	log      *logger.Logger
	now      func() time.Time
}

// NewCreateOrderUseCase construye el caso de uso. orders se usa solo para lecturas fuera de tx.
func NewCreateOrderUseCase(
	txRunner ports.TxRunner,
	orders repository.OrderRepository,
	notifier ports.Notifier,
	metrics ports.Metrics,
	log *logger.Logger,
) *CreateOrderUseCase {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &CreateOrderUseCase{
		txRunner: txRunner,
		orders:   orders,
		notifier: notifier,
		metrics:  metrics,
		log:      log.Component("create_order"),
		now:      time.Now,
	}
}

// ItemInput línea solicitada por el caller.
type ItemInput struct {
	ProductID  string
	VariantSKU string
	Quantity   int64
	Price      decimal.Decimal
}

func validateItems(items []ItemInput) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: la orden no tiene líneas", domain.ErrInvalidInput)
	}
	for i, it := range items {
		if it.ProductID == "" || it.VariantSKU == "" {
			return fmt.Errorf("%w: línea %d sin producto o sku", domain.ErrInvalidInput, i)
		}
		if it.Quantity < 1 {
			return fmt.Errorf("%w: línea %d con cantidad %d", domain.ErrInvalidInput, i, it.Quantity)
		}
		if it.Price.IsNegative() {
			return fmt.Errorf("%w: línea %d con precio negativo", domain.ErrInvalidInput, i)
		}
	}
	return nil
}

// CreateOrder valida, descuenta el stock de cada línea en el orden recibido, persiste la
// orden CONFIRMED y un movimiento OUT por línea. Cualquier fallo revierte todo.
// Tras el commit emite "order created" y "stock changed".
func (uc *CreateOrderUseCase) CreateOrder(ctx context.Context, tenantID string, items []ItemInput) (*entity.Order, error) {
	order, err := uc.createOrder(ctx, tenantID, items)
	if err != nil {
		uc.metrics.OrderRejected(domain.Kind(err))
		uc.log.Debug().Err(err).Str("tenant_id", tenantID).Int("items", len(items)).Msg("orden rechazada")
		return nil, err
	}
	uc.metrics.OrderCreated(len(order.Items))
	uc.log.Info().
		Str("tenant_id", order.TenantID).
		Str("order_id", order.ID).
		Int("items", len(order.Items)).
		Str("total", order.TotalAmount.String()).
		Msg("orden confirmada")

	events.Emit(ctx, uc.notifier, uc.metrics, uc.log,
		ports.Event{Type: ports.EventOrderCreated, TenantID: order.TenantID, ReferenceID: order.ID, OccurredAt: order.CreatedAt},
		ports.Event{Type: ports.EventStockChanged, TenantID: order.TenantID, ReferenceID: order.ID, OccurredAt: order.CreatedAt},
	)
	return order, nil
}

func (uc *CreateOrderUseCase) createOrder(ctx context.Context, tenantID string, items []ItemInput) (*entity.Order, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenant requerido", domain.ErrInvalidInput)
	}
	if err := validateItems(items); err != nil {
		return nil, err
	}

	now := uc.now().UTC()
	order := &entity.Order{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		Status:    entity.OrderStatusConfirmed,
		Items:     make([]entity.OrderItem, 0, len(items)),
		CreatedAt: now,
	}
	total := decimal.Zero
	for _, it := range items {
		line := entity.OrderItem{
			ProductID:  it.ProductID,
			VariantSKU: it.VariantSKU,
			Quantity:   it.Quantity,
			Price:      it.Price,
		}
		order.Items = append(order.Items, line)
		total = total.Add(line.Subtotal())
	}
	order.TotalAmount = total

	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos ports.TxRepos) error {
		for _, it := range order.Items {
			if _, err := repos.Products.AdjustStock(ctx, tenantID, it.ProductID, it.VariantSKU, -it.Quantity); err != nil {
				return stockError(it, err)
			}
		}
		if err := repos.Orders.Create(ctx, order); err != nil {
			return err
		}
		for _, it := range order.Items {
			mov := &entity.StockMovement{
				ID:          uuid.New().String(),
				TenantID:    tenantID,
				ProductID:   it.ProductID,
				VariantSKU:  it.VariantSKU,
				Type:        entity.MovementTypeOUT,
				Quantity:    -it.Quantity,
				ReferenceID: order.ID,
				CreatedAt:   now,
			}
			if err := repos.Movements.Create(ctx, mov); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func stockError(it entity.OrderItem, err error) error {
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		return fmt.Errorf("producto %s, sku %s, solicitado %d: %w", it.ProductID, it.VariantSKU, it.Quantity, domain.ErrInsufficientStock)
	case errors.Is(err, domain.ErrNotFound):
		return fmt.Errorf("producto %s, sku %s: %w", it.ProductID, it.VariantSKU, domain.ErrNotFound)
	default:
		return err
	}
}

// GetOrder devuelve una orden del tenant. ErrNotFound si no existe.
func (uc *CreateOrderUseCase) GetOrder(ctx context.Context, tenantID, id string) (*entity.Order, error) {
	order, err := uc.orders.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	return order, nil
}

// ListOrders órdenes del tenant, más recientes primero.
func (uc *CreateOrderUseCase) ListOrders(ctx context.Context, tenantID string, limit, offset int) ([]*entity.Order, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 500 {
		limit = 500
	}
	if offset < 0 {
		offset = 0
	}
	return uc.orders.ListByTenant(ctx, tenantID, limit, offset)
}
