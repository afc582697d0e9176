package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/inventario-ledger/internal/application/events"
	"github.com/jhoicas/inventario-ledger/internal/application/ports"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// AdjustStockUseCase es la primitiva de ajuste de stock: aplica un delta con signo a una
// variante mediante una mutación condicional y agrega exactamente un movimiento al libro.
type AdjustStockUseCase struct {
	txRunner ports.TxRunner
	notifier ports.Notifier
	metrics  ports.Metrics
	log      *logger.Logger
	now      func() time.Time
}

// NewAdjustStockUseCase construye el caso de uso.
func NewAdjustStockUseCase(
	txRunner ports.TxRunner,
	notifier ports.Notifier,
	metrics ports.Metrics,
	log *logger.Logger,
) *AdjustStockUseCase {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &AdjustStockUseCase{
		txRunner: txRunner,
		notifier: notifier,
		metrics:  metrics,
		log:      log.Component("adjust_stock"),
		now:      time.Now,
	}
}

// AdjustStockInput entrada de la primitiva. ReferenceID es opcional.
// IN exige delta positivo, OUT negativo; ADJUSTMENT acepta ambos signos.
type AdjustStockInput struct {
	TenantID    string
	ProductID   string
	SKU         string
	Delta       int64
	Type        entity.MovementType
	ReferenceID string
}

func (in AdjustStockInput) validate() error {
	if in.TenantID == "" || in.ProductID == "" || in.SKU == "" {
		return domain.ErrInvalidInput
	}
	if in.Delta == 0 || !in.Type.Valid() {
		return domain.ErrInvalidInput
	}
	if (in.Type == entity.MovementTypeIN && in.Delta < 0) || (in.Type == entity.MovementTypeOUT && in.Delta > 0) {
		return domain.ErrInvalidInput
	}
	return nil
}

// AdjustStock ejecuta la primitiva en su propia transacción (Commit automático).
// No notifica a suscriptores.
func (uc *AdjustStockUseCase) AdjustStock(ctx context.Context, in AdjustStockInput) (*entity.StockMovement, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var mov *entity.StockMovement
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos ports.TxRepos) error {
		m, err := uc.AdjustStockInTx(ctx, repos, in)
		if err != nil {
			return err
		}
		mov = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.metrics.StockAdjusted(mov.Type, mov.Quantity)
	return mov, nil
}

// AdjustStockInTx ejecuta la primitiva usando los repositorios del caller (misma transacción).
// No hace Commit ni Rollback: si retorna error, el caller debe abortar su unidad de trabajo.
func (uc *AdjustStockUseCase) AdjustStockInTx(ctx context.Context, repos ports.TxRepos, in AdjustStockInput) (*entity.StockMovement, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	// Mutación condicional: verifica la variante y cambia el contador en la misma sentencia
	if _, err := repos.Products.AdjustStock(ctx, in.TenantID, in.ProductID, in.SKU, in.Delta); err != nil {
		return nil, fmt.Errorf("producto %s, sku %s, delta %d: %w", in.ProductID, in.SKU, in.Delta, err)
	}
	mov := &entity.StockMovement{
		ID:          uuid.New().String(),
		TenantID:    in.TenantID,
		ProductID:   in.ProductID,
		VariantSKU:  in.SKU,
		Type:        in.Type,
		Quantity:    in.Delta,
		ReferenceID: in.ReferenceID,
		CreatedAt:   uc.now().UTC(),
	}
	if err := repos.Movements.Create(ctx, mov); err != nil {
		return nil, err
	}
	return mov, nil
}

// RegisterAdjustment ajuste manual expuesto a la capa HTTP: aplica la primitiva y,
// tras el commit, emite "stock changed".
func (uc *AdjustStockUseCase) RegisterAdjustment(ctx context.Context, in AdjustStockInput) (*entity.StockMovement, error) {
	mov, err := uc.AdjustStock(ctx, in)
	if err != nil {
		uc.log.Debug().Err(err).Str("tenant_id", in.TenantID).Str("sku", in.SKU).Msg("ajuste rechazado")
		return nil, err
	}
	uc.log.Info().
		Str("tenant_id", mov.TenantID).
		Str("product_id", mov.ProductID).
		Str("sku", mov.VariantSKU).
		Str("type", string(mov.Type)).
		Int64("quantity", mov.Quantity).
		Msg("ajuste de stock registrado")
	events.Emit(ctx, uc.notifier, uc.metrics, uc.log, ports.Event{
		Type:        ports.EventStockChanged,
		TenantID:    mov.TenantID,
		ReferenceID: mov.ReferenceID,
		OccurredAt:  mov.CreatedAt,
	})
	return mov, nil
}
