package ports

import "github.com/jhoicas/inventario-ledger/internal/domain/entity"

// Metrics puerto para métricas de negocio del núcleo de inventario.
type Metrics interface {
	OrderCreated(itemCount int)
	OrderRejected(kind string)
	PurchaseOrderReceived(lineCount int)
	StockAdjusted(movementType entity.MovementType, delta int64)
	NotificationFailed(eventType string)
}

// NopMetrics implementación vacía para tests o cuando no hay exportador.
type NopMetrics struct{}

func (NopMetrics) OrderCreated(int) {}
func (NopMetrics) OrderRejected(string) {}
func (NopMetrics) PurchaseOrderReceived(int) {}
func (NopMetrics) StockAdjusted(entity.MovementType, int64) {}
func (NopMetrics) NotificationFailed(string) {}
