package ports

import (
	"context"
	"time"
)

// Tipos de evento emitidos después de un commit.
const (
	EventStockChanged = "stock.changed"
	EventOrderCreated = "order.created"
)

// Event señal enviada a los suscriptores externos (clientes UI vía la capa push).
type Event struct {
	Type        string    `json:"type"`
	TenantID    string    `json:"tenant_id"`
	ReferenceID string    `json:"reference_id,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Notifier puerto de salida de notificaciones. Solo se invoca después del commit;
// sus errores se registran y descartan, nunca revierten la operación de negocio.
type Notifier interface {
	Notify(ctx context.Context, evt Event) error
}

// NopNotifier descarta todos los eventos.
type NopNotifier struct{}

// Notify no hace nada.
func (NopNotifier) Notify(context.Context, Event) error { return nil }
