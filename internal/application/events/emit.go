package events

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/application/ports"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// Emit envía los eventos al notificador después de un commit.
// Es best-effort: los errores y pánicos del notificador se registran y se descartan,
// la operación de negocio ya es durable y nunca se revierte por esto.
func Emit(ctx context.Context, n ports.Notifier, m ports.Metrics, log *logger.Logger, evts ...ports.Event) {
	if n == nil {
		return
	}
	for _, evt := range evts {
		emitOne(ctx, n, m, log, evt)
	}
}

func emitOne(ctx context.Context, n ports.Notifier, m ports.Metrics, log *logger.Logger, evt ports.Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn().Str("event", evt.Type).Interface("panic", r).Msg("notificador en pánico, evento descartado")
			if m != nil {
				m.NotificationFailed(evt.Type)
			}
		}
	}()
	if err := n.Notify(ctx, evt); err != nil {
		log.Warn().Err(err).
			Str("event", evt.Type).
			Str("tenant_id", evt.TenantID).
			Str("reference_id", evt.ReferenceID).
			Msg("notificación descartada")
		if m != nil {
			m.NotificationFailed(evt.Type)
		}
	}
}
