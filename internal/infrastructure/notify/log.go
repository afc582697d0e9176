package notify

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/application/ports"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// LogNotifier escribe cada evento en el log. Sumidero por defecto en desarrollo.
type LogNotifier struct {
	log *logger.Logger
}

// NewLogNotifier construye el sumidero.
func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log.Component("notify_log")}
}

func (n *LogNotifier) Notify(_ context.Context, evt ports.Event) error {
	n.log.Info().
		Str("event", evt.Type).
		Str("tenant_id", evt.TenantID).
		Str("reference_id", evt.ReferenceID).
		Time("occurred_at", evt.OccurredAt).
		Msg("evento")
	return nil
}
