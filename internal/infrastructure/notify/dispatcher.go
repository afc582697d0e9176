// Package notify entrega los eventos posteriores al commit a los sumideros externos
// (RabbitMQ, Redis pub/sub, log) sin bloquear la petición que los produjo.
package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/inventario-ledger/internal/application/ports"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// Errores devueltos por Notify; events.Emit los registra y descarta.
var (
	ErrQueueFull = errors.New("cola de notificaciones llena")
	ErrClosed    = errors.New("despachador cerrado")
)

const defaultSinkTimeout = 5 * time.Second

// Dispatcher cola acotada con un único worker que reparte cada evento a todos los sumideros.
// Si la cola está llena el evento se descarta: como máximo una entrega por commit.
type Dispatcher struct {
	sinks   []ports.Notifier
	queue   chan ports.Event
	metrics ports.Metrics
	log     *logger.Logger
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

var _ ports.Notifier = (*Dispatcher)(nil)

// NewDispatcher arranca el worker. buffer <= 0 usa 256.
func NewDispatcher(log *logger.Logger, metrics ports.Metrics, buffer int, sinks ...ports.Notifier) *Dispatcher {
	if buffer <= 0 {
		buffer = 256
	}
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	d := &Dispatcher{
		sinks:   sinks,
		queue:   make(chan ports.Event, buffer),
		metrics: metrics,
		log:     log.Component("notify"),
		timeout: defaultSinkTimeout,
		done:    make(chan struct{}),
	}
	go d.run()
	return d
}

// Notify encola el evento sin bloquear.
func (d *Dispatcher) Notify(_ context.Context, evt ports.Event) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrClosed
	}
	select {
	case d.queue <- evt:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close deja de aceptar eventos y espera a que se entreguen los ya encolados o a que ctx expire.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for evt := range d.queue {
		d.deliver(evt)
	}
}

func (d *Dispatcher) deliver(evt ports.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	var g errgroup.Group
	for _, sink := range d.sinks {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("pánico en sumidero %T: %v", sink, r)
				}
				if err != nil {
					d.log.Warn().Err(err).Str("event", evt.Type).Str("tenant_id", evt.TenantID).Msg("entrega fallida")
				}
			}()
			return sink.Notify(ctx, evt)
		})
	}
	if err := g.Wait(); err != nil {
		d.metrics.NotificationFailed(evt.Type)
	}
}
