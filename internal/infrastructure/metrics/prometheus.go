// Package metrics expone métricas Prometheus del núcleo de inventario y de la capa HTTP.
package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/inventario-ledger/internal/application/ports"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// Prometheus implementa ports.Metrics sobre un registry propio (no el global).
type Prometheus struct {
	registry *prometheus.Registry

	ordersCreated     prometheus.Counter
	orderLines        prometheus.Counter
	ordersRejected    *prometheus.CounterVec
	poReceived        prometheus.Counter
	poLinesReceived   prometheus.Counter
	stockAdjustments  *prometheus.CounterVec
	stockUnits        *prometheus.CounterVec
	notifyFailures    *prometheus.CounterVec
	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
}

var _ ports.Metrics = (*Prometheus)(nil)

// New registra todas las métricas con el prefijo dado (p. ej. "inventario").
func New(prefix string) *Prometheus {
	if prefix == "" {
		prefix = "inventario"
	}
	m := &Prometheus{
		registry: prometheus.NewRegistry(),
		ordersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_orders_created_total",
			Help: "Órdenes de venta confirmadas",
		}),
		orderLines: prometheus.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_order_lines_total",
			Help: "Líneas de órdenes de venta confirmadas",
		}),
		ordersRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_orders_rejected_total",
			Help: "Órdenes rechazadas por tipo de error",
		}, []string{"kind"}),
		poReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_purchase_orders_received_total",
			Help: "Órdenes de compra recibidas",
		}),
		poLinesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_purchase_order_lines_received_total",
			Help: "Líneas de órdenes de compra recibidas",
		}),
		stockAdjustments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_stock_adjustments_total",
			Help: "Ajustes de stock confirmados por tipo de movimiento",
		}, []string{"type"}),
		stockUnits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_stock_units_moved_total",
			Help: "Unidades movidas (valor absoluto) por tipo de movimiento",
		}, []string{"type"}),
		notifyFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_notifications_failed_total",
			Help: "Notificaciones descartadas por error del sumidero o cola llena",
		}, []string{"event"}),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total de peticiones HTTP",
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duración de peticiones HTTP en segundos",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}
	m.registry.MustRegister(
		m.ordersCreated, m.orderLines, m.ordersRejected,
		m.poReceived, m.poLinesReceived,
		m.stockAdjustments, m.stockUnits,
		m.notifyFailures,
		m.httpRequestsTotal, m.httpDuration,
	)
	return m
}

// Registry para registrar métricas adicionales o inspeccionarlas en tests.
func (m *Prometheus) Registry() *prometheus.Registry { return m.registry }

func (m *Prometheus) OrderCreated(itemCount int) {
	m.ordersCreated.Inc()
	m.orderLines.Add(float64(itemCount))
}

func (m *Prometheus) OrderRejected(kind string) {
	m.ordersRejected.WithLabelValues(kind).Inc()
}

func (m *Prometheus) PurchaseOrderReceived(lineCount int) {
	m.poReceived.Inc()
	m.poLinesReceived.Add(float64(lineCount))
}

func (m *Prometheus) StockAdjusted(movementType entity.MovementType, delta int64) {
	if delta < 0 {
		delta = -delta
	}
	m.stockAdjustments.WithLabelValues(string(movementType)).Inc()
	m.stockUnits.WithLabelValues(string(movementType)).Add(float64(delta))
}

func (m *Prometheus) NotificationFailed(eventType string) {
	m.notifyFailures.WithLabelValues(eventType).Inc()
}

// Middleware registra cantidad y duración de cada petición por ruta (plantilla, no path real).
func (m *Prometheus) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
		}
		path := c.Route().Path
		m.httpRequestsTotal.WithLabelValues(c.Method(), path, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(c.Method(), path).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler sirve /metrics desde el registry propio.
func (m *Prometheus) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
