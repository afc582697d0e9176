package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/jhoicas/inventario-ledger/internal/application/ports"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// RabbitMQConfig conexión y exchange de destino.
type RabbitMQConfig struct {
	URL      string
	Exchange string
}

// RabbitMQPublisher publica cada evento en un exchange topic con routing key
// "<tipo>.<tenant>", p. ej. "stock.changed.t1".
type RabbitMQPublisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	log      *logger.Logger
}

var _ ports.Notifier = (*RabbitMQPublisher)(nil)

// NewRabbitMQPublisher conecta con reintentos y declara el exchange.
func NewRabbitMQPublisher(cfg RabbitMQConfig, log *logger.Logger) (*RabbitMQPublisher, error) {
	if cfg.Exchange == "" {
		return nil, fmt.Errorf("rabbitmq: exchange requerido")
	}
	log = log.Component("notify_rabbitmq")

	var conn *amqp.Connection
	var err error
	for i := 0; i < 5; i++ {
		conn, err = amqp.Dial(cfg.URL)
		if err == nil {
			break
		}
		retry := time.Duration(i*i)*time.Second + time.Second
		log.Warn().Err(err).Dur("retry_in", retry).Msg("rabbitmq no disponible, reintentando")
		time.Sleep(retry)
	}
	if err != nil {
		return nil, fmt.Errorf("rabbitmq: conectar: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("rabbitmq: abrir canal: %w", err)
	}
	err = ch.ExchangeDeclare(
		cfg.Exchange, // name
		"topic",      // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("rabbitmq: declarar exchange %s: %w", cfg.Exchange, err)
	}
	log.Info().Str("exchange", cfg.Exchange).Msg("exchange declarado")

	return &RabbitMQPublisher{conn: conn, channel: ch, exchange: cfg.Exchange, log: log}, nil
}

// RoutingKey clave de ruteo para un evento.
func RoutingKey(evt ports.Event) string {
	return evt.Type + "." + evt.TenantID
}

func (p *RabbitMQPublisher) Notify(ctx context.Context, evt ports.Event) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("rabbitmq: serializar evento: %w", err)
	}
	err = p.channel.PublishWithContext(
		ctx,
		p.exchange,
		RoutingKey(evt),
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    evt.OccurredAt,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("rabbitmq: publicar %s: %w", RoutingKey(evt), err)
	}
	return nil
}

// Close cierra canal y conexión.
func (p *RabbitMQPublisher) Close() error {
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			return err
		}
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
