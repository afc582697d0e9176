package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/inventario-ledger/internal/application/ports"
)

// NewRedisClient crea el cliente y verifica la conexión con PING.
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return client, nil
}

// RedisPublisher publica cada evento como JSON en el canal "<prefijo>.<tenant>",
// al que se suscribe la capa push de la UI.
type RedisPublisher struct {
	client redis.UniversalClient
	prefix string
}

var _ ports.Notifier = (*RedisPublisher)(nil)

// NewRedisPublisher construye el sumidero. prefix vacío usa "inventory.events".
func NewRedisPublisher(client redis.UniversalClient, prefix string) *RedisPublisher {
	if prefix == "" {
		prefix = "inventory.events"
	}
	return &RedisPublisher{client: client, prefix: prefix}
}

// Channel canal de pub/sub de un tenant.
func (p *RedisPublisher) Channel(tenantID string) string {
	return p.prefix + "." + tenantID
}

func (p *RedisPublisher) Notify(ctx context.Context, evt ports.Event) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("redis: serializar evento: %w", err)
	}
	if err := p.client.Publish(ctx, p.Channel(evt.TenantID), body).Err(); err != nil {
		return fmt.Errorf("redis: publicar: %w", err)
	}
	return nil
}
