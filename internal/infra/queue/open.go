package queue

import (
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"video-dashboard/internal/domain"
)

// ErrUnknownBackend возвращается для неподдерживаемого QUEUE_BACKEND.
var ErrUnknownBackend = errors.New("неизвестный бэкенд очереди")

// Config описывает выбор очереди загрузок.
type Config struct {
	Backend   string
	Key       string
	RabbitURL string
	// Prefetch задаёт число одновременных доставок RabbitMQ.
	Prefetch int
}

// Open создаёт очередь загрузок. Для redis используется переданный клиент.
func Open(cfg Config, client redis.Cmdable) (domain.IngestQueue, func(), error) {
	switch cfg.Backend {
	case "", "redis":
		if client == nil {
			return nil, nil, errors.New("не указан адрес Redis (REDIS_ADDR)")
		}
		return NewRedisIngestQueue(client, cfg.Key), func() {}, nil
	case "rabbitmq":
		if cfg.RabbitURL == "" {
			return nil, nil, errors.New("не указан адрес RabbitMQ (RABBITMQ_URL)")
		}
		q, err := NewRabbitIngestQueue(cfg.RabbitURL, cfg.Key, cfg.Prefetch)
		if err != nil {
			return nil, nil, err
		}
		return q, func() { _ = q.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownBackend, cfg.Backend)
	}
}
