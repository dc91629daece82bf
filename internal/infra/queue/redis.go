package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"video-dashboard/internal/domain"
	"video-dashboard/internal/infra/metrics"
)

// RedisIngestQueue реализует очередь задач загрузки на базе Redis lists.
type RedisIngestQueue struct {
	client redis.Cmdable
	key    string
}

var _ domain.IngestQueue = (*RedisIngestQueue)(nil)

// NewRedisIngestQueue создаёт очередь по указанному ключу.
func NewRedisIngestQueue(client redis.Cmdable, key string) *RedisIngestQueue {
	return &RedisIngestQueue{client: client, key: key}
}

// Enqueue публикует задачу в очередь.
func (q *RedisIngestQueue) Enqueue(ctx context.Context, job domain.IngestJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	start := time.Now()
	err = q.client.LPush(ctx, q.key, payload).Err()
	metrics.ObserveNetworkRequest("redis", "lpush", q.key, start, err)
	if err != nil {
		return fmt.Errorf("push job: %w", err)
	}
	return nil
}

// Receive блокирующе читает задачу. Отказ через AckFunc возвращает задачу в очередь
// с увеличенным номером попытки.
func (q *RedisIngestQueue) Receive(ctx context.Context) (domain.IngestJob, domain.AckFunc, error) {
	for {
		if err := ctx.Err(); err != nil {
			return domain.IngestJob{}, nil, err
		}

		res, err := q.client.BRPop(ctx, time.Second, q.key).Result()
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				if ctx.Err() != nil {
					return domain.IngestJob{}, nil, ctx.Err()
				}
				continue
			}
			if errors.Is(err, redis.Nil) {
				continue
			}
			return domain.IngestJob{}, nil, err
		}
		if len(res) != 2 {
			return domain.IngestJob{}, nil, errors.New("redis queue: unexpected response")
		}
		var job domain.IngestJob
		if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
			return domain.IngestJob{}, nil, fmt.Errorf("decode job: %w", err)
		}
		return job, q.ackFunc(ctx, job), nil
	}
}

func (q *RedisIngestQueue) ackFunc(ctx context.Context, job domain.IngestJob) domain.AckFunc {
	return func(success bool) error {
		if success {
			return nil
		}
		job.Attempt++
		return q.Enqueue(context.WithoutCancel(ctx), job)
	}
}
