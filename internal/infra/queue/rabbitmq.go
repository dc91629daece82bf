package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"

	"video-dashboard/internal/domain"
	"video-dashboard/internal/infra/metrics"
)

// ErrQueueClosed возвращается, если брокер закрыл канал доставки.
var ErrQueueClosed = errors.New("канал доставки RabbitMQ закрыт")

// RabbitIngestQueue реализует очередь задач загрузки через AMQP.
type RabbitIngestQueue struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string

	publishMu  sync.Mutex
	consumeMu  sync.Mutex
	deliveries <-chan amqp.Delivery
}

var _ domain.IngestQueue = (*RabbitIngestQueue)(nil)

// NewRabbitIngestQueue подключается к брокеру и объявляет долговечную очередь.
// prefetch ограничивает число неподтверждённых доставок и обычно равен числу воркеров.
func NewRabbitIngestQueue(amqpURL, queue string, prefetch int) (*RabbitIngestQueue, error) {
	if amqpURL == "" {
		return nil, errors.New("amqp url is empty")
	}
	if queue == "" {
		return nil, errors.New("queue name is empty")
	}
	start := time.Now()
	conn, err := amqp.Dial(amqpURL)
	metrics.ObserveNetworkRequest("rabbitmq", "dial", queue, start, err)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}
	if err := ch.Qos(prefetchCount(prefetch), 0, false); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set qos: %w", err)
	}
	return &RabbitIngestQueue{conn: conn, ch: ch, queue: queue}, nil
}

func prefetchCount(workers int) int {
	if workers < 1 {
		return 1
	}
	return workers
}

// Enqueue публикует задачу в очередь.
func (q *RabbitIngestQueue) Enqueue(ctx context.Context, job domain.IngestJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	q.publishMu.Lock()
	defer q.publishMu.Unlock()

	start := time.Now()
	err = q.ch.PublishWithContext(ctx, "", q.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    job.ID,
		Timestamp:    time.Now(),
		Body:         payload,
	})
	metrics.ObserveNetworkRequest("rabbitmq", "publish", q.queue, start, err)
	if err != nil {
		return fmt.Errorf("publish job: %w", err)
	}
	return nil
}

// Receive блокирующе читает задачу. Отказ через AckFunc публикует задачу повторно
// с увеличенным номером попытки и подтверждает исходное сообщение.
func (q *RabbitIngestQueue) Receive(ctx context.Context) (domain.IngestJob, domain.AckFunc, error) {
	deliveries, err := q.consume()
	if err != nil {
		return domain.IngestJob{}, nil, err
	}
	select {
	case <-ctx.Done():
		return domain.IngestJob{}, nil, ctx.Err()
	case d, ok := <-deliveries:
		if !ok {
			return domain.IngestJob{}, nil, ErrQueueClosed
		}
		var job domain.IngestJob
		if err := json.Unmarshal(d.Body, &job); err != nil {
			_ = d.Nack(false, false)
			return domain.IngestJob{}, nil, fmt.Errorf("decode job: %w", err)
		}
		return job, q.ackFunc(ctx, d, job), nil
	}
}

func (q *RabbitIngestQueue) consume() (<-chan amqp.Delivery, error) {
	q.consumeMu.Lock()
	defer q.consumeMu.Unlock()
	if q.deliveries != nil {
		return q.deliveries, nil
	}
	deliveries, err := q.ch.Consume(q.queue, "", false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("consume: %w", err)
	}
	q.deliveries = deliveries
	return deliveries, nil
}

func (q *RabbitIngestQueue) ackFunc(ctx context.Context, d amqp.Delivery, job domain.IngestJob) domain.AckFunc {
	return func(success bool) error {
		if success {
			return d.Ack(false)
		}
		job.Attempt++
		if err := q.Enqueue(context.WithoutCancel(ctx), job); err != nil {
			return errors.Join(err, d.Nack(false, true))
		}
		return d.Ack(false)
	}
}

// Close закрывает канал и соединение.
func (q *RabbitIngestQueue) Close() error {
	chErr := q.ch.Close()
	return errors.Join(chErr, q.conn.Close())
}
