package queue

import "testing"

func TestPrefetchCountFollowsWorkers(t *testing.T) {
	cases := map[int]int{-1: 1, 0: 1, 1: 1, 4: 4}
	for workers, want := range cases {
		if got := prefetchCount(workers); got != want {
			t.Fatalf("воркеров %d: ожидали prefetch %d, получили %d", workers, want, got)
		}
	}
}

func TestNewRabbitIngestQueueValidatesArgs(t *testing.T) {
	if _, err := NewRabbitIngestQueue("", "ingest", 2); err == nil {
		t.Fatalf("ожидали ошибку для пустого адреса")
	}
	if _, err := NewRabbitIngestQueue("amqp://localhost", "", 2); err == nil {
		t.Fatalf("ожидали ошибку для пустой очереди")
	}
}
