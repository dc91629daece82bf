package repo

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type stubBatch struct {
	pgx.BatchResults
	failAt   int
	closeErr error
	execs    int
	closed   bool
}

func (b *stubBatch) Exec() (pgconn.CommandTag, error) {
	b.execs++
	if b.execs == b.failAt {
		return pgconn.CommandTag{}, errors.New("duplicate key")
	}
	return pgconn.CommandTag{}, nil
}

func (b *stubBatch) Close() error {
	b.closed = true
	return b.closeErr
}

func TestExecBatch(t *testing.T) {
	closeErr := errors.New("connection reset")
	cases := []struct {
		name      string
		batch     *stubBatch
		wantSaved int
		wantErr   bool
	}{
		{name: "все запросы", batch: &stubBatch{}, wantSaved: 3},
		{name: "ошибка запроса", batch: &stubBatch{failAt: 2}, wantSaved: 1, wantErr: true},
		{name: "ошибка закрытия", batch: &stubBatch{closeErr: closeErr}, wantSaved: 3, wantErr: true},
	}
	for _, tc := range cases {
		saved, err := execBatch(tc.batch, 3)
		if saved != tc.wantSaved {
			t.Fatalf("%s: ожидали %d сохранённых, получили %d", tc.name, tc.wantSaved, saved)
		}
		if (err != nil) != tc.wantErr {
			t.Fatalf("%s: неожиданная ошибка: %v", tc.name, err)
		}
		if !tc.batch.closed {
			t.Fatalf("%s: пакет должен быть закрыт", tc.name)
		}
	}
	if _, err := execBatch(&stubBatch{closeErr: closeErr}, 1); !errors.Is(err, closeErr) {
		t.Fatalf("ошибка закрытия пакета должна возвращаться: %v", err)
	}
}
