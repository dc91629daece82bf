package repo

import (
	"context"
	"errors"
	"fmt"

	"video-dashboard/internal/domain"
	"video-dashboard/internal/infra/db"
)

// ErrUnknownDriver возвращается для неподдерживаемого STORE_DRIVER.
var ErrUnknownDriver = errors.New("неизвестный драйвер хранилища")

// Store объединяет чтение записей и загрузку выгрузок.
type Store interface {
	domain.RecordStore
	domain.IngestRepo
}

// StoreConfig описывает выбор и подключение хранилища.
type StoreConfig struct {
	Driver     string
	PGDSN      string
	PGMaxConns int32
	SQLitePath string
}

// Open подключает хранилище выбранного драйвера. closeFn освобождает соединения.
func Open(ctx context.Context, cfg StoreConfig) (Store, func(), error) {
	switch cfg.Driver {
	case "", "postgres":
		pool, err := db.Connect(ctx, cfg.PGDSN, cfg.PGMaxConns)
		if err != nil {
			return nil, nil, err
		}
		return NewPostgres(pool), pool.Close, nil
	case "sqlite":
		conn, err := db.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return NewSQLite(conn), func() { _ = conn.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownDriver, cfg.Driver)
	}
}
