package config

import (
	"log"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// AppConfig описывает конфигурацию сервисов.
type AppConfig struct {
	AppEnv      string `envconfig:"APP_ENV" default:"dev"`
	TZ          string `envconfig:"TZ" default:"Europe/Amsterdam"`
	Port        int    `envconfig:"PORT" default:"8080"`
	MetricsAddr string `envconfig:"METRICS_ADDR" default:":9090"`
	LogPretty   bool   `envconfig:"LOG_PRETTY" default:"false"`

	Server struct {
		ReadTimeout    time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"15s"`
		WriteTimeout   time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"30s"`
		RequestTimeout time.Duration `envconfig:"HTTP_REQUEST_TIMEOUT" default:"60s"`
	} `envconfig:""`

	Store struct {
		Driver     string `envconfig:"STORE_DRIVER" default:"postgres"`
		PGDSN      string `envconfig:"PG_DSN"`
		PGMaxConns int32  `envconfig:"PG_MAX_CONNS" default:"5"`
		SQLitePath string `envconfig:"SQLITE_PATH" default:"dashboard.db"`
	} `envconfig:""`

	RedisAddr string `envconfig:"REDIS_ADDR"`

	Queues struct {
		Backend     string        `envconfig:"QUEUE_BACKEND" default:"redis"`
		RabbitURL   string        `envconfig:"RABBITMQ_URL"`
		Ingest      string        `envconfig:"INGEST_QUEUE_KEY" default:"ingest_jobs"`
		Workers     int           `envconfig:"INGEST_WORKERS" default:"2"`
		LockTTL     time.Duration `envconfig:"INGEST_LOCK_TTL" default:"30m"`
		MaxAttempts int           `envconfig:"INGEST_MAX_ATTEMPTS" default:"5"`
	} `envconfig:""`

	MinIO struct {
		Endpoint  string `envconfig:"MINIO_ENDPOINT"`
		AccessKey string `envconfig:"MINIO_ACCESS_KEY"`
		SecretKey string `envconfig:"MINIO_SECRET_KEY"`
		UseSSL    bool   `envconfig:"MINIO_USE_SSL" default:"false"`
	} `envconfig:""`

	Telegram struct {
		Token string `envconfig:"TG_BOT_TOKEN"`
	} `envconfig:""`

	Report struct {
		ChatIDs    []int64 `envconfig:"REPORT_CHAT_IDS"`
		Cron       string  `envconfig:"REPORT_CRON" default:"0 9 * * *"`
		TopN       int     `envconfig:"REPORT_TOP_N" default:"5"`
		RunOnStart bool    `envconfig:"REPORT_RUN_ON_START" default:"false"`
	} `envconfig:""`
}

// Load загружает конфиг из окружения.
func Load() AppConfig {
	cfg, err := Parse()
	if err != nil {
		log.Fatalf("не удалось загрузить конфиг: %v", err)
	}
	return cfg
}

// Parse читает конфиг из окружения и возвращает ошибку вместо завершения процесса.
func Parse() (AppConfig, error) {
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// Location возвращает часовой пояс из TZ, при ошибке UTC.
// Допускается запись в другом регистре и с пробелами: "europe/new york".
func (c AppConfig) Location() *time.Location {
	name, ok := normalizeTimezone(c.TZ)
	if !ok {
		return time.UTC
	}
	loc, _ := time.LoadLocation(name)
	return loc
}

func normalizeTimezone(raw string) (string, bool) {
	candidate := strings.ReplaceAll(strings.TrimSpace(raw), " ", "_")
	if candidate == "" {
		return "", false
	}
	if _, err := time.LoadLocation(candidate); err == nil {
		return candidate, true
	}

	parts := strings.Split(strings.ToLower(candidate), "/")
	for i, part := range parts {
		segments := strings.Split(part, "_")
		for j, segment := range segments {
			pieces := strings.Split(segment, "-")
			for k, piece := range pieces {
				if piece != "" {
					pieces[k] = strings.ToUpper(piece[:1]) + piece[1:]
				}
			}
			segments[j] = strings.Join(pieces, "-")
		}
		parts[i] = strings.Join(segments, "_")
	}
	normalized := strings.Join(parts, "/")
	if _, err := time.LoadLocation(normalized); err != nil {
		return "", false
	}
	return normalized, true
}
