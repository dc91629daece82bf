package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"video-dashboard/internal/domain"
	"video-dashboard/internal/infra/metrics"
)

const s3Scheme = "s3://"

var (
	// ErrObjectStorageDisabled возвращается для s3:// адреса без настроенного MinIO.
	ErrObjectStorageDisabled = errors.New("объектное хранилище не настроено")
	// ErrBadSource возвращается для некорректного адреса выгрузки.
	ErrBadSource = errors.New("некорректный адрес выгрузки")
)

// ObjectGetter — часть клиента MinIO, нужная для чтения выгрузок.
type ObjectGetter interface {
	GetObject(ctx context.Context, bucket, object string, opts minio.GetObjectOptions) (*minio.Object, error)
}

// MinIOConfig описывает подключение к объектному хранилищу.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// Fetcher открывает выгрузки с локального диска или из MinIO.
type Fetcher struct {
	objects ObjectGetter
	baseDir string
}

var _ domain.SourceFetcher = (*Fetcher)(nil)

// NewFetcher создаёт загрузчик. objects может быть nil, тогда s3:// недоступен.
// Относительные локальные пути разрешаются от baseDir.
func NewFetcher(objects ObjectGetter, baseDir string) *Fetcher {
	return &Fetcher{objects: objects, baseDir: baseDir}
}

// NewMinIO создаёт клиента MinIO. Пустой endpoint означает отсутствие хранилища.
func NewMinIO(cfg MinIOConfig) (ObjectGetter, error) {
	if cfg.Endpoint == "" {
		return nil, nil
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}
	return client, nil
}

// Open реализует domain.SourceFetcher.
func (f *Fetcher) Open(ctx context.Context, source string) (io.ReadCloser, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, ErrBadSource
	}
	if strings.HasPrefix(source, s3Scheme) {
		return f.openObject(ctx, strings.TrimPrefix(source, s3Scheme))
	}
	path := source
	if !filepath.IsAbs(path) && f.baseDir != "" {
		path = filepath.Join(f.baseDir, path)
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return file, nil
}

func (f *Fetcher) openObject(ctx context.Context, location string) (io.ReadCloser, error) {
	if f.objects == nil {
		return nil, ErrObjectStorageDisabled
	}
	bucket, key, ok := strings.Cut(location, "/")
	if !ok || bucket == "" || key == "" {
		return nil, fmt.Errorf("%w: %s%s", ErrBadSource, s3Scheme, location)
	}
	start := time.Now()
	obj, err := f.objects.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err == nil {
		_, err = obj.Stat()
		if err != nil {
			obj.Close()
		}
	}
	metrics.ObserveNetworkRequest("minio", "get_object", bucket, start, err)
	if err != nil {
		return nil, fmt.Errorf("get object %s/%s: %w", bucket, key, err)
	}
	return obj, nil
}
