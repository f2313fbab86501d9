// Package blobstore записывает собранный файл в основной сторадж,
// а при его отказе — в локальный запасной каталог. Ветвление выражено
// явным двухшаговым результатом, без управления потоком через ошибки.
package blobstore

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/yourname/upload_lite/internal/models"
)

// ObjectStore — непрозрачная способность основного хранилища принять объект.
type ObjectStore interface {
	PutObject(ctx context.Context, bucket, key string, data []byte, contentType string) (string, error)
}

// Client объединяет основной сторадж и локальный запасной каталог.
type Client struct {
	primary     ObjectStore
	fallbackDir string
}

// New создаёт клиент; primary может отсутствовать, тогда сразу пишем локально.
func New(primary ObjectStore, fallbackDir string) *Client {
	return &Client{primary: primary, fallbackDir: fallbackDir}
}

// Store пытается загрузить буфер в основной сторадж, при неудаче кладёт его
// в запасной каталог. Возвращает StoredFile с признаком usedFallback; если
// отказали оба пути — ErrStorageUnavailable.
func (c *Client) Store(ctx context.Context, data []byte, contentType, bucket, key string) (models.StoredFile, error) {
	var primaryErr error
	if c.primary != nil {
		url, err := c.primary.PutObject(ctx, bucket, key, data, contentType)
		if err == nil {
			return models.StoredFile{
				URL:    url,
				Bucket: bucket,
				Key:    key,
				Size:   int64(len(data)),
			}, nil
		}
		primaryErr = err
		log.Printf("blobstore: primary store failed for %s/%s: %v, falling back to local", bucket, key, err)
	} else {
		primaryErr = fmt.Errorf("primary store is not configured")
	}

	path, err := c.storeLocal(bucket, key, data)
	if err != nil {
		return models.StoredFile{}, fmt.Errorf("%w: primary: %v; fallback: %v", models.ErrStorageUnavailable, primaryErr, err)
	}

	return models.StoredFile{
		URL:          path,
		Bucket:       "local",
		Key:          key,
		Size:         int64(len(data)),
		UsedFallback: true,
	}, nil
}

// storeLocal пишет буфер в <fallbackDir>/<bucket>/<key>.
func (c *Client) storeLocal(bucket, key string, data []byte) (string, error) {
	path := filepath.Join(c.fallbackDir, bucket, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
