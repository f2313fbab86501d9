package blobstore

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Config — параметры подключения к S3-совместимому стораджу.
type S3Config struct {
	Endpoint      string
	Region        string
	AccessKey     string
	SecretKey     string
	UseSSL        bool
	PathStyle     bool
	PublicBaseURL string
}

// S3Store — основной сторадж поверх minio-клиента.
type S3Store struct {
	cl      *minio.Client
	baseURL string
}

// NewS3Store создаёт клиент основного стораджа.
func NewS3Store(cfg S3Config) (*S3Store, error) {
	opts := &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	}
	if cfg.PathStyle {
		opts.BucketLookup = minio.BucketLookupPath
	}

	cl, err := minio.New(cfg.Endpoint, opts)
	if err != nil {
		return nil, err
	}

	baseURL := cfg.PublicBaseURL
	if baseURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		baseURL = scheme + "://" + cfg.Endpoint
	}

	return &S3Store{cl: cl, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// PutObject загружает объект и возвращает его публичный URL.
func (s *S3Store) PutObject(ctx context.Context, bucket, key string, data []byte, contentType string) (string, error) {
	_, err := s.cl.PutObject(ctx, bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s/%s/%s", s.baseURL, bucket, key), nil
}
