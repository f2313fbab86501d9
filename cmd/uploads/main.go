package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yourname/upload_lite/internal/app/uploadhttp"
	"github.com/yourname/upload_lite/internal/blobstore"
	"github.com/yourname/upload_lite/internal/chunkstore"
	"github.com/yourname/upload_lite/internal/config"
	"github.com/yourname/upload_lite/internal/registry"
	"github.com/yourname/upload_lite/internal/usecase/uploadsvc"
)

// main инициализирует сервис чанковой загрузки и обеспечивает корректное завершение по сигналу.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	svc, err := buildUploadService(cfg)
	if err != nil {
		log.Fatal(err)
	}

	stopReaper := uploadsvc.StartReaper(svc, cfg.ReapTTL(), cfg.ReapInterval())
	defer stopReaper()

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: uploadhttp.New(svc),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Сценарий graceful shutdown при получении SIGTERM/SIGINT.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("UPLOADS shutdown error: %v", err)
		}
	}()

	log.Printf("UPLOADS listening on %s (chunks=%s, reap ttl=%s, every=%s)",
		cfg.ListenAddr, cfg.ChunkDir, cfg.ReapTTL(), cfg.ReapInterval())
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("UPLOADS final shutdown error: %v", err)
	}
}

func buildUploadService(cfg *config.Config) (*uploadsvc.Uploads, error) {
	table, err := cfg.PolicyTable()
	if err != nil {
		return nil, err
	}

	chunks, err := chunkstore.New(cfg.ChunkDir)
	if err != nil {
		return nil, err
	}

	// Без настроенного S3 все записи уходят в локальный запасной каталог.
	var primary blobstore.ObjectStore
	if cfg.S3.Endpoint != "" {
		s3, err := blobstore.NewS3Store(blobstore.S3Config{
			Endpoint:      cfg.S3.Endpoint,
			Region:        cfg.S3.Region,
			AccessKey:     cfg.S3.AccessKey,
			SecretKey:     cfg.S3.SecretKey,
			UseSSL:        cfg.S3.UseSSL,
			PathStyle:     cfg.S3.PathStyle,
			PublicBaseURL: cfg.S3.PublicBaseURL,
		})
		if err != nil {
			return nil, err
		}
		primary = s3
	}

	return uploadsvc.New(uploadsvc.Deps{
		Policies: table,
		Registry: registry.New(),
		Chunks:   chunks,
		Blobs:    blobstore.New(primary, cfg.FallbackDir),
		ReapTTL:  cfg.Reaper.TTLHours,
	}), nil
}
