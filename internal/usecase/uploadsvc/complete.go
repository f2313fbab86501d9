package uploadsvc

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/yourname/upload_lite/internal/models"
)

// RetryCompletion повторяет сборку и запись для сессии, у которой предыдущая
// попытка стораджа провалилась. Неполная сессия отвечает прогрессом.
func (s *Uploads) RetryCompletion(ctx context.Context, ownerID, uploadID string) (Result, error) {
	claimed, err := s.Registry.TryClaimCompletion(ownerID, uploadID)
	if err != nil {
		return Result{}, err
	}
	if !claimed {
		sess, err := s.Registry.Get(ownerID, uploadID)
		if err != nil {
			return Result{}, err
		}
		return Result{Progress: sessionProgress(sess, -1)}, nil
	}

	return s.completeClaimed(ctx, ownerID, uploadID)
}

// completeClaimed доводит заявленную сессию до конца: сборка, запись в
// сторадж, финализация. Любая ошибка до подтверждённой записи возвращает
// сессию в Receiving и сохраняет чанки — клиент может повторить попытку.
func (s *Uploads) completeClaimed(ctx context.Context, ownerID, uploadID string) (Result, error) {
	sess, err := s.Registry.Get(ownerID, uploadID)
	if err != nil {
		return Result{}, err
	}

	data, err := s.assemble(ctx, sess)
	if err != nil {
		s.Registry.Release(ownerID, uploadID)
		return Result{}, err
	}

	pol, err := s.Policies.Lookup(sess.Category)
	if err != nil {
		s.Registry.Release(ownerID, uploadID)
		return Result{}, err
	}

	key := objectKey(sess.Category, sess.OwnerID, sess.OriginalName)
	stored, err := s.Blobs.Store(ctx, data, contentType(sess.MIME), string(pol.Bucket), key)
	if err != nil {
		s.Registry.Release(ownerID, uploadID)
		return Result{}, err
	}

	// Запись подтверждена — только теперь чистим сессию и чанки.
	if _, err = s.Registry.Finalize(ownerID, uploadID); err != nil {
		return Result{}, err
	}
	if err = s.Chunks.Remove(ownerID, uploadID); err != nil {
		log.Printf("uploadsvc: chunk cleanup failed for %s/%s: %v", ownerID, uploadID, err)
	}

	return Result{
		Complete: true,
		File: &models.FileInfo{
			ID:           uuid.NewString(),
			Name:         sess.OriginalName,
			Type:         contentType(sess.MIME),
			Size:         stored.Size,
			URL:          stored.URL,
			Bucket:       stored.Bucket,
			Key:          stored.Key,
			UploadedAt:   time.Now(),
			Category:     sess.Category,
			UsedFallback: stored.UsedFallback,
		},
	}, nil
}

// objectKey генерирует уникальный ключ объекта с расширением оригинала.
func objectKey(category, ownerID, originalName string) string {
	ext := filepath.Ext(originalName)
	return fmt.Sprintf("%s/%s/%d-%s%s", category, ownerID, time.Now().Unix(), uuid.NewString(), ext)
}

func contentType(mime string) string {
	if mime == "" {
		return "application/octet-stream"
	}
	return mime
}
