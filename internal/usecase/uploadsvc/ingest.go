package uploadsvc

import (
	"context"
	"fmt"

	"github.com/yourname/upload_lite/internal/models"
	"github.com/yourname/upload_lite/internal/registry"
)

// IngestChunk валидирует чанк против политики категории, кладёт его байты на
// диск и фиксирует приём в реестре. Если после записи покрыты все индексы,
// текущий запрос заявляет сборку и доводит загрузку до стораджа.
func (s *Uploads) IngestChunk(ctx context.Context, req ChunkRequest) (Result, error) {
	pol, err := s.Policies.Lookup(req.Category)
	if err != nil {
		return Result{}, err
	}

	if req.TotalChunks <= 0 || req.ChunkIndex < 0 || req.ChunkIndex >= req.TotalChunks {
		return Result{}, fmt.Errorf("%w: index %d of %d", models.ErrInvalidChunkIndex, req.ChunkIndex, req.TotalChunks)
	}

	// Заявленный размер постоянен для сессии, поэтому достаточно проверки
	// до создания записи — ни один чанк превышенной загрузки не принимается.
	if req.OriginalSize > pol.MaxBytes {
		return Result{}, fmt.Errorf("%w: declared %d bytes, limit %d", models.ErrFileTooLarge, req.OriginalSize, pol.MaxBytes)
	}

	if !pol.AllowsMIME(req.MIME) {
		return Result{}, fmt.Errorf("%w: %q for category %q", models.ErrMIMENotAllowed, req.MIME, req.Category)
	}

	_, _, err = s.Registry.GetOrCreate(req.OwnerID, req.UploadID, registry.CreateParams{
		Category:     req.Category,
		OriginalName: req.OriginalName,
		OriginalSize: req.OriginalSize,
		TotalChunks:  req.TotalChunks,
		MIME:         req.MIME,
	})
	if err != nil {
		return Result{}, err
	}

	// Сначала байты на диск, потом запись в реестр: рестарт между этими
	// шагами лечится повторной отправкой того же чанка.
	size, sum, err := s.Chunks.Write(req.OwnerID, req.UploadID, req.ChunkIndex, req.Body)
	if err != nil {
		return Result{}, err
	}
	if req.Checksum != "" && sum != req.Checksum {
		return Result{}, fmt.Errorf("%w: chunk %d", models.ErrChecksumMismatch, req.ChunkIndex)
	}

	if _, err = s.Registry.RecordChunk(req.OwnerID, req.UploadID, req.ChunkIndex, size); err != nil {
		return Result{}, err
	}

	claimed, err := s.Registry.TryClaimCompletion(req.OwnerID, req.UploadID)
	if err != nil {
		return Result{}, err
	}
	if !claimed {
		sess, err := s.Registry.Get(req.OwnerID, req.UploadID)
		if err != nil {
			// Конкурирующий запрос успел финализировать сессию: для этого
			// вызова загрузка "ещё обрабатывается".
			return Result{Progress: models.Progress{
				UploadID:       req.UploadID,
				ChunkIndex:     req.ChunkIndex,
				TotalChunks:    req.TotalChunks,
				UploadedChunks: req.TotalChunks,
				Percent:        100,
			}}, nil
		}
		return Result{Progress: sessionProgress(sess, req.ChunkIndex)}, nil
	}

	return s.completeClaimed(ctx, req.OwnerID, req.UploadID)
}
