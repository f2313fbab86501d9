package uploadsvc

import (
	"context"
	"io"

	"github.com/yourname/upload_lite/internal/blobstore"
	"github.com/yourname/upload_lite/internal/chunkstore"
	"github.com/yourname/upload_lite/internal/models"
	"github.com/yourname/upload_lite/internal/policy"
	"github.com/yourname/upload_lite/internal/registry"
)

type (
	// ChunkRequest — один принятый чанк со всеми заявленными параметрами сессии.
	ChunkRequest struct {
		OwnerID      string
		UploadID     string
		Category     string
		ChunkIndex   int
		TotalChunks  int
		OriginalName string
		OriginalSize int64
		MIME         string
		Checksum     string
		Body         io.Reader
	}

	// Result — исход обработки: либо прогресс, либо финальный файл.
	Result struct {
		Complete bool
		Progress models.Progress
		File     *models.FileInfo
	}

	// Stats — агрегаты для health-эндпоинта.
	Stats struct {
		ActiveSessions int
		ChunkBytes     int64
	}

	// Service объединяет операции чанковой загрузки.
	Service interface {
		IngestChunk(ctx context.Context, req ChunkRequest) (Result, error)
		RetryCompletion(ctx context.Context, ownerID, uploadID string) (Result, error)
		Progress(ownerID, uploadID string) (models.Progress, error)
		Stats() (Stats, error)
		ReapNow() error
	}
)

// Deps — зависимости сервиса загрузки.
type Deps struct {
	Policies *policy.Table
	Registry *registry.Registry
	Chunks   *chunkstore.Store
	Blobs    *blobstore.Client
	ReapTTL  int // часы; используется ручным /admin/reap
}

// Uploads реализует Service.
type Uploads struct {
	Deps
}

// New конструирует сервис загрузки с заданными зависимостями.
func New(deps Deps) *Uploads {
	return &Uploads{Deps: deps}
}

var _ Service = (*Uploads)(nil)

// Progress возвращает состояние незавершённой сессии.
func (s *Uploads) Progress(ownerID, uploadID string) (models.Progress, error) {
	sess, err := s.Registry.Get(ownerID, uploadID)
	if err != nil {
		return models.Progress{}, err
	}

	return sessionProgress(sess, -1), nil
}

// Stats собирает агрегаты по реестру и каталогу чанков.
func (s *Uploads) Stats() (Stats, error) {
	total, err := s.Chunks.TotalBytes()
	if err != nil {
		return Stats{}, err
	}

	return Stats{
		ActiveSessions: s.Registry.Len(),
		ChunkBytes:     total,
	}, nil
}

// sessionProgress строит Progress; chunkIndex=-1 означает "вне контекста чанка".
func sessionProgress(sess models.UploadSession, chunkIndex int) models.Progress {
	received := sess.ChunksReceived()
	percent := 0.0
	if sess.TotalChunks > 0 {
		percent = float64(received) / float64(sess.TotalChunks) * 100
	}

	return models.Progress{
		UploadID:       sess.UploadID,
		ChunkIndex:     chunkIndex,
		TotalChunks:    sess.TotalChunks,
		UploadedChunks: received,
		Percent:        percent,
	}
}
