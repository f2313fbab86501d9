// Package registry реализует потокобезопасный реестр сессий загрузки.
// Глобальный мьютекс защищает только карту сессий; всё состояние конкретной
// сессии мутируется под её собственным замком, поэтому несвязанные загрузки
// не конкурируют между собой.
package registry

import (
	"fmt"
	"sync"
	"time"

	"github.com/yourname/upload_lite/internal/models"
)

type entry struct {
	mu sync.Mutex
	s  models.UploadSession
}

// Registry — in-memory владелец всех UploadSession.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*entry
}

// New создаёт пустой реестр.
func New() *Registry {
	return &Registry{sessions: map[string]*entry{}}
}

// CreateParams — параметры сессии, заявленные первым чанком.
type CreateParams struct {
	Category     string
	OriginalName string
	OriginalSize int64
	TotalChunks  int
	MIME         string
}

// GetOrCreate возвращает существующую сессию или создаёт новую.
// Расхождение заявленных параметров с сохранёнными — ErrSessionMismatch:
// защита от клиента, перезапустившего сессию с другими данными.
func (r *Registry) GetOrCreate(ownerID, uploadID string, p CreateParams) (models.UploadSession, bool, error) {
	r.mu.Lock()
	e, ok := r.sessions[sessionKey(ownerID, uploadID)]
	if !ok {
		e = &entry{s: models.UploadSession{
			UploadID:     uploadID,
			OwnerID:      ownerID,
			Category:     p.Category,
			OriginalName: p.OriginalName,
			OriginalSize: p.OriginalSize,
			TotalChunks:  p.TotalChunks,
			MIME:         p.MIME,
			Chunks:       map[int]models.ChunkRecord{},
			CreatedAt:    time.Now(),
			State:        models.StateReceiving,
		}}
		r.sessions[sessionKey(ownerID, uploadID)] = e
	}
	r.mu.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.s.TotalChunks != p.TotalChunks || e.s.OriginalSize != p.OriginalSize || e.s.Category != p.Category {
		return models.UploadSession{}, false, fmt.Errorf(
			"%w: declared total_chunks=%d size=%d category=%q, session has total_chunks=%d size=%d category=%q",
			models.ErrSessionMismatch,
			p.TotalChunks, p.OriginalSize, p.Category,
			e.s.TotalChunks, e.s.OriginalSize, e.s.Category,
		)
	}

	return e.s.Clone(), !ok, nil
}

// RecordChunk вставляет либо перезаписывает запись чанка и возвращает
// число различных принятых индексов.
func (r *Registry) RecordChunk(ownerID, uploadID string, index int, size int64) (int, error) {
	e, err := r.lookup(ownerID, uploadID)
	if err != nil {
		return 0, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.s.State == models.StateDone {
		return 0, models.ErrSessionNotFound
	}

	e.s.Chunks[index] = models.ChunkRecord{
		Index:      index,
		Size:       size,
		UploadedAt: time.Now(),
	}

	return len(e.s.Chunks), nil
}

// TryClaimCompletion атомарно переводит сессию Receiving → Assembling,
// если каждый индекс в [0, TotalChunks) уже принят. Сверяем покрытие
// индексов, а не счётчик: дубликат перезаписывает запись и не должен
// давать ложную полноту.
func (r *Registry) TryClaimCompletion(ownerID, uploadID string) (bool, error) {
	e, err := r.lookup(ownerID, uploadID)
	if err != nil {
		return false, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.s.State != models.StateReceiving {
		return false, nil
	}
	for idx := 0; idx < e.s.TotalChunks; idx++ {
		if _, ok := e.s.Chunks[idx]; !ok {
			return false, nil
		}
	}

	e.s.State = models.StateAssembling
	return true, nil
}

// Release возвращает сессию из Assembling в Receiving после неудачной
// записи в сторадж, чтобы повторная попытка могла снова заявить сборку.
func (r *Registry) Release(ownerID, uploadID string) {
	e, err := r.lookup(ownerID, uploadID)
	if err != nil {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.s.State == models.StateAssembling {
		e.s.State = models.StateReceiving
	}
}

// Finalize переводит Assembling → Done и удаляет запись сессии.
// Возвращает копию состояния: вызывающий чистит файлы чанков по ней.
func (r *Registry) Finalize(ownerID, uploadID string) (models.UploadSession, error) {
	e, err := r.lookup(ownerID, uploadID)
	if err != nil {
		return models.UploadSession{}, err
	}

	e.mu.Lock()
	if e.s.State != models.StateAssembling {
		e.mu.Unlock()
		return models.UploadSession{}, fmt.Errorf("%w: finalize without claim", models.ErrCorruptSession)
	}
	e.s.State = models.StateDone
	out := e.s.Clone()
	e.mu.Unlock()

	r.mu.Lock()
	delete(r.sessions, sessionKey(ownerID, uploadID))
	r.mu.Unlock()

	return out, nil
}

// Get возвращает копию сессии либо ErrSessionNotFound.
func (r *Registry) Get(ownerID, uploadID string) (models.UploadSession, error) {
	e, err := r.lookup(ownerID, uploadID)
	if err != nil {
		return models.UploadSession{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.s.Clone(), nil
}

// Reap удаляет сессии в состоянии Receiving старше ttl и возвращает их
// копии для чистки файлов. Сессии в Assembling не трогаем: зависшая сборка —
// сигнал оператору, а не мусор.
func (r *Registry) Reap(ttl time.Duration, now time.Time) []models.UploadSession {
	r.mu.Lock()
	candidates := make(map[string]*entry, len(r.sessions))
	for k, e := range r.sessions {
		candidates[k] = e
	}
	r.mu.Unlock()

	var reaped []models.UploadSession
	for k, e := range candidates {
		e.mu.Lock()
		expired := e.s.State == models.StateReceiving && now.Sub(e.s.CreatedAt) >= ttl
		if expired {
			e.s.State = models.StateDone
			reaped = append(reaped, e.s.Clone())
		}
		e.mu.Unlock()

		if expired {
			r.mu.Lock()
			delete(r.sessions, k)
			r.mu.Unlock()
		}
	}

	return reaped
}

// Len возвращает число активных сессий.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) lookup(ownerID, uploadID string) (*entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[sessionKey(ownerID, uploadID)]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", models.ErrSessionNotFound, ownerID, uploadID)
	}
	return e, nil
}

func sessionKey(ownerID, uploadID string) string {
	return ownerID + "/" + uploadID
}
