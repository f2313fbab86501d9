package models

import "time"

// SessionState описывает фазу жизни сессии загрузки.
type SessionState int

const (
	StateReceiving SessionState = iota
	StateAssembling
	StateDone
)

// ChunkRecord фиксирует факт приёма одного чанка.
type ChunkRecord struct {
	Index      int       `json:"index"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// UploadSession агрегирует состояние одной логической загрузки файла.
// Владеет сессией исключительно session registry; снаружи гуляют только копии.
type UploadSession struct {
	UploadID     string              `json:"upload_id"`
	OwnerID      string              `json:"owner_id"`
	Category     string              `json:"category"`
	OriginalName string              `json:"original_name"`
	OriginalSize int64               `json:"original_size"`
	TotalChunks  int                 `json:"total_chunks"`
	MIME         string              `json:"mime"`
	Chunks       map[int]ChunkRecord `json:"chunks"`
	CreatedAt    time.Time           `json:"created_at"`
	State        SessionState        `json:"state"`
}

// Clone возвращает копию структуры, чтобы не делиться внутренними картами.
func (s UploadSession) Clone() UploadSession {
	out := s
	out.Chunks = make(map[int]ChunkRecord, len(s.Chunks))
	for idx, rec := range s.Chunks {
		out.Chunks[idx] = rec
	}
	return out
}

// ChunksReceived возвращает число различных принятых индексов.
func (s UploadSession) ChunksReceived() int {
	return len(s.Chunks)
}
