package models

import "time"

// StoredFile возвращается после подтверждённой записи собранного файла.
// UsedFallback отличает локальный запасной путь от основного стораджа.
type StoredFile struct {
	URL          string
	Bucket       string
	Key          string
	Size         int64
	UsedFallback bool
}

// FileInfo — метаданные готового файла, отдаваемые клиенту в финальном ответе.
type FileInfo struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Type         string    `json:"type"`
	Size         int64     `json:"size"`
	URL          string    `json:"url"`
	Bucket       string    `json:"bucket"`
	Key          string    `json:"key"`
	UploadedAt   time.Time `json:"uploadedAt"`
	Category     string    `json:"category"`
	UsedFallback bool      `json:"usedFallback,omitempty"`
}

// Progress описывает состояние незавершённой загрузки.
type Progress struct {
	UploadID       string
	ChunkIndex     int
	TotalChunks    int
	UploadedChunks int
	Percent        float64
}
