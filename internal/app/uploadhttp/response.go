package uploadhttp

import (
	"encoding/json"
	"math"
	"net/http"

	"github.com/yourname/upload_lite/internal/models"
	"github.com/yourname/upload_lite/internal/usecase/uploadsvc"
)

// partialResponse — ответ на принятый чанк незавершённой загрузки.
type partialResponse struct {
	Success        bool    `json:"success"`
	Complete       bool    `json:"complete"`
	ChunkIndex     int     `json:"chunkIndex"`
	TotalChunks    int     `json:"totalChunks"`
	UploadedChunks int     `json:"uploadedChunks"`
	Progress       float64 `json:"progress"`
}

// finalResponse — ответ после подтверждённой записи собранного файла.
type finalResponse struct {
	Success  bool            `json:"success"`
	Complete bool            `json:"complete"`
	URL      string          `json:"url"`
	File     models.FileInfo `json:"file"`
}

// writeResult сериализует исход обработки чанка.
func writeResult(w http.ResponseWriter, res uploadsvc.Result) {
	w.Header().Set("Content-Type", "application/json")

	if res.Complete {
		_ = json.NewEncoder(w).Encode(finalResponse{
			Success:  true,
			Complete: true,
			URL:      res.File.URL,
			File:     *res.File,
		})
		return
	}

	writeProgress(w, http.StatusAccepted, res.Progress)
}

// writeProgress пишет частичный ответ с заданным статусом; заголовок
// Content-Type уже должен быть выставлен вызывающим.
func writeProgress(w http.ResponseWriter, status int, p models.Progress) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(partialResponse{
		Success:        true,
		ChunkIndex:     p.ChunkIndex,
		TotalChunks:    p.TotalChunks,
		UploadedChunks: p.UploadedChunks,
		Progress:       math.Round(p.Percent*100) / 100,
	})
}
