package uploadhttp

import (
	"encoding/json"
	"net/http"
)

// healthStats — payload ответа /health.
type healthStats struct {
	OK             bool  `json:"ok"`
	ActiveSessions int   `json:"active_sessions"`
	ChunkBytes     int64 `json:"chunk_bytes"`
}

// health возвращает агрегированную статистику по сессиям и каталогу чанков.
func (a *Server) health(w http.ResponseWriter, _ *http.Request) {
	stats, err := a.Uploads.Stats()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	err = json.NewEncoder(w).Encode(healthStats{
		OK:             true,
		ActiveSessions: stats.ActiveSessions,
		ChunkBytes:     stats.ChunkBytes,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}
