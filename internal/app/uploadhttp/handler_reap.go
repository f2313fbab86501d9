package uploadhttp

import "net/http"

// reapOnce вручную запускает один проход чистки брошенных сессий.
func (a *Server) reapOnce(w http.ResponseWriter, _ *http.Request) {
	_ = a.Uploads.ReapNow()
	w.WriteHeader(http.StatusNoContent)
}
