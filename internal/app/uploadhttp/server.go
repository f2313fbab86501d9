package uploadhttp

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yourname/upload_lite/internal/usecase/uploadsvc"
)

// Server serves the chunked upload HTTP API.
type Server struct {
	Uploads uploadsvc.Service
}

// New создаёт HTTP-обработчик поверх сервиса загрузки.
func New(svc uploadsvc.Service) http.Handler {
	srv := &Server{Uploads: svc}
	return srv.routes()
}

// routes регистрирует обработчики чанков, прогресса, здоровья и чистки.
func (a *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Post("/uploads/chunk", a.ingestChunk)
	r.Route("/uploads/{uploadID}", func(ur chi.Router) {
		ur.Get("/", a.uploadStatus)
		ur.Post("/complete", a.retryCompletion)
	})

	r.Get("/health", a.health)
	r.Post("/admin/reap", a.reapOnce)

	return r
}
