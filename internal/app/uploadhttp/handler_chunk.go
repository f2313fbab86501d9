package uploadhttp

import (
	"net/http"

	"github.com/yourname/upload_lite/pkg/httperrors"
)

// ingestChunk принимает POST-запросы с одним чанком загрузки.
func (a *Server) ingestChunk(w http.ResponseWriter, r *http.Request) {
	req, file, err := parseChunkRequest(r)
	if err != nil {
		httperrors.Write(w, err)
		return
	}
	defer file.Close()

	res, err := a.Uploads.IngestChunk(r.Context(), req)
	if err != nil {
		httperrors.Write(w, err)
		return
	}

	writeResult(w, res)
}
