package uploadhttp

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/yourname/upload_lite/internal/models"
	"github.com/yourname/upload_lite/pkg/httperrors"
)

// uploadStatus отдаёт прогресс незавершённой сессии.
func (a *Server) uploadStatus(w http.ResponseWriter, r *http.Request) {
	ownerID, uploadID, err := requireSessionParams(r)
	if err != nil {
		httperrors.Write(w, err)
		return
	}

	progress, err := a.Uploads.Progress(ownerID, uploadID)
	if err != nil {
		httperrors.Write(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeProgress(w, http.StatusOK, progress)
}

// retryCompletion повторяет сборку и запись после отказа стораджа.
func (a *Server) retryCompletion(w http.ResponseWriter, r *http.Request) {
	ownerID, uploadID, err := requireSessionParams(r)
	if err != nil {
		httperrors.Write(w, err)
		return
	}

	res, err := a.Uploads.RetryCompletion(r.Context(), ownerID, uploadID)
	if err != nil {
		httperrors.Write(w, err)
		return
	}

	writeResult(w, res)
}

func requireSessionParams(r *http.Request) (ownerID, uploadID string, err error) {
	ownerID = strings.TrimSpace(r.Header.Get(HeaderOwnerID))
	if ownerID == "" {
		return "", "", fmt.Errorf("%w: %s header", models.ErrMissingField, HeaderOwnerID)
	}

	uploadID = chi.URLParam(r, "uploadID")
	if uploadID == "" {
		return "", "", fmt.Errorf("%w: uploadID", models.ErrMissingField)
	}

	return ownerID, uploadID, nil
}
