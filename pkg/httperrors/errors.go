// Package httperrors переводит доменные ошибки в HTTP-ответы с
// машиночитаемым кодом.
package httperrors

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/yourname/upload_lite/internal/models"
)

type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Write пишет JSON-ошибку со статусом, соответствующим доменной ошибке.
func Write(w http.ResponseWriter, err error) {
	status, code := classify(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{
		Error:   code,
		Message: err.Error(),
	})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, models.ErrUnknownCategory):
		return http.StatusBadRequest, "UnknownCategory"
	case errors.Is(err, models.ErrFileTooLarge):
		return http.StatusBadRequest, "FileTooLarge"
	case errors.Is(err, models.ErrInvalidChunkIndex):
		return http.StatusBadRequest, "InvalidChunkIndex"
	case errors.Is(err, models.ErrSessionMismatch):
		return http.StatusBadRequest, "SessionMismatch"
	case errors.Is(err, models.ErrMissingField):
		return http.StatusBadRequest, "MissingField"
	case errors.Is(err, models.ErrMIMENotAllowed):
		return http.StatusBadRequest, "MIMENotAllowed"
	case errors.Is(err, models.ErrChecksumMismatch):
		return http.StatusBadRequest, "ChecksumMismatch"
	case errors.Is(err, models.ErrSessionNotFound):
		return http.StatusNotFound, "SessionNotFound"
	case errors.Is(err, models.ErrCorruptSession):
		return http.StatusInternalServerError, "CorruptSession"
	case errors.Is(err, models.ErrStorageUnavailable):
		return http.StatusInternalServerError, "StorageUnavailable"
	default:
		return http.StatusInternalServerError, "Internal"
	}
}
