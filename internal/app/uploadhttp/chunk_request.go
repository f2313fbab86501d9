package uploadhttp

import (
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/yourname/upload_lite/internal/models"
	"github.com/yourname/upload_lite/internal/usecase/uploadsvc"
)

const (
	// HeaderOwnerID несёт стабильный идентификатор пользователя; его
	// проставляет внешний слой аутентификации.
	HeaderOwnerID  = "X-Owner-ID"
	HeaderChecksum = "X-Checksum-Sha256"

	maxFormMemory = 64 << 20
)

// parseChunkRequest валидирует multipart-форму и собирает ChunkRequest.
// Файл закрывает вызывающий через возвращённый closer.
func parseChunkRequest(r *http.Request) (uploadsvc.ChunkRequest, multipart.File, error) {
	ownerID := strings.TrimSpace(r.Header.Get(HeaderOwnerID))
	if ownerID == "" {
		return uploadsvc.ChunkRequest{}, nil, fmt.Errorf("%w: %s header", models.ErrMissingField, HeaderOwnerID)
	}

	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		return uploadsvc.ChunkRequest{}, nil, fmt.Errorf("%w: multipart body: %v", models.ErrMissingField, err)
	}

	uploadID, err := requireField(r, "uploadId")
	if err != nil {
		return uploadsvc.ChunkRequest{}, nil, err
	}
	category, err := requireField(r, "category")
	if err != nil {
		return uploadsvc.ChunkRequest{}, nil, err
	}
	originalName, err := requireField(r, "originalName")
	if err != nil {
		return uploadsvc.ChunkRequest{}, nil, err
	}

	chunkIndex, err := requireInt(r, "chunkIndex")
	if err != nil {
		return uploadsvc.ChunkRequest{}, nil, err
	}
	totalChunks, err := requireInt(r, "totalChunks")
	if err != nil {
		return uploadsvc.ChunkRequest{}, nil, err
	}
	originalSize, err := requireInt64(r, "originalSize")
	if err != nil {
		return uploadsvc.ChunkRequest{}, nil, err
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return uploadsvc.ChunkRequest{}, nil, fmt.Errorf("%w: file", models.ErrMissingField)
	}

	return uploadsvc.ChunkRequest{
		OwnerID:      ownerID,
		UploadID:     uploadID,
		Category:     category,
		ChunkIndex:   chunkIndex,
		TotalChunks:  totalChunks,
		OriginalName: originalName,
		OriginalSize: originalSize,
		MIME:         resolveMIME(header, originalName),
		Checksum:     strings.TrimSpace(r.Header.Get(HeaderChecksum)),
		Body:         file,
	}, file, nil
}

func requireField(r *http.Request, name string) (string, error) {
	v := strings.TrimSpace(r.FormValue(name))
	if v == "" {
		return "", fmt.Errorf("%w: %s", models.ErrMissingField, name)
	}
	return v, nil
}

func requireInt(r *http.Request, name string) (int, error) {
	raw, err := requireField(r, name)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s is not a number", models.ErrMissingField, name)
	}
	return n, nil
}

func requireInt64(r *http.Request, name string) (int64, error) {
	raw, err := requireField(r, name)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s is not a valid size", models.ErrMissingField, name)
	}
	return n, nil
}

// resolveMIME берёт тип из заголовка части, иначе выводит его из расширения
// оригинального имени. Чанки часто летят как octet-stream — это не тип файла.
func resolveMIME(header *multipart.FileHeader, originalName string) string {
	ct := strings.TrimSpace(header.Header.Get("Content-Type"))
	if ct != "" && ct != "application/octet-stream" {
		return ct
	}
	if byExt := mime.TypeByExtension(filepath.Ext(originalName)); byExt != "" {
		return byExt
	}
	return ct
}
