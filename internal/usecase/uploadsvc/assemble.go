package uploadsvc

import (
	"bytes"
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/yourname/upload_lite/internal/models"
)

const assembleReaders = 4

// assemble читает файлы чанков сессии и склеивает их в один буфер.
// Чтение идёт ограниченно-параллельно, конкатенация — строго по возрастанию
// индекса. Отсутствующий чанк — ErrCorruptSession: после заявленной сборки
// такого быть не должно, но путь fail-closed обязателен.
func (s *Uploads) assemble(ctx context.Context, sess models.UploadSession) ([]byte, error) {
	parts := make([][]byte, sess.TotalChunks)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(assembleReaders)
	for idx := 0; idx < sess.TotalChunks; idx++ {
		idx := idx
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			b, err := s.Chunks.Read(sess.OwnerID, sess.UploadID, idx)
			if err != nil {
				return fmt.Errorf("%w: chunk %d unreadable: %v", models.ErrCorruptSession, idx, err)
			}
			parts[idx] = b
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(int(sess.OriginalSize))
	for idx := 0; idx < sess.TotalChunks; idx++ {
		buf.Write(parts[idx])
	}

	// Расхождение размера не блокирует запись, но фиксируется в логе.
	if int64(buf.Len()) != sess.OriginalSize {
		log.Printf("uploadsvc: size mismatch for %s/%s: assembled %d bytes, declared %d",
			sess.OwnerID, sess.UploadID, buf.Len(), sess.OriginalSize)
	}

	return buf.Bytes(), nil
}
