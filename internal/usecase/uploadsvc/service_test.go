package uploadsvc

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yourname/upload_lite/internal/blobstore"
	"github.com/yourname/upload_lite/internal/chunkstore"
	"github.com/yourname/upload_lite/internal/models"
	"github.com/yourname/upload_lite/internal/policy"
	"github.com/yourname/upload_lite/internal/registry"
)

// memStore — основной сторадж в памяти для тестов.
type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}}
}

func (m *memStore) PutObject(_ context.Context, bucket, key string, data []byte, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[bucket+"/"+key] = append([]byte(nil), data...)
	return "mem://" + bucket + "/" + key, nil
}

func (m *memStore) only(t *testing.T) []byte {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.Len(t, m.objects, 1)
	for _, b := range m.objects {
		return b
	}
	return nil
}

// failingStore имитирует недоступный основной сторадж.
type failingStore struct{}

func (failingStore) PutObject(context.Context, string, string, []byte, string) (string, error) {
	return "", errors.New("primary down")
}

func testTable(t *testing.T) *policy.Table {
	t.Helper()
	table, err := policy.NewTable([]policy.CategoryPolicy{
		{
			Category:    "video",
			AllowedMIME: map[string]struct{}{"video/mp4": {}},
			MaxBytes:    600 << 20,
			Bucket:      policy.BucketVideos,
		},
		{
			Category:    "profile-picture",
			AllowedMIME: map[string]struct{}{"image/png": {}, "image/jpeg": {}},
			MaxBytes:    5 << 20,
			Bucket:      policy.BucketImages,
		},
	})
	require.NoError(t, err)
	return table
}

func newTestService(t *testing.T, primary blobstore.ObjectStore) *Uploads {
	t.Helper()
	chunks, err := chunkstore.New(t.TempDir())
	require.NoError(t, err)

	return New(Deps{
		Policies: testTable(t),
		Registry: registry.New(),
		Chunks:   chunks,
		Blobs:    blobstore.New(primary, t.TempDir()),
		ReapTTL:  24,
	})
}

func chunkReq(uploadID string, idx, total int, payload []byte, totalSize int64) ChunkRequest {
	return ChunkRequest{
		OwnerID:      "user-1",
		UploadID:     uploadID,
		Category:     "video",
		ChunkIndex:   idx,
		TotalChunks:  total,
		OriginalName: "movie.mp4",
		OriginalSize: totalSize,
		MIME:         "video/mp4",
		Body:         bytes.NewReader(payload),
	}
}

func TestOrderIndependence(t *testing.T) {
	chunkA := bytes.Repeat([]byte{0xA1}, 1<<20)
	chunkB := bytes.Repeat([]byte{0xB2}, 1<<20)
	chunkC := bytes.Repeat([]byte{0xC3}, 1<<20)
	chunks := [][]byte{chunkA, chunkB, chunkC}
	want := bytes.Join(chunks, nil)

	perms := [][]int{
		{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0},
	}
	for _, order := range perms {
		mem := newMemStore()
		svc := newTestService(t, mem)

		var last Result
		for _, idx := range order {
			res, err := svc.IngestChunk(context.Background(), chunkReq("up-order", idx, 3, chunks[idx], int64(len(want))))
			require.NoError(t, err, "order %v", order)
			last = res
		}

		require.True(t, last.Complete, "order %v", order)
		require.Equal(t, int64(len(want)), last.File.Size)
		require.Equal(t, want, mem.only(t), "order %v", order)
	}
}

func TestIdempotentChunkRetry(t *testing.T) {
	mem := newMemStore()
	svc := newTestService(t, mem)
	chunks := [][]byte{[]byte("aaaa"), []byte("bbbb"), []byte("cccc")}
	total := int64(12)

	res, err := svc.IngestChunk(context.Background(), chunkReq("up-retry", 0, 3, chunks[0], total))
	require.NoError(t, err)
	require.False(t, res.Complete)
	require.Equal(t, 1, res.Progress.UploadedChunks)

	// Ретрай того же индекса: счётчик не меняется.
	res, err = svc.IngestChunk(context.Background(), chunkReq("up-retry", 0, 3, chunks[0], total))
	require.NoError(t, err)
	require.Equal(t, 1, res.Progress.UploadedChunks)

	res, err = svc.IngestChunk(context.Background(), chunkReq("up-retry", 1, 3, chunks[1], total))
	require.NoError(t, err)
	require.Equal(t, 2, res.Progress.UploadedChunks)

	res, err = svc.IngestChunk(context.Background(), chunkReq("up-retry", 2, 3, chunks[2], total))
	require.NoError(t, err)
	require.True(t, res.Complete)
	require.Equal(t, []byte("aaaabbbbcccc"), mem.only(t))
}

func TestInvalidChunkIndex(t *testing.T) {
	svc := newTestService(t, newMemStore())

	_, err := svc.IngestChunk(context.Background(), chunkReq("up-idx", 5, 3, []byte("x"), 1))
	require.ErrorIs(t, err, models.ErrInvalidChunkIndex)

	_, err = svc.IngestChunk(context.Background(), chunkReq("up-idx", -1, 3, []byte("x"), 1))
	require.ErrorIs(t, err, models.ErrInvalidChunkIndex)
}

func TestSizeEnforcementBeforeSessionCreation(t *testing.T) {
	svc := newTestService(t, newMemStore())

	req := chunkReq("up-big", 0, 3, []byte("x"), 6<<20)
	req.Category = "profile-picture"
	req.MIME = "image/png"
	req.OriginalName = "avatar.png"

	_, err := svc.IngestChunk(context.Background(), req)
	require.ErrorIs(t, err, models.ErrFileTooLarge)

	// Ни сессии, ни байтов чанка не осталось.
	_, err = svc.Progress("user-1", "up-big")
	require.ErrorIs(t, err, models.ErrSessionNotFound)

	stats, err := svc.Stats()
	require.NoError(t, err)
	require.Zero(t, stats.ChunkBytes)
}

func TestUnknownCategory(t *testing.T) {
	svc := newTestService(t, newMemStore())

	req := chunkReq("up-cat", 0, 1, []byte("x"), 1)
	req.Category = "mixtape"
	_, err := svc.IngestChunk(context.Background(), req)
	require.ErrorIs(t, err, models.ErrUnknownCategory)
}

func TestSessionMismatch(t *testing.T) {
	svc := newTestService(t, newMemStore())

	_, err := svc.IngestChunk(context.Background(), chunkReq("up-mm", 0, 3, []byte("x"), 10))
	require.NoError(t, err)

	_, err = svc.IngestChunk(context.Background(), chunkReq("up-mm", 1, 4, []byte("y"), 10))
	require.ErrorIs(t, err, models.ErrSessionMismatch)
}

func TestChecksumMismatch(t *testing.T) {
	svc := newTestService(t, newMemStore())

	req := chunkReq("up-sum", 0, 2, []byte("payload"), 14)
	req.Checksum = "deadbeef"
	_, err := svc.IngestChunk(context.Background(), req)
	require.ErrorIs(t, err, models.ErrChecksumMismatch)

	// Чанк не зафиксирован в реестре.
	progress, err := svc.Progress("user-1", "up-sum")
	require.NoError(t, err)
	require.Zero(t, progress.UploadedChunks)
}

func TestMIMENotAllowed(t *testing.T) {
	svc := newTestService(t, newMemStore())

	req := chunkReq("up-mime", 0, 1, []byte("x"), 1)
	req.MIME = "application/x-msdownload"
	_, err := svc.IngestChunk(context.Background(), req)
	require.ErrorIs(t, err, models.ErrMIMENotAllowed)
}

func TestFallbackCorrectness(t *testing.T) {
	svc := newTestService(t, failingStore{})
	chunks := [][]byte{[]byte("1111"), []byte("2222")}
	want := []byte("11112222")

	_, err := svc.IngestChunk(context.Background(), chunkReq("up-fb", 0, 2, chunks[0], 8))
	require.NoError(t, err)
	res, err := svc.IngestChunk(context.Background(), chunkReq("up-fb", 1, 2, chunks[1], 8))
	require.NoError(t, err)

	require.True(t, res.Complete)
	require.True(t, res.File.UsedFallback)
	require.Equal(t, "local", res.File.Bucket)

	got, err := os.ReadFile(res.File.URL)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestStorageUnavailablePreservesSession(t *testing.T) {
	chunks, err := chunkstore.New(t.TempDir())
	require.NoError(t, err)

	// Запасной каталог указывает на обычный файл: запись в него невозможна.
	brokenFallback := filepath.Join(t.TempDir(), "occupied")
	require.NoError(t, os.WriteFile(brokenFallback, []byte("x"), 0o644))

	svc := New(Deps{
		Policies: testTable(t),
		Registry: registry.New(),
		Chunks:   chunks,
		Blobs:    blobstore.New(failingStore{}, brokenFallback),
		ReapTTL:  24,
	})

	_, err = svc.IngestChunk(context.Background(), chunkReq("up-dead", 0, 2, []byte("aa"), 4))
	require.NoError(t, err)
	_, err = svc.IngestChunk(context.Background(), chunkReq("up-dead", 1, 2, []byte("bb"), 4))
	require.ErrorIs(t, err, models.ErrStorageUnavailable)

	// Сессия и чанки на месте: клиент может повторить сборку без перезаливки.
	progress, err := svc.Progress("user-1", "up-dead")
	require.NoError(t, err)
	require.Equal(t, 2, progress.UploadedChunks)

	// После починки стораджа ретрай доводит загрузку до конца.
	mem := newMemStore()
	svc.Blobs = blobstore.New(mem, t.TempDir())
	res, err := svc.RetryCompletion(context.Background(), "user-1", "up-dead")
	require.NoError(t, err)
	require.True(t, res.Complete)
	require.Equal(t, []byte("aabb"), mem.only(t))
}

func TestCorruptSessionPreservedForRetry(t *testing.T) {
	svc := newTestService(t, newMemStore())

	_, err := svc.IngestChunk(context.Background(), chunkReq("up-c2", 0, 2, []byte("aa"), 4))
	require.NoError(t, err)
	require.NoError(t, svc.Chunks.Remove("user-1", "up-c2"))
	_, err = svc.IngestChunk(context.Background(), chunkReq("up-c2", 1, 2, []byte("bb"), 4))
	require.ErrorIs(t, err, models.ErrCorruptSession)

	// Сессия не финализирована: недостающий чанк можно дослать.
	_, err = svc.Progress("user-1", "up-c2")
	require.NoError(t, err)
}

func TestCleanupAfterSuccess(t *testing.T) {
	svc := newTestService(t, newMemStore())

	_, err := svc.IngestChunk(context.Background(), chunkReq("up-clean", 0, 1, []byte("data"), 4))
	require.NoError(t, err)

	_, err = svc.Progress("user-1", "up-clean")
	require.ErrorIs(t, err, models.ErrSessionNotFound)

	stats, err := svc.Stats()
	require.NoError(t, err)
	require.Zero(t, stats.ActiveSessions)
	require.Zero(t, stats.ChunkBytes)
}

func TestConcurrentCompletionSingleWinner(t *testing.T) {
	mem := newMemStore()
	svc := newTestService(t, mem)
	const total = 8

	var wg sync.WaitGroup
	results := make([]Result, total)
	errs := make([]error, total)
	for idx := 0; idx < total; idx++ {
		idx := idx
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[idx], errs[idx] = svc.IngestChunk(context.Background(), chunkReq("up-race", idx, total, []byte{byte(idx)}, total))
		}()
	}
	wg.Wait()

	for idx, err := range errs {
		require.NoError(t, err, "chunk %d", idx)
	}

	winners := 0
	for _, res := range results {
		if res.Complete {
			winners++
		}
	}
	require.Equal(t, 1, winners)

	want := make([]byte, total)
	for i := range want {
		want[i] = byte(i)
	}
	require.Equal(t, want, mem.only(t))
}
