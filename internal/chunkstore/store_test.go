package chunkstore

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteReadOverwrite(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	payload := bytes.Repeat([]byte{0xAB}, 1024)
	n, sum, err := s.Write("owner", "upload", 0, bytes.NewReader(payload))
	require.NoError(t, err)
	require.Equal(t, int64(len(payload)), n)

	want := sha256.Sum256(payload)
	require.Equal(t, hex.EncodeToString(want[:]), sum)

	got, err := s.Read("owner", "upload", 0)
	require.NoError(t, err)
	require.Equal(t, payload, got)

	// Повторная запись того же индекса перезаписывает байты.
	other := []byte("replacement")
	_, _, err = s.Write("owner", "upload", 0, bytes.NewReader(other))
	require.NoError(t, err)

	got, err = s.Read("owner", "upload", 0)
	require.NoError(t, err)
	require.Equal(t, other, got)
}

func TestRemove(t *testing.T) {
	root := t.TempDir()
	s, err := New(root)
	require.NoError(t, err)

	_, _, err = s.Write("owner", "upload", 0, bytes.NewReader([]byte("a")))
	require.NoError(t, err)
	_, _, err = s.Write("owner", "upload", 1, bytes.NewReader([]byte("b")))
	require.NoError(t, err)

	require.NoError(t, s.Remove("owner", "upload"))

	_, err = s.Read("owner", "upload", 0)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestUnsafeIdentifiers(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	for _, id := range []string{"", "..", "a/b", `a\b`} {
		_, _, err := s.Write(id, "upload", 0, bytes.NewReader(nil))
		require.Error(t, err, "owner %q", id)

		_, _, err = s.Write("owner", id, 0, bytes.NewReader(nil))
		require.Error(t, err, "upload %q", id)
	}
}

func TestTotalBytes(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	total, err := s.TotalBytes()
	require.NoError(t, err)
	require.Zero(t, total)

	_, _, err = s.Write("o", "u", 0, bytes.NewReader(make([]byte, 100)))
	require.NoError(t, err)
	_, _, err = s.Write("o", "u", 1, bytes.NewReader(make([]byte, 50)))
	require.NoError(t, err)

	total, err = s.TotalBytes()
	require.NoError(t, err)
	require.Equal(t, int64(150), total)
}
