// Package chunkstore хранит байты принятых чанков на локальном диске.
// Каждой сессии соответствует собственная директория <owner>/<upload>,
// чанк лежит в файле chunk_<idx>; повторная запись индекса перезаписывает файл.
package chunkstore

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const chunkFilenameFormat = "chunk_%d"

// Store — файловое хранилище чанков поверх каталога root.
type Store struct {
	root string
}

// New создаёт хранилище и гарантирует наличие корневого каталога.
func New(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &Store{root: root}, nil
}

// Write сохраняет байты чанка и возвращает размер и sha256 записанного.
// Байты оказываются на диске до обновления реестра, поэтому повтор записи безопасен.
func (s *Store) Write(ownerID, uploadID string, index int, r io.Reader) (int64, string, error) {
	dir, err := s.sessionDir(ownerID, uploadID)
	if err != nil {
		return 0, "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, "", err
	}

	f, err := os.Create(filepath.Join(dir, chunkFileName(index)))
	if err != nil {
		return 0, "", err
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(io.MultiWriter(f, h), r)
	if err != nil {
		return 0, "", err
	}

	return n, hex.EncodeToString(h.Sum(nil)), nil
}

// Read возвращает байты чанка по индексу.
func (s *Store) Read(ownerID, uploadID string, index int) ([]byte, error) {
	dir, err := s.sessionDir(ownerID, uploadID)
	if err != nil {
		return nil, err
	}

	return os.ReadFile(filepath.Join(dir, chunkFileName(index)))
}

// Remove удаляет все чанки сессии вместе с её директорией.
func (s *Store) Remove(ownerID, uploadID string) error {
	dir, err := s.sessionDir(ownerID, uploadID)
	if err != nil {
		return err
	}

	return os.RemoveAll(dir)
}

// TotalBytes суммирует размер всех файлов под root; используется health-эндпоинтом.
func (s *Store) TotalBytes() (int64, error) {
	var total int64
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})

	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return 0, err
	}

	return total, nil
}

// sessionDir рассчитывает директорию сессии, отсекая попытки выйти за root.
func (s *Store) sessionDir(ownerID, uploadID string) (string, error) {
	if !safeID(ownerID) || !safeID(uploadID) {
		return "", fmt.Errorf("unsafe session identifier %q/%q", ownerID, uploadID)
	}
	return filepath.Join(s.root, ownerID, uploadID), nil
}

func chunkFileName(index int) string {
	return fmt.Sprintf(chunkFilenameFormat, index)
}

// safeID запрещает пустые значения, разделители пути и "..".
func safeID(id string) bool {
	if id == "" || id == "." || id == ".." {
		return false
	}
	return !strings.ContainsAny(id, `/\`)
}
