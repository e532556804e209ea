package persistence

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	dirPerm  = 0o700
	filePerm = 0o600
)

// FileBackend хранит по одному JSON-файлу на пользователя: <dir>/<user-id>.json.
// Запись атомарная: временный файл в том же каталоге и rename поверх.
type FileBackend struct {
	dir string
}

func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("os.MkdirAll: %w", err)
	}

	return &FileBackend{dir: dir}, nil
}

func (b *FileBackend) path(userID int64) string {
	return filepath.Join(b.dir, userKey(userID)+".json")
}

func (b *FileBackend) Read(_ context.Context, userID int64) ([]byte, error) {
	data, err := os.ReadFile(b.path(userID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("os.ReadFile: %w", err)
	}

	return data, nil
}

func (b *FileBackend) Write(_ context.Context, userID int64, data []byte) error {
	tmp, err := os.CreateTemp(b.dir, "."+userKey(userID)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("os.CreateTemp: %w", err)
	}

	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()

		return fmt.Errorf("tmp.Write: %w", err)
	}

	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()

		return fmt.Errorf("tmp.Sync: %w", err)
	}

	if err = tmp.Close(); err != nil {
		return fmt.Errorf("tmp.Close: %w", err)
	}

	if err = os.Chmod(tmpName, filePerm); err != nil {
		return fmt.Errorf("os.Chmod: %w", err)
	}

	if err = os.Rename(tmpName, b.path(userID)); err != nil {
		return fmt.Errorf("os.Rename: %w", err)
	}

	return nil
}
