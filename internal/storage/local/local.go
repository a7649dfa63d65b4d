// Package local реализует приемник байтов на локальном диске.
package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"acadrive/internal/domain"
)

// Sink хранит файлы в одном каталоге на диске. Локатором служит
// относительный URL вида "/uploads/<имя>", который обслуживает
// HTTP-хендлер скачивания.
type Sink struct {
	dir string
}

// New создает приемник поверх каталога dir, создавая его при необходимости.
func New(dir string) (*Sink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", dir, err)
	}
	return &Sink{dir: dir}, nil
}

// Dir возвращает каталог с данными
func (s *Sink) Dir() string {
	return s.dir
}

// Store записывает данные во временный файл и атомарно переименовывает
// его в целевое имя.
func (s *Sink) Store(ctx context.Context, name string, data io.Reader) (string, error) {
	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrWriteFailed, err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("%w: %v", domain.ErrWriteFailed, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("%w: %v", domain.ErrWriteFailed, err)
	}

	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("%w: %v", domain.ErrWriteFailed, err)
	}

	return "/uploads/" + name, nil
}

// Exists проверяет наличие файла с таким именем
func (s *Sink) Exists(ctx context.Context, name string) (bool, error) {
	_, err := os.Stat(filepath.Join(s.dir, name))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// Fetch открывает сохраненный файл для чтения
func (s *Sink) Fetch(ctx context.Context, name string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, name)
		}
		return nil, err
	}
	return f, nil
}
