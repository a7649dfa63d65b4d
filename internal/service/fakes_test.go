package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"acadrive/internal/domain"
)

// memStore — хранилище метаданных в памяти для тестов.
// Повторяет контракт репозитория: монотонные id и created_at,
// уникальность имени файла.
type memStore struct {
	mu         sync.Mutex
	nextID     int64
	clock      time.Time
	records    []domain.FileRecord
	insertErr  error
	insertSeen int
}

func newMemStore() *memStore {
	return &memStore{clock: time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)}
}

func (m *memStore) Insert(ctx context.Context, input domain.FileInput) (*domain.FileRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.insertSeen++
	if m.insertErr != nil {
		return nil, m.insertErr
	}

	for _, r := range m.records {
		if r.Filename == input.Filename {
			return nil, fmt.Errorf("%w: filename %q", domain.ErrConstraintViolation, input.Filename)
		}
	}

	m.nextID++
	m.clock = m.clock.Add(time.Second)
	record := domain.FileRecord{
		ID:             m.nextID,
		Filename:       input.Filename,
		Subject:        input.Subject,
		Locator:        input.Locator,
		SizeBytes:      input.SizeBytes,
		FileType:       input.FileType,
		PreviewLocator: input.PreviewLocator,
		CreatedAt:      m.clock,
	}
	m.records = append(m.records, record)
	return &record, nil
}

func (m *memStore) Recent(ctx context.Context, limit int) ([]domain.FileRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []domain.FileRecord{}
	for i := len(m.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.records[i])
	}
	return out, nil
}

func (m *memStore) Search(ctx context.Context, textQuery, subject, fileType string) ([]domain.FileRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []domain.FileRecord{}
	needle := strings.ToLower(textQuery)
	for i := len(m.records) - 1; i >= 0; i-- {
		r := m.records[i]
		if needle != "" &&
			!strings.Contains(strings.ToLower(r.Filename), needle) &&
			!strings.Contains(strings.ToLower(r.Subject), needle) {
			continue
		}
		if subject != "" && subject != domain.FilterAll && r.Subject != subject {
			continue
		}
		if fileType != "" && fileType != domain.FilterAll && r.FileType != fileType {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *memStore) DistinctSubjects(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := map[string]bool{}
	out := []string{}
	for _, r := range m.records {
		if !seen[r.Subject] {
			seen[r.Subject] = true
			out = append(out, r.Subject)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *memStore) Count(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.records)), nil
}

func (m *memStore) CountDistinctSubjects(ctx context.Context) (int64, error) {
	subjects, _ := m.DistinctSubjects(ctx)
	return int64(len(subjects)), nil
}

// memSink — приемник байтов в памяти
type memSink struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemSink() *memSink {
	return &memSink{objects: map[string][]byte{}}
}

func (s *memSink) Store(ctx context.Context, name string, data io.Reader) (string, error) {
	buf, err := io.ReadAll(data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrWriteFailed, err)
	}
	s.mu.Lock()
	s.objects[name] = buf
	s.mu.Unlock()
	return "/uploads/" + name, nil
}

func (s *memSink) Exists(ctx context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[name]
	return ok, nil
}

func (s *memSink) Fetch(ctx context.Context, name string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, name)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// previewSink — приемник, умеющий строить превью
type previewSink struct {
	*memSink
	renderErr error
	rendered  []string
}

func newPreviewSink() *previewSink {
	return &previewSink{memSink: newMemSink()}
}

func (s *previewSink) RenderPreview(ctx context.Context, name string, data []byte) (string, error) {
	if s.renderErr != nil {
		return "", s.renderErr
	}
	s.rendered = append(s.rendered, name)
	return "/previews/" + name + ".jpg", nil
}
