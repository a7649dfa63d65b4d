package service

import (
	"context"
	"fmt"

	"acadrive/internal/domain"
)

const (
	// DefaultRecentLimit — размер списка недавних файлов по умолчанию
	DefaultRecentLimit = 5
	// maxRecentLimit ограничивает limit, переданный клиентом
	maxRecentLimit = 100
)

// QueryService отвечает на запросы чтения каталога: недавние файлы,
// поиск, список предметов и статистика. Состояния не имеет, все
// операции read-only.
type QueryService struct {
	store MetadataStore
}

func NewQueryService(store MetadataStore) *QueryService {
	return &QueryService{store: store}
}

// Recent возвращает последние записи, новые первыми. Неположительный
// limit заменяется значением по умолчанию.
func (s *QueryService) Recent(ctx context.Context, limit int) ([]domain.FileRecord, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	records, err := s.store.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent files: %w", err)
	}
	return records, nil
}

// Search ищет записи по подстроке и фильтрам. Отсутствие совпадений —
// пустой список, не ошибка.
func (s *QueryService) Search(ctx context.Context, textQuery, subject, fileType string) ([]domain.FileRecord, error) {
	records, err := s.store.Search(ctx, textQuery, subject, fileType)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	return records, nil
}

// Subjects возвращает отсортированный список различных предметов
func (s *QueryService) Subjects(ctx context.Context) ([]string, error) {
	subjects, err := s.store.DistinctSubjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load subjects: %w", err)
	}
	return subjects, nil
}

// Stats возвращает агрегированную статистику каталога
func (s *QueryService) Stats(ctx context.Context) (*domain.Stats, error) {
	totalFiles, err := s.store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count files: %w", err)
	}

	totalSubjects, err := s.store.CountDistinctSubjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count subjects: %w", err)
	}

	return &domain.Stats{
		TotalFiles:    totalFiles,
		TotalSubjects: totalSubjects,
	}, nil
}
