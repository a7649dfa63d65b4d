package service

import (
	"context"

	"acadrive/internal/domain"
)

// MetadataStore определяет интерфейс хранилища записей каталога.
// Реализация — repository.FileRepository поверх PostgreSQL, сервисы
// получают хранилище при конструировании.
type MetadataStore interface {
	Insert(ctx context.Context, input domain.FileInput) (*domain.FileRecord, error)
	Recent(ctx context.Context, limit int) ([]domain.FileRecord, error)
	Search(ctx context.Context, textQuery, subject, fileType string) ([]domain.FileRecord, error)
	DistinctSubjects(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int64, error)
	CountDistinctSubjects(ctx context.Context) (int64, error)
}
