package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"acadrive/internal/domain"
)

// Код ошибки PostgreSQL для нарушения уникального ограничения
const pqUniqueViolation = "23505"

type FileRepository struct {
	db *sqlx.DB
}

func NewFileRepository(db *sqlx.DB) *FileRepository {
	return &FileRepository{db: db}
}

// Insert создает запись о файле. ID и created_at назначает база.
// Нарушение уникальности имени файла возвращается как
// domain.ErrConstraintViolation, чтобы конвейер загрузки повторил
// разрешение коллизии.
func (r *FileRepository) Insert(ctx context.Context, input domain.FileInput) (*domain.FileRecord, error) {
	record := &domain.FileRecord{
		Filename:       input.Filename,
		Subject:        input.Subject,
		Locator:        input.Locator,
		SizeBytes:      input.SizeBytes,
		FileType:       input.FileType,
		PreviewLocator: input.PreviewLocator,
	}

	query := `
        INSERT INTO files (filename, subject, file_url, file_size, file_type, preview_url)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at`

	err := r.db.QueryRowContext(
		ctx,
		query,
		input.Filename,
		input.Subject,
		input.Locator,
		input.SizeBytes,
		input.FileType,
		input.PreviewLocator,
	).Scan(&record.ID, &record.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return nil, fmt.Errorf("%w: filename %q: %v", domain.ErrConstraintViolation, input.Filename, err)
		}
		return nil, fmt.Errorf("failed to insert file record: %w", err)
	}

	return record, nil
}

// Recent возвращает последние записи, новые первыми
func (r *FileRepository) Recent(ctx context.Context, limit int) ([]domain.FileRecord, error) {
	records := []domain.FileRecord{}
	query := `SELECT * FROM files ORDER BY created_at DESC, id DESC LIMIT $1`

	if err := r.db.SelectContext(ctx, &records, query, limit); err != nil {
		return nil, fmt.Errorf("failed to query recent files: %w", err)
	}

	return records, nil
}

// Search ищет записи по подстроке в имени файла или предмете
// (без учета регистра) с точными фильтрами по предмету и типу.
// Пустой фильтр или сентинел "all" означает отсутствие фильтра.
func (r *FileRepository) Search(ctx context.Context, textQuery, subject, fileType string) ([]domain.FileRecord, error) {
	query := `SELECT * FROM files WHERE 1=1`
	args := []interface{}{}

	if textQuery != "" {
		args = append(args, "%"+textQuery+"%")
		query += fmt.Sprintf(" AND (filename ILIKE $%d OR subject ILIKE $%d)", len(args), len(args))
	}
	if subject != "" && subject != domain.FilterAll {
		args = append(args, subject)
		query += fmt.Sprintf(" AND subject = $%d", len(args))
	}
	if fileType != "" && fileType != domain.FilterAll {
		args = append(args, fileType)
		query += fmt.Sprintf(" AND file_type = $%d", len(args))
	}

	query += " ORDER BY created_at DESC, id DESC"

	records := []domain.FileRecord{}
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("failed to search files: %w", err)
	}

	return records, nil
}

// DistinctSubjects возвращает отсортированный список предметов
func (r *FileRepository) DistinctSubjects(ctx context.Context) ([]string, error) {
	subjects := []string{}
	query := `SELECT DISTINCT subject FROM files ORDER BY subject ASC`

	if err := r.db.SelectContext(ctx, &subjects, query); err != nil {
		return nil, fmt.Errorf("failed to query distinct subjects: %w", err)
	}

	return subjects, nil
}

// Count возвращает общее количество записей
func (r *FileRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM files`); err != nil {
		return 0, fmt.Errorf("failed to count files: %w", err)
	}
	return count, nil
}

// CountDistinctSubjects возвращает количество различных предметов
func (r *FileRepository) CountDistinctSubjects(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(DISTINCT subject) FROM files`); err != nil {
		return 0, fmt.Errorf("failed to count distinct subjects: %w", err)
	}
	return count, nil
}

// GetByFilename возвращает запись по финальному имени файла
func (r *FileRepository) GetByFilename(ctx context.Context, filename string) (*domain.FileRecord, error) {
	var record domain.FileRecord
	query := `SELECT * FROM files WHERE filename = $1`

	err := r.db.GetContext(ctx, &record, query, filename)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, filename)
		}
		return nil, fmt.Errorf("failed to get file record: %w", err)
	}

	return &record, nil
}
