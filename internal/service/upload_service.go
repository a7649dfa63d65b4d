package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"acadrive/internal/classify"
	"acadrive/internal/domain"
	"acadrive/internal/naming"
	"acadrive/internal/storage"
)

// DefaultMaxUploadBytes — лимит размера загрузки по умолчанию, 50 MiB
const DefaultMaxUploadBytes = 50 * 1024 * 1024

// maxInsertAttempts ограничивает повторы вставки при нарушении
// уникальности имени под конкурентными загрузками
const maxInsertAttempts = 3

// UploadRequest — входные данные загрузки файла с байтами
type UploadRequest struct {
	RawName     string
	Subject     string
	SizeBytes   int64
	ContentType string
	Data        io.Reader
}

// RegisterRequest — регистрация файла, уже загруженного во внешнее
// объектное хранилище. Байты через конвейер не проходят.
type RegisterRequest struct {
	RawName        string
	Subject        string
	SizeBytes      int64
	ContentType    string
	Locator        string
	PreviewLocator *string
}

// UploadService — конвейер загрузки: очистка имени, разрешение коллизий,
// классификация, запись байтов в приемник и создание записи метаданных.
type UploadService struct {
	store    MetadataStore
	sink     storage.Sink
	maxBytes int64
}

func NewUploadService(store MetadataStore, sink storage.Sink, maxBytes int64) *UploadService {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &UploadService{
		store:    store,
		sink:     sink,
		maxBytes: maxBytes,
	}
}

// Upload проводит файл через весь конвейер и возвращает созданную запись.
func (s *UploadService) Upload(ctx context.Context, req UploadRequest) (*domain.FileRecord, error) {
	if req.RawName == "" {
		return nil, fmt.Errorf("%w: filename is required", domain.ErrInvalidInput)
	}
	if req.Subject == "" {
		return nil, fmt.Errorf("%w: subject is required", domain.ErrInvalidInput)
	}
	if req.Data == nil {
		return nil, fmt.Errorf("%w: file data is required", domain.ErrInvalidInput)
	}
	if req.SizeBytes < 0 {
		return nil, fmt.Errorf("%w: negative file size", domain.ErrInvalidInput)
	}
	if req.SizeBytes > s.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds limit of %d", domain.ErrPayloadTooLarge, req.SizeBytes, s.maxBytes)
	}

	// Читаем байты один раз: при повторе после коллизии запись в приемник
	// выполняется заново. Лимит страхует от занижения заявленного размера.
	data, err := io.ReadAll(io.LimitReader(req.Data, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload data: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, fmt.Errorf("%w: upload exceeds limit of %d bytes", domain.ErrPayloadTooLarge, s.maxBytes)
	}

	safeName := naming.Sanitize(req.RawName)

	exists := func(candidate string) bool {
		occupied, err := s.sink.Exists(ctx, candidate)
		if err != nil {
			// При сбое проверки считаем имя занятым, чтобы не перезаписать
			return true
		}
		return occupied
	}

	var lastErr error
	for attempt := 0; attempt < maxInsertAttempts; attempt++ {
		finalName, err := naming.Resolve(safeName, exists)
		if err != nil {
			return nil, err
		}

		fileType := classify.FileType(finalName, req.ContentType)

		locator, err := s.sink.Store(ctx, finalName, bytes.NewReader(data))
		if err != nil {
			return nil, err
		}

		record, err := s.store.Insert(ctx, domain.FileInput{
			Filename:       finalName,
			Subject:        req.Subject,
			Locator:        locator,
			SizeBytes:      int64(len(data)),
			FileType:       fileType,
			PreviewLocator: s.renderPreview(ctx, finalName, fileType, data),
		})
		if err == nil {
			return record, nil
		}

		if errors.Is(err, domain.ErrConstraintViolation) {
			// Конкурентная загрузка заняла имя между probe и insert.
			// Объект этой попытки остается в приемнике и пометит имя
			// занятым при повторном разрешении.
			log.Printf("filename %s lost the race, retrying resolution (attempt %d)", finalName, attempt+1)
			lastErr = err
			continue
		}

		// Байты сохранены, записи нет — объект осиротел
		log.Printf("WARNING: stored object orphaned at %s: metadata insert failed: %v", locator, err)
		return nil, fmt.Errorf("%w: record for %s not created, stored object orphaned at %s",
			domain.ErrPersistenceFailed, finalName, locator)
	}

	return nil, fmt.Errorf("failed to insert record after %d attempts: %w", maxInsertAttempts, lastErr)
}

// Register создает запись для файла, уже лежащего во внешнем хранилище.
// Разрешение коллизий не выполняется: уникальность ключа гарантирует
// внешнее хранилище.
func (s *UploadService) Register(ctx context.Context, req RegisterRequest) (*domain.FileRecord, error) {
	if req.RawName == "" {
		return nil, fmt.Errorf("%w: filename is required", domain.ErrInvalidInput)
	}
	if req.Subject == "" {
		return nil, fmt.Errorf("%w: subject is required", domain.ErrInvalidInput)
	}
	if req.Locator == "" {
		return nil, fmt.Errorf("%w: file URL is required", domain.ErrInvalidInput)
	}
	if req.SizeBytes < 0 {
		return nil, fmt.Errorf("%w: negative file size", domain.ErrInvalidInput)
	}
	if req.SizeBytes > s.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds limit of %d", domain.ErrPayloadTooLarge, req.SizeBytes, s.maxBytes)
	}

	safeName := naming.Sanitize(req.RawName)

	record, err := s.store.Insert(ctx, domain.FileInput{
		Filename:       safeName,
		Subject:        req.Subject,
		Locator:        req.Locator,
		SizeBytes:      req.SizeBytes,
		FileType:       classify.FileType(safeName, req.ContentType),
		PreviewLocator: req.PreviewLocator,
	})
	if err != nil {
		return nil, err
	}

	return record, nil
}

// renderPreview строит превью для PDF, если приемник это умеет.
// Ошибки превью не прерывают загрузку.
func (s *UploadService) renderPreview(ctx context.Context, finalName, fileType string, data []byte) *string {
	if fileType != domain.TypePDF {
		return nil
	}
	renderer, ok := s.sink.(storage.PreviewRenderer)
	if !ok {
		return nil
	}

	locator, err := renderer.RenderPreview(ctx, finalName, data)
	if err != nil {
		log.Printf("failed to render preview for %s: %v", finalName, err)
		return nil
	}
	return &locator
}
