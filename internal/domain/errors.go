package domain

import "errors"

// Определение ошибок каталога. Хендлеры сопоставляют их с HTTP статусами
// через errors.Is, сервисы оборачивают через fmt.Errorf("%w: ...").
var (
	// ErrInvalidInput — отсутствует имя файла или предмет
	ErrInvalidInput = errors.New("invalid input")
	// ErrPayloadTooLarge — размер файла превышает настроенный лимит
	ErrPayloadTooLarge = errors.New("payload too large")
	// ErrWriteFailed — ошибка записи в хранилище байтов
	ErrWriteFailed = errors.New("storage write failed")
	// ErrConstraintViolation — хранилище метаданных отклонило запись
	ErrConstraintViolation = errors.New("constraint violation")
	// ErrPersistenceFailed — байты сохранены, но запись метаданных не создана.
	// Сохраненный объект остается осиротевшим, компенсирующего удаления нет.
	ErrPersistenceFailed = errors.New("metadata persistence failed")
	// ErrNotFound — запрошенный объект не существует
	ErrNotFound = errors.New("not found")
	// ErrNamespaceExhausted — не удалось подобрать свободное имя
	ErrNamespaceExhausted = errors.New("namespace exhausted")
)
