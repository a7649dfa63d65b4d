// Package storage определяет интерфейс приемника байтов (Storage Sink).
// Конкретный бэкенд — локальный диск или S3-совместимое хранилище —
// выбирается конфигурацией при старте процесса.
package storage

import (
	"context"
	"io"
)

// Sink определяет интерфейс для долговременного хранения байтов файла.
type Sink interface {
	// Store сохраняет данные под именем name и возвращает локатор,
	// по которому файл можно получить
	Store(ctx context.Context, name string, data io.Reader) (string, error)
	// Exists проверяет занято ли имя в пространстве имен приемника
	Exists(ctx context.Context, name string) (bool, error)
	// Fetch открывает сохраненный объект для чтения
	Fetch(ctx context.Context, name string) (io.ReadCloser, error)
}

// PreviewRenderer — необязательная способность приемника: построение
// превью первой страницы документа. Конвейер загрузки проверяет её
// утверждением типа и вызывает best-effort.
type PreviewRenderer interface {
	RenderPreview(ctx context.Context, name string, data []byte) (string, error)
}
