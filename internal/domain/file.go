package domain

import (
	"time"
)

// Теги классификации файлов
const (
	TypePDF          = "pdf"
	TypeImage        = "image"
	TypeDocument     = "document"
	TypePresentation = "presentation"
	TypeOther        = "other"
)

// FilterAll — сентинел для фильтров поиска, означает "без фильтра"
const FilterAll = "all"

// FileRecord представляет запись каталога о загруженном файле.
// Запись создается один раз при загрузке и дальше не изменяется.
type FileRecord struct {
	ID             int64     `json:"id" db:"id"`
	Filename       string    `json:"filename" db:"filename"`
	Subject        string    `json:"subject" db:"subject"`
	Locator        string    `json:"file_url" db:"file_url"`
	SizeBytes      int64     `json:"file_size" db:"file_size"`
	FileType       string    `json:"file_type" db:"file_type"`
	PreviewLocator *string   `json:"preview_url,omitempty" db:"preview_url"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// FileInput — входные данные для создания записи.
// ID и CreatedAt назначаются хранилищем при вставке.
type FileInput struct {
	Filename       string
	Subject        string
	Locator        string
	SizeBytes      int64
	FileType       string
	PreviewLocator *string
}

// Stats представляет агрегированную статистику каталога
type Stats struct {
	TotalFiles    int64 `json:"total_files"`
	TotalSubjects int64 `json:"total_subjects"`
}
