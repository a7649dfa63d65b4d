// Package classify определяет грубый тег типа файла по имени
// и заявленному content-type.
package classify

import (
	"path/filepath"
	"strings"

	"acadrive/internal/domain"
)

// Соответствие расширений тегам. Расширение — первичный сигнал.
var extTags = map[string]string{
	".pdf":  domain.TypePDF,
	".jpg":  domain.TypeImage,
	".jpeg": domain.TypeImage,
	".png":  domain.TypeImage,
	".gif":  domain.TypeImage,
	".doc":  domain.TypeDocument,
	".docx": domain.TypeDocument,
	".ppt":  domain.TypePresentation,
	".pptx": domain.TypePresentation,
}

// FileType определяет тег типа по имени файла. Если расширение не
// распознано, используется основной компонент заявленного content-type,
// иначе возвращается TypeOther. Чистая функция, без I/O.
func FileType(filename, declaredContentType string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if tag, ok := extTags[ext]; ok {
		return tag
	}

	if declaredContentType != "" {
		ct := strings.ToLower(declaredContentType)
		if idx := strings.Index(ct, ";"); idx >= 0 {
			ct = strings.TrimSpace(ct[:idx])
		}
		switch {
		case ct == "application/pdf":
			return domain.TypePDF
		case strings.HasPrefix(ct, "image/"):
			return domain.TypeImage
		case strings.HasPrefix(ct, "text/"):
			return domain.TypeDocument
		case strings.Contains(ct, "presentation"):
			return domain.TypePresentation
		case strings.Contains(ct, "word") || strings.Contains(ct, "document"):
			return domain.TypeDocument
		}
	}

	return domain.TypeOther
}
