// Package naming содержит чистые функции подготовки имен файлов:
// очистку недоверенного имени от клиента и разрешение коллизий
// в целевом пространстве имен.
package naming

import (
	"fmt"
	"strings"
	"unicode"

	"acadrive/internal/domain"
)

// FallbackName возвращается, когда после очистки от имени ничего не осталось
const FallbackName = "uploaded_file"

// maxProbes — защитный предел перебора кандидатов при разрешении коллизий
const maxProbes = 10000

// Sanitize преобразует имя файла, полученное от клиента, в безопасное
// для хранилища: срезает ведущие последовательности обхода каталогов,
// заменяет недопустимые символы на подчеркивание. Никогда не возвращает
// пустую строку.
func Sanitize(raw string) string {
	name := raw

	// Срезаем ведущие "./", "../" и разделители путей
strip:
	for {
		switch {
		case strings.HasPrefix(name, "./"), strings.HasPrefix(name, ".\\"):
			name = name[2:]
		case strings.HasPrefix(name, "../"), strings.HasPrefix(name, "..\\"):
			name = name[3:]
		case strings.HasPrefix(name, "/"), strings.HasPrefix(name, "\\"):
			name = name[1:]
		case strings.HasPrefix(name, ".."):
			name = name[2:]
		default:
			break strip
		}
	}

	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) ||
			r == ' ' || r == '-' || r == '_' || r == '.' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}

	result := strings.TrimSpace(b.String())
	if result == "" || strings.Trim(result, "._ ") == "" {
		return FallbackName
	}
	return result
}

// Resolve подбирает имя, не занятое в пространстве имен. Если safeName
// свободно, возвращает его без изменений, иначе перебирает кандидатов
// вида "stem_1.ext", "stem_2.ext" и так далее. Probe-then-act: финальную
// гарантию уникальности дает уникальный индекс хранилища, а не Resolve.
func Resolve(safeName string, exists func(candidate string) bool) (string, error) {
	if !exists(safeName) {
		return safeName, nil
	}

	stem := safeName
	ext := ""
	if idx := strings.LastIndex(safeName, "."); idx > 0 {
		stem = safeName[:idx]
		ext = safeName[idx+1:]
	}

	for i := 1; i <= maxProbes; i++ {
		var candidate string
		if ext != "" {
			candidate = fmt.Sprintf("%s_%d.%s", stem, i, ext)
		} else {
			candidate = fmt.Sprintf("%s_%d", stem, i)
		}
		if !exists(candidate) {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%w: no free name for %q after %d probes",
		domain.ErrNamespaceExhausted, safeName, maxProbes)
}
