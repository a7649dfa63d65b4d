package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"

	"acadrive/internal/domain"
	"acadrive/internal/service"
	"acadrive/internal/storage"
)

// RemoteUploadRequest — тело запроса регистрации файла, уже загруженного
// во внешнее объектное хранилище
type RemoteUploadRequest struct {
	Filename       string  `json:"filename"`
	Subject        string  `json:"subject"`
	FileSize       int64   `json:"file_size"`
	FileURL        string  `json:"file_url"`
	ContentType    string  `json:"content_type"`
	PreviewLocator *string `json:"preview_url,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type FileHandler struct {
	uploads  *service.UploadService
	queries  *service.QueryService
	sink     storage.Sink
	maxBytes int64
}

func NewFileHandler(
	uploads *service.UploadService,
	queries *service.QueryService,
	sink storage.Sink,
	maxBytes int64,
) *FileHandler {
	if maxBytes <= 0 {
		maxBytes = service.DefaultMaxUploadBytes
	}
	return &FileHandler{
		uploads:  uploads,
		queries:  queries,
		sink:     sink,
		maxBytes: maxBytes,
	}
}

// Upload обрабатывает multipart-загрузку файла
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	// Запас поверх лимита, чтобы сервис сам вернул PayloadTooLarge
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+(1<<20))

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "failed to parse upload form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	subject := r.FormValue("subject")

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	record, err := h.uploads.Upload(r.Context(), service.UploadRequest{
		RawName:     header.Filename,
		Subject:     subject,
		SizeBytes:   header.Size,
		ContentType: header.Header.Get("Content-Type"),
		Data:        file,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, record)
}

// UploadRemote регистрирует файл, загруженный клиентом напрямую
// во внешнее хранилище
func (h *FileHandler) UploadRemote(w http.ResponseWriter, r *http.Request) {
	var req RemoteUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	record, err := h.uploads.Register(r.Context(), service.RegisterRequest{
		RawName:        req.Filename,
		Subject:        req.Subject,
		SizeBytes:      req.FileSize,
		ContentType:    req.ContentType,
		Locator:        req.FileURL,
		PreviewLocator: req.PreviewLocator,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, record)
}

// Recent отдает последние загруженные файлы
func (h *FileHandler) Recent(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	records, err := h.queries.Recent(r.Context(), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, records)
}

// Search ищет файлы по подстроке и фильтрам
func (h *FileHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	records, err := h.queries.Search(r.Context(), q.Get("query"), q.Get("subject"), q.Get("file_type"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, records)
}

// Subjects отдает список различных предметов
func (h *FileHandler) Subjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := h.queries.Subjects(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, subjects)
}

// Stats отдает агрегированную статистику каталога
func (h *FileHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.queries.Stats(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// Download отдает сохраненный файл из приемника байтов
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	if filename == "" {
		writeError(w, http.StatusBadRequest, "filename is required")
		return
	}

	obj, err := h.sink.Fetch(r.Context(), filename)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	defer obj.Close()

	contentType := mime.TypeByExtension(filepath.Ext(filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)

	if _, err := io.Copy(w, obj); err != nil {
		log.Printf("failed to stream file %s: %v", filename, err)
	}
}

// Health — проверка живости сервиса
func (h *FileHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// Root — баннер сервиса
func (h *FileHandler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Acadrive API is running"})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeServiceError сопоставляет вид ошибки сервиса с HTTP-статусом.
// Наружу уходит только краткое описание, без деталей хранилища.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrPayloadTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "file size exceeds the upload limit")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "file not found")
	case errors.Is(err, domain.ErrWriteFailed):
		log.Printf("storage write error: %v", err)
		writeError(w, http.StatusBadGateway, "failed to store file, please retry")
	case errors.Is(err, domain.ErrConstraintViolation):
		log.Printf("constraint violation: %v", err)
		writeError(w, http.StatusConflict, "a file with this name already exists")
	case errors.Is(err, domain.ErrPersistenceFailed):
		log.Printf("persistence error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to save file metadata")
	default:
		log.Printf("internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
