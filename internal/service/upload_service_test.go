package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"acadrive/internal/domain"
)

func uploadReq(rawName, subject, content string) UploadRequest {
	return UploadRequest{
		RawName:   rawName,
		Subject:   subject,
		SizeBytes: int64(len(content)),
		Data:      strings.NewReader(content),
	}
}

func TestUpload_RoundTrip(t *testing.T) {
	store := newMemStore()
	sink := newMemSink()
	svc := NewUploadService(store, sink, 0)
	queries := NewQueryService(store)
	ctx := context.Background()

	record, err := svc.Upload(ctx, uploadReq("report.pdf", "Databases", "pdf bytes"))
	require.NoError(t, err)

	assert.Equal(t, int64(1), record.ID)
	assert.Equal(t, "report.pdf", record.Filename)
	assert.Equal(t, "Databases", record.Subject)
	assert.Equal(t, "/uploads/report.pdf", record.Locator)
	assert.Equal(t, int64(len("pdf bytes")), record.SizeBytes)
	assert.Equal(t, domain.TypePDF, record.FileType)
	assert.False(t, record.CreatedAt.IsZero())

	// Загруженная запись видна как самая свежая
	recent, err := queries.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, record.ID, recent[0].ID)
}

func TestUpload_ValidatesInput(t *testing.T) {
	svc := NewUploadService(newMemStore(), newMemSink(), 0)
	ctx := context.Background()

	_, err := svc.Upload(ctx, uploadReq("", "Math", "data"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Upload(ctx, uploadReq("notes.txt", "", "data"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Upload(ctx, UploadRequest{RawName: "notes.txt", Subject: "Math", SizeBytes: 4})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Upload(ctx, UploadRequest{
		RawName: "notes.txt", Subject: "Math", SizeBytes: -1, Data: strings.NewReader("data"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUpload_SizeBoundary(t *testing.T) {
	const maxBytes = 64
	svc := NewUploadService(newMemStore(), newMemSink(), maxBytes)
	ctx := context.Background()

	// Ровно на границе — проходит
	content := strings.Repeat("a", maxBytes)
	record, err := svc.Upload(ctx, uploadReq("exact.txt", "Math", content))
	require.NoError(t, err)
	assert.Equal(t, int64(maxBytes), record.SizeBytes)

	// На байт больше — отклоняется
	_, err = svc.Upload(ctx, uploadReq("over.txt", "Math", content+"a"))
	assert.ErrorIs(t, err, domain.ErrPayloadTooLarge)
}

func TestUpload_RejectsUnderdeclaredSize(t *testing.T) {
	const maxBytes = 16
	svc := NewUploadService(newMemStore(), newMemSink(), maxBytes)

	// Заявленный размер в лимите, фактический — нет
	_, err := svc.Upload(context.Background(), UploadRequest{
		RawName:   "sneaky.bin",
		Subject:   "Math",
		SizeBytes: 10,
		Data:      strings.NewReader(strings.Repeat("b", maxBytes*2)),
	})
	assert.ErrorIs(t, err, domain.ErrPayloadTooLarge)
}

func TestUpload_TraversalScenario(t *testing.T) {
	store := newMemStore()
	svc := NewUploadService(store, newMemSink(), 0)
	queries := NewQueryService(store)
	ctx := context.Background()

	record, err := svc.Upload(ctx, uploadReq("../../etc/passwd", "Security", "0123456789"))
	require.NoError(t, err)

	assert.Equal(t, "etc_passwd", record.Filename)
	assert.Equal(t, domain.TypeOther, record.FileType)
	assert.NotContains(t, record.Filename, "/")

	found, err := queries.Search(ctx, "", "Security", "")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, record.ID, found[0].ID)
}

func TestUpload_ResolvesSinkCollision(t *testing.T) {
	sink := newMemSink()
	svc := NewUploadService(newMemStore(), sink, 0)
	ctx := context.Background()

	first, err := svc.Upload(ctx, uploadReq("report.pdf", "Math", "v1"))
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", first.Filename)

	second, err := svc.Upload(ctx, uploadReq("report.pdf", "Math", "v2"))
	require.NoError(t, err)
	assert.Equal(t, "report_1.pdf", second.Filename)

	third, err := svc.Upload(ctx, uploadReq("report.pdf", "Math", "v3"))
	require.NoError(t, err)
	assert.Equal(t, "report_2.pdf", third.Filename)
}

func TestUpload_RetriesOnConstraintViolation(t *testing.T) {
	store := newMemStore()
	sink := newMemSink()
	svc := NewUploadService(store, sink, 0)
	ctx := context.Background()

	// Запись с таким именем уже есть в базе, но объекта в приемнике нет:
	// резолвер пропустит имя, вставка упрется в уникальный индекс
	_, err := store.Insert(ctx, domain.FileInput{
		Filename: "report.pdf", Subject: "Math", Locator: "/uploads/report.pdf",
		FileType: domain.TypePDF,
	})
	require.NoError(t, err)

	record, err := svc.Upload(ctx, uploadReq("report.pdf", "Math", "new data"))
	require.NoError(t, err)
	assert.Equal(t, "report_1.pdf", record.Filename)
	assert.GreaterOrEqual(t, store.insertSeen, 2, "ожидался повтор вставки")

	// Объект первой попытки остается в приемнике осиротевшим
	occupied, err := sink.Exists(ctx, "report.pdf")
	require.NoError(t, err)
	assert.True(t, occupied)
}

func TestUpload_PersistenceFailureKeepsStoredObject(t *testing.T) {
	store := newMemStore()
	store.insertErr = errors.New("database is down")
	sink := newMemSink()
	svc := NewUploadService(store, sink, 0)
	ctx := context.Background()

	_, err := svc.Upload(ctx, uploadReq("notes.txt", "Math", "important bytes"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPersistenceFailed)

	// Байты не теряются: объект остается в приемнике
	rc, err := sink.Fetch(ctx, "notes.txt")
	require.NoError(t, err)
	rc.Close()
}

func TestUpload_RendersPreviewForPDF(t *testing.T) {
	sink := newPreviewSink()
	svc := NewUploadService(newMemStore(), sink, 0)
	ctx := context.Background()

	record, err := svc.Upload(ctx, uploadReq("slides.pdf", "Math", "%PDF-1.4"))
	require.NoError(t, err)
	require.NotNil(t, record.PreviewLocator)
	assert.Equal(t, "/previews/slides.pdf.jpg", *record.PreviewLocator)
	assert.Equal(t, []string{"slides.pdf"}, sink.rendered)

	// Для не-PDF превью не строится
	record, err = svc.Upload(ctx, uploadReq("photo.png", "Math", "png"))
	require.NoError(t, err)
	assert.Nil(t, record.PreviewLocator)
}

func TestUpload_PreviewFailureDoesNotFailUpload(t *testing.T) {
	sink := newPreviewSink()
	sink.renderErr = errors.New("pdftoppm not installed")
	svc := NewUploadService(newMemStore(), sink, 0)

	record, err := svc.Upload(context.Background(), uploadReq("paper.pdf", "Math", "%PDF-1.4"))
	require.NoError(t, err)
	assert.Nil(t, record.PreviewLocator)
}

func TestUpload_PlainSinkWithoutPreviewSupport(t *testing.T) {
	svc := NewUploadService(newMemStore(), newMemSink(), 0)

	record, err := svc.Upload(context.Background(), uploadReq("paper.pdf", "Math", "%PDF-1.4"))
	require.NoError(t, err)
	assert.Nil(t, record.PreviewLocator)
}

func TestRegister_RemoteUpload(t *testing.T) {
	store := newMemStore()
	svc := NewUploadService(store, newMemSink(), 0)
	ctx := context.Background()

	preview := "https://bucket.example.net/previews/abc.jpg"
	record, err := svc.Register(ctx, RegisterRequest{
		RawName:        "lecture.pptx",
		Subject:        "Physics",
		SizeBytes:      2048,
		ContentType:    "application/vnd.openxmlformats-officedocument.presentationml.presentation",
		Locator:        "https://bucket.example.net/catalog/lecture.pptx",
		PreviewLocator: &preview,
	})
	require.NoError(t, err)

	assert.Equal(t, "lecture.pptx", record.Filename)
	assert.Equal(t, domain.TypePresentation, record.FileType)
	assert.Equal(t, "https://bucket.example.net/catalog/lecture.pptx", record.Locator)
	require.NotNil(t, record.PreviewLocator)
	assert.Equal(t, preview, *record.PreviewLocator)
}

func TestRegister_ValidatesInput(t *testing.T) {
	svc := NewUploadService(newMemStore(), newMemSink(), 0)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Subject: "Math", Locator: "https://x/y"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Register(ctx, RegisterRequest{RawName: "a.txt", Locator: "https://x/y"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Register(ctx, RegisterRequest{RawName: "a.txt", Subject: "Math"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Register(ctx, RegisterRequest{
		RawName: "a.txt", Subject: "Math", Locator: "https://x/y",
		SizeBytes: DefaultMaxUploadBytes + 1,
	})
	assert.ErrorIs(t, err, domain.ErrPayloadTooLarge)
}

func TestUpload_SanitizesWeirdNames(t *testing.T) {
	svc := NewUploadService(newMemStore(), newMemSink(), 0)

	record, err := svc.Upload(context.Background(), UploadRequest{
		RawName:   "///",
		Subject:   "Math",
		SizeBytes: 1,
		Data:      bytes.NewReader([]byte("x")),
	})
	require.NoError(t, err)
	assert.Equal(t, "uploaded_file", record.Filename)
}
