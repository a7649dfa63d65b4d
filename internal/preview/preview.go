// Package preview строит превью первой страницы PDF-документа.
// Рендер выполняется внешней утилитой pdftoppm, результат ужимается
// через bimg до размера превью.
package preview

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/h2non/bimg"
)

const (
	maxImageSize = 1024 // максимальный размер превью в пикселях
	jpegQuality  = 85   // качество JPEG
)

// FirstPageJPEG рендерит первую страницу PDF в JPEG-превью.
func FirstPageJPEG(ctx context.Context, data []byte) ([]byte, error) {
	// Создаем временную директорию
	tmpPath := filepath.Join(os.TempDir(), "preview_"+uuid.New().String())
	if err := os.MkdirAll(tmpPath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpPath)

	// Сохраняем PDF во временный файл
	pdfPath := filepath.Join(tmpPath, "input.pdf")
	if err := os.WriteFile(pdfPath, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write PDF file: %w", err)
	}

	// Конвертируем первую страницу в изображение
	outputPath := filepath.Join(tmpPath, "output")
	cmd := exec.CommandContext(ctx, "pdftoppm",
		"-jpeg",
		"-f", "1",
		"-l", "1",
		"-scale-to", fmt.Sprintf("%d", maxImageSize),
		"-singlefile",
		pdfPath,
		outputPath,
	)

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("failed to convert PDF: %w", err)
	}

	imgData, err := os.ReadFile(outputPath + ".jpg")
	if err != nil {
		return nil, fmt.Errorf("failed to read converted image: %w", err)
	}

	return optimizeImage(imgData)
}

// optimizeImage ужимает изображение до размера превью с сохранением пропорций
func optimizeImage(data []byte) ([]byte, error) {
	image := bimg.NewImage(data)

	size, err := image.Size()
	if err != nil {
		return nil, fmt.Errorf("failed to get image size: %w", err)
	}

	width, height := fitDimensions(size.Width, size.Height, maxImageSize)

	processed, err := image.Process(bimg.Options{
		Width:   width,
		Height:  height,
		Quality: jpegQuality,
		Type:    bimg.JPEG,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to process image: %w", err)
	}

	return processed, nil
}

// fitDimensions вычисляет размеры превью с сохранением пропорций
func fitDimensions(width, height, maxSize int) (newWidth, newHeight int) {
	if width > height {
		newWidth = maxSize
		newHeight = (height * maxSize) / width
	} else {
		newHeight = maxSize
		newWidth = (width * maxSize) / height
	}
	return
}
