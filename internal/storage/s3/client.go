// Package s3 реализует приемник байтов поверх S3-совместимого
// объектного хранилища.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	"acadrive/internal/domain"
	"acadrive/internal/preview"
)

const (
	defaultTimeout = 30 * time.Second
	uploadTimeout  = 10 * time.Minute

	objectPrefix  = "catalog/"  // префикс ключей файлов каталога
	previewPrefix = "previews/" // префикс ключей превью
)

// Sink предоставляет методы приемника байтов поверх бакета S3
type Sink struct {
	client   *s3.Client
	bucket   string
	endpoint string
}

// New создает новый приемник и проверяет доступность бакета
func New(conf *Config) (*Sink, error) {
	if conf == nil {
		return nil, fmt.Errorf("configuration is required")
	}

	if conf.AccessKeyID == "" || conf.SecretAccessKey == "" || conf.Bucket == "" {
		return nil, fmt.Errorf("missing required configuration: accessKeyID, secretAccessKey, and bucket are required")
	}

	creds := aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(
		conf.AccessKeyID,
		conf.SecretAccessKey,
		"",
	))

	client := s3.New(s3.Options{
		BaseEndpoint:     aws.String(conf.Endpoint),
		Region:           conf.Region,
		Credentials:      creds,
		RetryMode:        aws.RetryModeAdaptive,
		RetryMaxAttempts: 3,
	})

	sink := &Sink{
		client:   client,
		bucket:   conf.Bucket,
		endpoint: conf.Endpoint,
	}

	// Проверяем подключение к бакету
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	_, err := sink.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(conf.Bucket),
	})
	if err != nil {
		return nil, fmt.Errorf("unable to access bucket %s: %w", conf.Bucket, err)
	}

	return sink, nil
}

// Store загружает данные в бакет и возвращает публичный URL объекта
func (s *Sink) Store(ctx context.Context, name string, data io.Reader) (string, error) {
	key := objectPrefix + name

	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	buf, err := io.ReadAll(data)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read upload data: %v", domain.ErrWriteFailed, err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(buf),
	})
	if err != nil {
		return "", fmt.Errorf("%w: failed to upload object to S3: %v", domain.ErrWriteFailed, err)
	}

	return s.objectURL(key), nil
}

// Exists проверяет наличие объекта с таким именем
func (s *Sink) Exists(ctx context.Context, name string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectPrefix + name),
	})
	if err != nil {
		var nf *types.NotFound
		if errors.As(err, &nf) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check object existence: %w", err)
	}

	return true, nil
}

// Fetch получает объект из бакета
func (s *Sink) Fetch(ctx context.Context, name string) (io.ReadCloser, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectPrefix + name),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, name)
		}
		return nil, fmt.Errorf("failed to get object from S3: %w", err)
	}

	return result.Body, nil
}

// RenderPreview строит превью первой страницы документа и сохраняет
// его в бакете под отдельным ключом. Возвращает URL превью.
func (s *Sink) RenderPreview(ctx context.Context, name string, data []byte) (string, error) {
	rendered, err := preview.FirstPageJPEG(ctx, data)
	if err != nil {
		return "", fmt.Errorf("failed to render preview for %s: %w", name, err)
	}

	key := fmt.Sprintf("%s%s.jpg", previewPrefix, uuid.New().String())

	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(rendered),
		ContentType: aws.String("image/jpeg"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload preview to S3: %w", err)
	}

	return s.objectURL(key), nil
}

func (s *Sink) objectURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucket, key)
}
