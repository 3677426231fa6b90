package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"microfeed/internal/config"
)

var ErrObjectNotFound = errors.New("объект не найден")

const publicReadPolicy = `{
	"Version": "2012-10-17",
	"Statement": [{
		"Effect": "Allow",
		"Principal": {"AWS": ["*"]},
		"Action": ["s3:GetObject"],
		"Resource": ["arn:aws:s3:::%s/*"]
	}]
}`

type Storage interface {
	Put(ctx context.Context, key string, file io.Reader, size int64, contentType string) error
	URL(ctx context.Context, key string) (string, error)
}

type MinIOClient struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

func NewMinIOClient(cfg config.MinIO) (*MinIOClient, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка создания клиента MinIO: %w", err)
	}

	return &MinIOClient{
		client:    client,
		bucket:    cfg.BucketName,
		publicURL: strings.TrimSuffix(cfg.PublicURL, "/"),
	}, nil
}

// EnsureBucket creates the bucket on first start and opens it for anonymous reads,
// so object URLs stay valid without signing.
func (m *MinIOClient) EnsureBucket(ctx context.Context, region string) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("ошибка проверки бакета %s: %w", m.bucket, err)
	}

	if !exists {
		if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{Region: region}); err != nil {
			return fmt.Errorf("ошибка создания бакета %s: %w", m.bucket, err)
		}
	}

	if err := m.client.SetBucketPolicy(ctx, m.bucket, fmt.Sprintf(publicReadPolicy, m.bucket)); err != nil {
		return fmt.Errorf("ошибка установки политики бакета %s: %w", m.bucket, err)
	}

	return nil
}

func (m *MinIOClient) Put(ctx context.Context, key string, file io.Reader, size int64, contentType string) error {
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := m.client.PutObject(ctx, m.bucket, key, file, size,
		minio.PutObjectOptions{
			ContentType: contentType,
			UserMetadata: map[string]string{
				"uploaded-at": time.Now().UTC().Format(time.RFC3339),
			},
		})
	if err != nil {
		return fmt.Errorf("ошибка загрузки в MinIO: %w", err)
	}

	return nil
}

// URL resolves the durable public address of an existing object.
func (m *MinIOClient) URL(ctx context.Context, key string) (string, error) {
	if _, err := m.client.StatObject(ctx, m.bucket, key, minio.StatObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return "", fmt.Errorf("%s: %w", key, ErrObjectNotFound)
		}
		return "", fmt.Errorf("ошибка получения объекта из MinIO: %w", err)
	}

	return objectURL(m.publicURL, m.bucket, key), nil
}

func objectURL(base, bucket, key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return fmt.Sprintf("%s/%s/%s", base, bucket, strings.Join(segments, "/"))
}
