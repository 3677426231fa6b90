package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"

	"microfeed/internal/config"
	"microfeed/internal/storage"
	"microfeed/internal/uploader"
)

var (
	ErrFileTooLarge  = errors.New("файл слишком большой")
	ErrInvalidObject = errors.New("недопустимое имя объекта")
)

type StorageService interface {
	Put(ctx context.Context, namespace, name string, file io.Reader) (string, error)
	URL(ctx context.Context, key string) (string, error)
}

type storageService struct {
	storage storage.Storage
	cfg     *config.Config
}

func NewStorageService(storage storage.Storage, cfg *config.Config) StorageService {
	return &storageService{
		storage: storage,
		cfg:     cfg,
	}
}

// Put stores the body under "<namespace>/<name>" and returns the object key.
func (s *storageService) Put(ctx context.Context, namespace, name string, file io.Reader) (string, error) {
	if err := uploader.Namespace(namespace).Validate(); err != nil {
		return "", err
	}
	if name == "" || strings.Contains(name, "/") || name == "." || name == ".." {
		return "", fmt.Errorf("%q: %w", name, ErrInvalidObject)
	}

	limit := s.cfg.MaxUploadSize
	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return "", fmt.Errorf("ошибка чтения файла: %w", err)
	}
	if int64(len(data)) > limit {
		return "", fmt.Errorf("%w: максимум %s", ErrFileTooLarge, humanize.IBytes(uint64(limit)))
	}

	key := path.Join(namespace, name)
	contentType := mimetype.Detect(data).String()

	if err := s.storage.Put(ctx, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return "", err
	}

	return key, nil
}

func (s *storageService) URL(ctx context.Context, key string) (string, error) {
	namespace, name, ok := strings.Cut(key, "/")
	if !ok || name == "" {
		return "", fmt.Errorf("%q: %w", key, ErrInvalidObject)
	}
	if err := uploader.Namespace(namespace).Validate(); err != nil {
		return "", err
	}

	return s.storage.URL(ctx, key)
}
