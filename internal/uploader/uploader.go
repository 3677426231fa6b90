package uploader

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"microfeed/internal/models"
)

const (
	Alphabet  = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	KeyLength = 16
)

type Namespace string

const (
	Avatars Namespace = "avatars"
	Images  Namespace = "images"
)

var ErrUnknownNamespace = errors.New("неизвестное пространство хранилища")

func (n Namespace) Validate() error {
	switch n {
	case Avatars, Images:
		return nil
	}
	return fmt.Errorf("%q: %w", string(n), ErrUnknownNamespace)
}

// ObjectStore is the blob storage the uploader writes to.
type ObjectStore interface {
	Put(ctx context.Context, key string, file io.Reader, size int64, contentType string) error
	URL(ctx context.Context, key string) (string, error)
}

type Uploader struct {
	store ObjectStore
	rand  io.Reader
}

func New(store ObjectStore) *Uploader {
	return &Uploader{store: store, rand: rand.Reader}
}

// RandomKey draws KeyLength characters uniformly from Alphabet.
func RandomKey(source io.Reader) (string, error) {
	max := big.NewInt(int64(len(Alphabet)))

	var sb strings.Builder
	sb.Grow(KeyLength)
	for i := 0; i < KeyLength; i++ {
		n, err := rand.Int(source, max)
		if err != nil {
			return "", fmt.Errorf("ошибка генерации ключа: %w", err)
		}
		sb.WriteByte(Alphabet[n.Int64()])
	}

	return sb.String(), nil
}

// ObjectKey builds "<namespace>/<random key>_<original name>".
func ObjectKey(ns Namespace, randomKey, name string) string {
	return fmt.Sprintf("%s/%s_%s", ns, randomKey, name)
}

// Upload stores the attachment under a fresh key and returns its durable URL.
// Nothing is cleaned up when resolving the URL fails after the write.
func (u *Uploader) Upload(ctx context.Context, ns Namespace, file models.Attachment) (string, error) {
	if err := ns.Validate(); err != nil {
		return "", err
	}

	randomKey, err := RandomKey(u.rand)
	if err != nil {
		return "", err
	}
	key := ObjectKey(ns, randomKey, file.Name)

	contentType := mimetype.Detect(file.Data).String()

	if err := u.store.Put(ctx, key, bytes.NewReader(file.Data), int64(len(file.Data)), contentType); err != nil {
		return "", fmt.Errorf("ошибка загрузки %s: %w", file.Name, err)
	}

	url, err := u.store.URL(ctx, key)
	if err != nil {
		return "", fmt.Errorf("ошибка получения ссылки на %s: %w", file.Name, err)
	}

	return url, nil
}
