package remote

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"microfeed/internal/models"
)

// Insert creates a post or a comment. The server fills the id, author
// fields and timestamp, which are copied back into doc.
func (c *Client) Insert(ctx context.Context, scope models.Scope, doc *models.Document) error {
	if err := scope.Validate(); err != nil {
		return err
	}

	var body interface{}
	path := "/api/posts"
	if scope.Collection == models.CollectionComments {
		path = "/api/posts/" + url.PathEscape(scope.ParentID) + "/comments"
		body = models.CreateCommentRequest{Text: doc.Text}
	} else {
		body = models.CreatePostRequest{Text: doc.Text, Image: doc.Image}
	}

	return c.doJSON(ctx, http.MethodPost, path, body, doc, true)
}

// Snapshot fetches the current content of a scope once.
func (c *Client) Snapshot(ctx context.Context, scope models.Scope) (models.Snapshot, error) {
	if err := scope.Validate(); err != nil {
		return models.Snapshot{}, err
	}

	path := "/api/posts"
	if scope.Collection == models.CollectionComments {
		path = "/api/posts/" + url.PathEscape(scope.ParentID) + "/comments"
	}

	var snap models.Snapshot
	err := c.doJSON(ctx, http.MethodGet, path, nil, &snap, true)
	return snap, err
}

// Put uploads an object stored under "namespace/name".
func (c *Client) Put(ctx context.Context, key string, file io.Reader, size int64, contentType string) error {
	namespace, name, ok := strings.Cut(key, "/")
	if !ok || namespace == "" || name == "" {
		return fmt.Errorf("неверный ключ объекта %q", key)
	}

	data, err := io.ReadAll(io.LimitReader(file, size))
	if err != nil {
		return fmt.Errorf("ошибка чтения файла: %w", err)
	}

	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return c.do(ctx, http.MethodPut, "/api/storage/"+escapePath(namespace, name), data, contentType, nil, true)
}

func (c *Client) URL(ctx context.Context, key string) (string, error) {
	var resp struct {
		URL string `json:"url"`
	}

	query := url.Values{"key": {key}}
	if err := c.doJSON(ctx, http.MethodGet, "/api/storage/url?"+query.Encode(), nil, &resp, true); err != nil {
		return "", err
	}
	return resp.URL, nil
}
