package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"microfeed/internal/models"
)

const pqForeignKeyViolation = "23503"

type DocumentRepositoryImpl struct {
	db    *sqlx.DB
	limit int
}

func NewDocumentRepository(db *sqlx.DB, limit int) *DocumentRepositoryImpl {
	if limit <= 0 {
		limit = 200
	}
	return &DocumentRepositoryImpl{db: db, limit: limit}
}

// Insert assigns the document id and takes the timestamp from the database
// clock, so ordering never depends on client clocks.
func (r *DocumentRepositoryImpl) Insert(ctx context.Context, scope models.Scope, doc *models.Document) error {
	if err := scope.Validate(); err != nil {
		return err
	}

	doc.ID = uuid.New().String()

	var query string
	var args []interface{}

	switch scope.Collection {
	case models.CollectionPosts:
		doc.ParentID = ""
		query = `
			INSERT INTO posts (post_id, author_id, username, avatar, text, image, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, now())
			RETURNING created_at
		`
		args = []interface{}{doc.ID, doc.AuthorID, doc.Username, doc.Avatar, doc.Text, doc.Image}
	case models.CollectionComments:
		doc.ParentID = scope.ParentID
		doc.Image = ""
		query = `
			INSERT INTO comments (comment_id, post_id, author_id, username, avatar, text, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, now())
			RETURNING created_at
		`
		args = []interface{}{doc.ID, doc.ParentID, doc.AuthorID, doc.Username, doc.Avatar, doc.Text}
	}

	err := r.db.QueryRowxContext(ctx, query, args...).Scan(&doc.Timestamp)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqForeignKeyViolation {
			return fmt.Errorf("пост с ID %s не найден: %w", scope.ParentID, ErrNotFound)
		}
		return fmt.Errorf("ошибка при создании записи в %s: %w", scope.Key(), err)
	}

	return nil
}

// List returns the scope's documents newest first, ties broken by id.
func (r *DocumentRepositoryImpl) List(ctx context.Context, scope models.Scope) ([]models.Document, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	var query string
	var args []interface{}

	switch scope.Collection {
	case models.CollectionPosts:
		query = `
			SELECT post_id AS id, '' AS parent_id, author_id, username, avatar, text, image, created_at
			FROM posts
			ORDER BY created_at DESC, post_id DESC
			LIMIT $1
		`
		args = []interface{}{r.limit}
	case models.CollectionComments:
		// post ids are uuids; any other id names a post that cannot exist
		if _, err := uuid.Parse(scope.ParentID); err != nil {
			return []models.Document{}, nil
		}
		query = `
			SELECT comment_id AS id, post_id AS parent_id, author_id, username, avatar, text, '' AS image, created_at
			FROM comments
			WHERE post_id = $1
			ORDER BY created_at DESC, comment_id DESC
			LIMIT $2
		`
		args = []interface{}{scope.ParentID, r.limit}
	}

	docs := make([]models.Document, 0)
	if err := r.db.SelectContext(ctx, &docs, query, args...); err != nil {
		return nil, fmt.Errorf("ошибка при получении %s: %w", scope.Key(), err)
	}

	return docs, nil
}

func (r *DocumentRepositoryImpl) PostExists(ctx context.Context, postID string) (bool, error) {
	if _, err := uuid.Parse(postID); err != nil {
		return false, nil
	}

	query := `SELECT EXISTS(SELECT 1 FROM posts WHERE post_id = $1)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, postID); err != nil {
		return false, fmt.Errorf("ошибка при проверке поста: %w", err)
	}

	return exists, nil
}
