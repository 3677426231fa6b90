package service

import (
	"context"
	"errors"
	"fmt"

	"microfeed/internal/livequery"
	"microfeed/internal/models"
	"microfeed/internal/repository"
)

var ErrEmptyText = errors.New("текст не может быть пустым")

type FeedService interface {
	CreatePost(ctx context.Context, authorID string, req models.CreatePostRequest) (*models.Document, error)
	CreateComment(ctx context.Context, authorID, postID string, req models.CreateCommentRequest) (*models.Document, error)
	Snapshot(ctx context.Context, scope models.Scope) (models.Snapshot, error)
	Subscribe(ctx context.Context, scope models.Scope) (*livequery.Subscription, error)
}

type feedService struct {
	userRepo repository.UserRepository
	docRepo  repository.DocumentRepository
	engine   *livequery.Engine
}

func NewFeedService(userRepo repository.UserRepository, docRepo repository.DocumentRepository, engine *livequery.Engine) FeedService {
	return &feedService{
		userRepo: userRepo,
		docRepo:  docRepo,
		engine:   engine,
	}
}

func (s *feedService) CreatePost(ctx context.Context, authorID string, req models.CreatePostRequest) (*models.Document, error) {
	doc, err := s.newDocument(ctx, authorID, req.Text)
	if err != nil {
		return nil, err
	}
	doc.Image = req.Image

	if err := s.engine.Insert(ctx, models.PostsScope(), doc); err != nil {
		return nil, err
	}

	return doc, nil
}

func (s *feedService) CreateComment(ctx context.Context, authorID, postID string, req models.CreateCommentRequest) (*models.Document, error) {
	scope := models.CommentsScope(postID)
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	exists, err := s.docRepo.PostExists(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("пост с ID %s не найден: %w", postID, repository.ErrNotFound)
	}

	doc, err := s.newDocument(ctx, authorID, req.Text)
	if err != nil {
		return nil, err
	}

	if err := s.engine.Insert(ctx, scope, doc); err != nil {
		return nil, err
	}

	return doc, nil
}

func (s *feedService) Snapshot(ctx context.Context, scope models.Scope) (models.Snapshot, error) {
	return s.engine.Snapshot(ctx, scope)
}

func (s *feedService) Subscribe(ctx context.Context, scope models.Scope) (*livequery.Subscription, error) {
	return s.engine.Subscribe(ctx, scope)
}

// newDocument fills the author display fields from the stored profile.
func (s *feedService) newDocument(ctx context.Context, authorID, text string) (*models.Document, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	author, err := s.userRepo.GetUserByID(ctx, authorID)
	if err != nil {
		return nil, err
	}

	return &models.Document{
		AuthorID: author.UserID,
		Username: author.DisplayName,
		Avatar:   author.PhotoURL,
		Text:     text,
	}, nil
}
