package service

import (
	"microfeed/internal/config"
	"microfeed/internal/livequery"
	"microfeed/internal/repository"
	"microfeed/internal/storage"
)

type Service struct {
	Auth    AuthService
	Feed    FeedService
	Storage StorageService
}

func NewService(rep *repository.Repository, engine *livequery.Engine, storage storage.Storage, mailer Mailer, cfg *config.Config) *Service {
	return &Service{
		Auth:    NewAuthService(rep.User, mailer, cfg),
		Feed:    NewFeedService(rep.User, rep.Document, engine),
		Storage: NewStorageService(storage, cfg),
	}
}
