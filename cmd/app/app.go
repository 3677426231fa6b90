package app

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"microfeed/internal/broker"
	"microfeed/internal/config"
	"microfeed/internal/database"
	"microfeed/internal/livequery"
	"microfeed/internal/repository"
	"microfeed/internal/service"
	"microfeed/internal/storage"
)

// App holds the connections of the API process.
type App struct {
	DB       *database.DB
	Redis    *redis.Client
	Repo     *repository.Repository
	Engine   *livequery.Engine
	Services *service.Service
}

func NewApp(cfg *config.Config) *App {
	// connection DB
	db, err := database.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("Не удалось подключиться к БД: %v", err)
	}

	// connection MinIO
	minioClient, err := storage.NewMinIOClient(cfg.MinIO)
	if err != nil {
		log.Fatalf("Не удалось инициализировать MinIO: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := minioClient.EnsureBucket(ctx, cfg.MinIO.Region); err != nil {
		log.Fatalf("Не удалось подготовить бакет %s: %v", cfg.MinIO.BucketName, err)
	}

	// change notifications
	a := &App{DB: db}

	var changes livequery.Broker
	if cfg.RedisURL != "" {
		a.Redis, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Не удалось подключиться к Redis: %v", err)
		}
		changes = broker.NewRedis(a.Redis)
	} else {
		log.Println("REDIS_URL не задан, изменения рассылаются внутри процесса")
		changes = broker.NewLocal()
	}

	// enabling dependencies
	a.Repo = repository.NewRepository(db.DB, cfg.LiveQueryLimit)
	a.Engine = livequery.NewEngine(a.Repo.Document, changes)
	a.Services = service.NewService(a.Repo, a.Engine, minioClient, service.LogMailer{}, cfg)

	return a
}

func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			log.Printf("Ошибка закрытия Redis: %v", err)
		}
	}

	if err := a.DB.CloseDB(); err != nil {
		log.Printf("Ошибка закрытия БД: %v", err)
	}
}
