package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"microfeed/cmd/app"
	"microfeed/internal/config"
	handlers "microfeed/internal/handler"
	"microfeed/internal/router"
)

func main() {
	// setting up config
	cfg := config.LoadConfig()

	if cfg.JWTSecretKey == "" {
		log.Fatal("JWT_SECRET_KEY не установлен в .env файле")
	}

	a := app.NewApp(cfg)
	defer a.Close()

	handler := handlers.NewHandlers(a.Services, a.DB, cfg)

	addr := fmt.Sprintf(":%d", cfg.ServerPort)
	server := &http.Server{
		Addr:              addr,
		Handler:           router.New(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		// Starting the server
		log.Printf("Сервер запущен на %s", addr)
		log.Printf("База данных: %s", cfg.DB.DbNAME)
		log.Printf("Хранилище: %s/%s", cfg.MinIO.PublicURL, cfg.MinIO.BucketName)

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Ошибка запуска сервера: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Остановка сервера...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// hijacked WebSocket connections are not tracked by Shutdown
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Ошибка остановки сервера: %v", err)
	}
}
