package handlers

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"

	"microfeed/internal/config"
	"microfeed/internal/service"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	HealthCheck() error
}

type Handlers struct {
	AuthService    service.AuthService
	FeedService    service.FeedService
	StorageService service.StorageService
	DB             Pinger
	Cfg            *config.Config
	Validate       *validator.Validate
	Upgrader       websocket.Upgrader
	WriteTimeout   time.Duration
}

func NewHandlers(service *service.Service, db Pinger, config *config.Config) *Handlers {
	return &Handlers{
		AuthService:    service.Auth,
		FeedService:    service.Feed,
		StorageService: service.Storage,
		DB:             db,
		Cfg:            config,
		Validate:       validator.New(),
		Upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// CORS is answered by the HTTP middleware
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		WriteTimeout: 10 * time.Second,
	}
}

func (h *Handlers) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if h.DB != nil {
		if err := h.DB.HealthCheck(); err != nil {
			WriteError(w, "База данных недоступна", http.StatusServiceUnavailable)
			return
		}
	}

	writeSuccess(w, map[string]string{"status": "ok"}, http.StatusOK)
}
