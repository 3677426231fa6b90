package router

import (
	"net/http"

	"github.com/gorilla/mux"

	handlers "microfeed/internal/handler"
	"microfeed/internal/middleware"
)

// New builds the HTTP API. Everything under /api except sign-up, sign-in,
// token refresh and password reset requires an access token.
func New(h *handlers.Handlers) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", h.HealthHandler).Methods(http.MethodGet)

	public := r.PathPrefix("/api/auth").Subrouter()
	public.HandleFunc("/register", h.Register).Methods(http.MethodPost)
	public.HandleFunc("/login", h.Login).Methods(http.MethodPost)
	public.HandleFunc("/refresh-token", h.RefreshToken).Methods(http.MethodPost)
	public.HandleFunc("/password-reset", h.RequestPasswordReset).Methods(http.MethodPost)
	public.HandleFunc("/password-reset/confirm", h.ConfirmPasswordReset).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(mux.MiddlewareFunc(middleware.AuthMiddleware(h.AuthService)))

	api.HandleFunc("/auth/logout", h.Logout).Methods(http.MethodPost)

	api.HandleFunc("/me", h.GetCurrentUser).Methods(http.MethodGet)
	api.HandleFunc("/me/profile", h.UpdateProfile).Methods(http.MethodPut)

	api.HandleFunc("/posts", h.GetPosts).Methods(http.MethodGet)
	api.HandleFunc("/posts", h.CreatePost).Methods(http.MethodPost)
	api.HandleFunc("/posts/{postId}/comments", h.GetComments).Methods(http.MethodGet)
	api.HandleFunc("/posts/{postId}/comments", h.CreateComment).Methods(http.MethodPost)

	api.HandleFunc("/storage/url", h.GetObjectURL).Methods(http.MethodGet)
	api.HandleFunc("/storage/{namespace}/{name}", h.PutObject).Methods(http.MethodPut)

	api.HandleFunc("/live", h.Live).Methods(http.MethodGet)

	return middleware.Chain(r,
		middleware.LoggingMiddleware,
		middleware.CORSMiddleware,
	)
}
