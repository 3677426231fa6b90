package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"microfeed/internal/models"
	"microfeed/internal/repository"
	"microfeed/internal/service"
	"microfeed/internal/storage"
	"microfeed/internal/uploader"
)

// ErrorResponse - стандартный ответ с ошибкой
type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// WriteError - универсальная функция для отправки ошибок
func WriteError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

// writeSuccess - функция для успешных ответов
func writeSuccess(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// writeServiceError picks the status for a service error. Messages of known
// errors go to the client unchanged.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken):
		WriteError(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, repository.ErrEmailExists):
		WriteError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, storage.ErrObjectNotFound):
		WriteError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, service.ErrFileTooLarge):
		WriteError(w, err.Error(), http.StatusRequestEntityTooLarge)
	case errors.Is(err, service.ErrWeakPassword),
		errors.Is(err, service.ErrEmptyText),
		errors.Is(err, service.ErrInvalidObject),
		errors.Is(err, uploader.ErrUnknownNamespace),
		errors.Is(err, models.ErrInvalidScope):
		WriteError(w, err.Error(), http.StatusBadRequest)
	default:
		log.Printf("Внутренняя ошибка: %v", err)
		WriteError(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
	}
}
