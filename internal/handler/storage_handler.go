package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

type ObjectResponse struct {
	Key string `json:"key"`
}

type URLResponse struct {
	URL string `json:"url"`
}

// PutObject stores the raw request body under {namespace}/{name}.
func (h *Handlers) PutObject(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	r.Body = http.MaxBytesReader(w, r.Body, h.Cfg.MaxUploadSize+1)

	key, err := h.StorageService.Put(r.Context(), vars["namespace"], vars["name"], r.Body)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeSuccess(w, ObjectResponse{Key: key}, http.StatusCreated)
}

func (h *Handlers) GetObjectURL(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		WriteError(w, "Отсутствует параметр key", http.StatusBadRequest)
		return
	}

	url, err := h.StorageService.URL(r.Context(), key)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeSuccess(w, URLResponse{URL: url}, http.StatusOK)
}
