package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"microfeed/internal/models"
)

func (h *Handlers) writeSnapshot(w http.ResponseWriter, r *http.Request, scope models.Scope) {
	snap, err := h.FeedService.Snapshot(r.Context(), scope)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeSuccess(w, snap, http.StatusOK)
}

func (h *Handlers) GetPosts(w http.ResponseWriter, r *http.Request) {
	h.writeSnapshot(w, r, models.PostsScope())
}

func (h *Handlers) GetComments(w http.ResponseWriter, r *http.Request) {
	h.writeSnapshot(w, r, models.CommentsScope(mux.Vars(r)["postId"]))
}

func (h *Handlers) CreatePost(w http.ResponseWriter, r *http.Request) {
	authorID, ok := UserIDFromContext(r.Context())
	if !ok {
		WriteError(w, "Требуется авторизация", http.StatusUnauthorized)
		return
	}

	var req models.CreatePostRequest
	if !h.decodeRequest(w, r, &req) {
		return
	}

	doc, err := h.FeedService.CreatePost(r.Context(), authorID, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeSuccess(w, doc, http.StatusCreated)
}

func (h *Handlers) CreateComment(w http.ResponseWriter, r *http.Request) {
	authorID, ok := UserIDFromContext(r.Context())
	if !ok {
		WriteError(w, "Требуется авторизация", http.StatusUnauthorized)
		return
	}

	var req models.CreateCommentRequest
	if !h.decodeRequest(w, r, &req) {
		return
	}

	doc, err := h.FeedService.CreateComment(r.Context(), authorID, mux.Vars(r)["postId"], req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeSuccess(w, doc, http.StatusCreated)
}
