package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/postboard/internal/apperror"
	"github.com/sakif/postboard/internal/auth"
	"github.com/sakif/postboard/internal/model"
)

// FeedService is what PostHandler needs from service.PostService.
type FeedService interface {
	List(ctx context.Context) ([]model.AuthoredPost, error)
	Create(ctx context.Context, userID, content string) (*model.AuthoredPost, error)
	Delete(ctx context.Context, postID, userID string) error
}

// PostHandler serves the feed.
type PostHandler struct {
	posts  FeedService
	logger *slog.Logger
}

func NewPostHandler(posts FeedService, logger *slog.Logger) *PostHandler {
	return &PostHandler{posts: posts, logger: logger}
}

type postsResponse struct {
	Posts []model.AuthoredPost `json:"posts"`
}

type postResponse struct {
	Post *model.AuthoredPost `json:"post"`
}

// HandleList returns every post, newest first. Public.
//
// HTTP: GET /api/posts
func (h *PostHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.List(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, postsResponse{Posts: posts})
}

// HandleCreate publishes a post as the logged-in user.
//
// HTTP: POST /api/posts {content} (behind RequireAuth)
func (h *PostHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, apperror.Unauthenticated("Not authenticated"))
		return
	}

	var req createPostRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	post, err := h.posts.Create(r.Context(), userID, req.Content)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, postResponse{Post: post})
}

// HandleDelete removes one of the caller's own posts.
//
// HTTP: DELETE /api/posts/{id} (behind RequireAuth)
func (h *PostHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, apperror.Unauthenticated("Not authenticated"))
		return
	}

	if err := h.posts.Delete(r.Context(), chi.URLParam(r, "id"), userID); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, OKResponse{OK: true})
}
