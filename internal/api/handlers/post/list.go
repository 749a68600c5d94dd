package post

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"Snapfeed/internal/core/posts"
)

// ListHandler serves the post listings
type ListHandler struct {
	service posts.Service
}

// NewListHandler creates a new list handler
func NewListHandler(service posts.Service) *ListHandler {
	return &ListHandler{service: service}
}

// HandleList handles GET /api/v1/posts
func (h *ListHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListPosts(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// UserPostsResponse is the body of a user's post listing
type UserPostsResponse struct {
	Posts []*posts.PostView `json:"posts"`
}

// HandleListUser handles GET /api/v1/posts/user-post/{id}
func (h *ListHandler) HandleListUser(w http.ResponseWriter, r *http.Request) {
	views, err := h.service.ListUserPosts(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, UserPostsResponse{Posts: views})
}
