package post

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"Snapfeed/internal/api/middleware"
	"Snapfeed/internal/core/posts"
)

// CommentHandler handles comment creation requests
type CommentHandler struct {
	service posts.Service
}

// NewCommentHandler creates a new comment handler
func NewCommentHandler(service posts.Service) *CommentHandler {
	return &CommentHandler{service: service}
}

// CommentInput is the body of a comment request
type CommentInput struct {
	Text string `json:"text"`
}

// HandleComment handles POST /api/v1/posts/{id}/comments
func (h *CommentHandler) HandleComment(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "AuthRequired", "Authentication required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 64*1024)
	var input CommentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "RequestTooLarge", "Request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "InvalidRequest", "Invalid request body")
		return
	}

	comment, err := h.service.AddComment(r.Context(), chi.URLParam(r, "id"), userID, input.Text)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}
