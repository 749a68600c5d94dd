package post

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"Snapfeed/internal/api/middleware"
	"Snapfeed/internal/core/posts"
)

// ToggleHandler handles the like and save toggles
type ToggleHandler struct {
	service posts.Service
}

// NewToggleHandler creates a new toggle handler
func NewToggleHandler(service posts.Service) *ToggleHandler {
	return &ToggleHandler{service: service}
}

// LikeResponse reports the like state after a toggle
type LikeResponse struct {
	Liked           bool `json:"liked"`
	WasAlreadyLiked bool `json:"wasAlreadyLiked"`
}

// SaveResponse reports the save state after a toggle
type SaveResponse struct {
	Saved           bool `json:"saved"`
	WasAlreadySaved bool `json:"wasAlreadySaved"`
}

// HandleLike handles POST /api/v1/posts/{id}/like
func (h *ToggleHandler) HandleLike(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "AuthRequired", "Authentication required")
		return
	}

	result, err := h.service.ToggleLike(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, LikeResponse{Liked: result.Active, WasAlreadyLiked: result.WasActive})
}

// HandleSave handles POST /api/v1/posts/{id}/save
func (h *ToggleHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "AuthRequired", "Authentication required")
		return
	}

	result, err := h.service.ToggleSave(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SaveResponse{Saved: result.Active, WasAlreadySaved: result.WasActive})
}
