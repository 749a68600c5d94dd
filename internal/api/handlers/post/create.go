package post

import (
	"errors"
	"io"
	"log"
	"net/http"

	"Snapfeed/internal/api/middleware"
	"Snapfeed/internal/core/posts"
)

// multipartOverhead covers form fields and part headers on top of the image.
const multipartOverhead = 1 << 20

// CreateHandler handles post creation requests
type CreateHandler struct {
	service        posts.Service
	maxUploadBytes int64
}

// NewCreateHandler creates a new create handler.
// maxUploadBytes bounds the image part; larger uploads are rejected by the
// transcoder as invalid images, and bodies far beyond it are cut off here.
func NewCreateHandler(service posts.Service, maxUploadBytes int64) *CreateHandler {
	return &CreateHandler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
	}
}

// HandleCreate handles POST /api/v1/posts
// Multipart form: "image" (file, required), "caption" (text, optional)
func (h *CreateHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "AuthRequired", "Authentication required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartOverhead)
	err := r.ParseMultipartForm(h.maxUploadBytes + 1)
	switch {
	case err == nil:
		defer func() {
			if err := r.MultipartForm.RemoveAll(); err != nil {
				log.Printf("Failed to remove multipart temp files: %v", err)
			}
		}()
	case errors.Is(err, http.ErrNotMultipart):
		// No form at all means no image; the service reports MissingImage.
	default:
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "RequestTooLarge", "Request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "InvalidRequest", "Malformed multipart/form-data body")
		return
	}

	req := posts.CreatePostRequest{
		Caption:  r.FormValue("caption"),
		AuthorID: userID,
	}

	if r.MultipartForm != nil {
		image, err := readImage(r, h.maxUploadBytes)
		if err != nil {
			writeError(w, http.StatusBadRequest, "InvalidRequest", "Failed to read image upload")
			return
		}
		req.Image = image
	}

	view, err := h.service.CreatePost(r.Context(), req)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, view)
}

// readImage returns the "image" part, or nil if the form has none.
// At most maxBytes+1 bytes are read so the transcoder can tell an oversized
// upload from one exactly at the limit.
func readImage(r *http.Request, maxBytes int64) (*posts.Upload, error) {
	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		return nil, err
	}
	return &posts.Upload{
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
