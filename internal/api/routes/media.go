package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterMediaRoutes serves locally stored images under /media.
// Only used when the disk-backed media store is configured; a remote store
// serves its own public URLs.
//
// Route: GET /media/{storageID}
func RegisterMediaRoutes(r chi.Router, files http.Handler) {
	r.Handle("/media/*", http.StripPrefix("/media", files))
}
