package post

import (
	"log"
	"net/http"

	"Snapfeed/internal/api/handlers"
	"Snapfeed/internal/core/posts"
)

func writeError(w http.ResponseWriter, statusCode int, errorType, message string) {
	handlers.WriteError(w, statusCode, errorType, message)
}

func writeJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	handlers.WriteJSON(w, statusCode, body)
}

// handleServiceError maps service errors to HTTP responses
func handleServiceError(w http.ResponseWriter, err error) {
	kind, status, message := posts.Describe(err)
	switch status {
	case http.StatusInternalServerError:
		// Don't leak internal error details to clients
		log.Printf("Unexpected error in post handler: %v", err)
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		log.Printf("[POST-HANDLER] %s: %v", kind, err)
	}
	writeError(w, status, kind, message)
}
