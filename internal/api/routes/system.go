package routes

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"time"

	"Snapfeed/internal/api/handlers"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// RegisterSystemRoutes registers the health probe and the JSON fallbacks for
// unknown routes and methods.
func RegisterSystemRoutes(r chi.Router, db *sql.DB) {
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			log.Printf("Health check failed: database unreachable: %v", err)
			handlers.WriteError(w, http.StatusServiceUnavailable, "StorageUnavailable", "database unreachable")
			return
		}
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			log.Printf("Failed to write health check response: %v", err)
		}
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		handlers.WriteError(w, http.StatusNotFound, "NotFound", "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		handlers.WriteError(w, http.StatusMethodNotAllowed, "MethodNotAllowed", "method not allowed")
	})
}

// CORSMiddleware allows browser clients from the configured origins to call
// the API with a bearer token.
func CORSMiddleware(allowedOrigins []string) func(next http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
		},
		AllowCredentials: false,
		MaxAge:           300, // 5 minutes
	})
}
