package routes

import (
	"Snapfeed/internal/api/handlers/post"
	"Snapfeed/internal/api/middleware"
	"Snapfeed/internal/core/posts"

	"github.com/go-chi/chi/v5"
)

// RegisterPostRoutes registers the post endpoints on the router.
// Listing is public; everything that acts as a user requires a bearer token.
func RegisterPostRoutes(r chi.Router, service posts.Service, authMiddleware *middleware.JWTAuthMiddleware, maxUploadBytes int64) {
	createHandler := post.NewCreateHandler(service, maxUploadBytes)
	listHandler := post.NewListHandler(service)
	toggleHandler := post.NewToggleHandler(service)
	deleteHandler := post.NewDeleteHandler(service)
	commentHandler := post.NewCommentHandler(service)

	r.Route("/api/v1/posts", func(r chi.Router) {
		r.Get("/", listHandler.HandleList)
		r.Get("/user-post/{id}", listHandler.HandleListUser)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.RequireAuth)

			// multipart/form-data with an "image" file part and a "caption" field
			r.Post("/", createHandler.HandleCreate)

			r.Post("/{id}/save", toggleHandler.HandleSave)
			r.Post("/{id}/like", toggleHandler.HandleLike)
			r.Post("/{id}/comments", commentHandler.HandleComment)

			// Only the author may delete a post
			r.Delete("/{id}", deleteHandler.HandleDelete)
		})
	})
}
