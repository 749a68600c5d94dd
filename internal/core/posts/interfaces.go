package posts

import (
	"context"

	"Snapfeed/internal/core/users"
)

// Service defines the business logic interface for posts.
// Actor ids are supplied by the caller after authentication.
type Service interface {
	// CreatePost transcodes and uploads the image, then records the post.
	// Flow: Validate -> Resolve author -> Transcode -> Upload -> Create record
	CreatePost(ctx context.Context, req CreatePostRequest) (*PostView, error)

	// ListPosts returns every post, newest first, with the total count.
	ListPosts(ctx context.Context) (*PostList, error)

	// ListUserPosts returns the posts owned by userID, newest first.
	ListUserPosts(ctx context.Context, userID string) ([]*PostView, error)

	// ToggleSave flips whether userID has saved postID.
	ToggleSave(ctx context.Context, userID, postID string) (*ToggleResult, error)

	// DeletePost removes a post and everything that references it.
	// Only the owner may delete.
	DeletePost(ctx context.Context, postID, requesterID string) error

	// ToggleLike flips whether userID likes postID.
	ToggleLike(ctx context.Context, postID, userID string) (*ToggleResult, error)

	// AddComment appends a comment by userID to postID.
	AddComment(ctx context.Context, postID, userID, text string) (*CommentView, error)
}

// Repository defines the data access interface for posts and the
// post-relationship fields of users. Each method is atomic on its own.
type Repository interface {
	// Create inserts the post and appends its id to the owner's posts in one
	// transaction. CreatedAt is filled in from the store.
	Create(ctx context.Context, post *Post) error

	// GetByID retrieves a post record
	GetByID(ctx context.Context, id string) (*Post, error)

	// GetAuthor returns the summary embedded in views for userID
	GetAuthor(ctx context.Context, userID string) (*users.Summary, error)

	// ListAll returns every post view, newest first
	ListAll(ctx context.Context) ([]*PostView, error)

	// ListByUser queries posts by owner, newest first. The user's posts
	// array is not consulted.
	ListByUser(ctx context.Context, userID string) ([]*PostView, error)

	// ToggleSave adds postID to the user's saved posts if absent, removes it
	// if present, in a single statement. Returns the state before the flip.
	ToggleSave(ctx context.Context, userID, postID string) (wasAlreadySaved bool, err error)

	// ToggleLike is the symmetric toggle on the post's likes.
	ToggleLike(ctx context.Context, postID, userID string) (wasAlreadyLiked bool, err error)

	// AddComment inserts a comment and returns it resolved with its author
	AddComment(ctx context.Context, postID, userID, text string) (*CommentView, error)

	// Delete removes the post if requesterID owns it: owner back-reference,
	// saved references, comments, then the record itself, in one transaction.
	Delete(ctx context.Context, postID, requesterID string) error

	// ReconcileUserPosts rebuilds userID's posts array from the posts table
	ReconcileUserPosts(ctx context.Context, userID string) error

	// ReconcileAllUserPosts rebuilds every user's posts array and returns how
	// many users changed
	ReconcileAllUserPosts(ctx context.Context) (int, error)
}
