package posts

import (
	"time"

	"Snapfeed/internal/core/users"
)

// Post is the persisted post record.
// Likes is a set of user ids; Comments is the ordered list of comment ids.
type Post struct {
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
	ID             string    `json:"id" db:"id"`
	Caption        string    `json:"caption" db:"caption"`
	ImageURL       string    `json:"imageUrl" db:"image_url"`
	ImageStorageID string    `json:"imageStorageId" db:"image_storage_id"`
	UserID         string    `json:"user" db:"user_id"`
	Likes          []string  `json:"likes" db:"likes"`
	Comments       []string  `json:"comments"`
}

// Image is the durable location of a post's transcoded image.
type Image struct {
	URL       string `json:"url"`
	StorageID string `json:"id"`
}

// PostView is a post resolved for display: the author summary is embedded
// and comments are expanded with their own author summaries.
type PostView struct {
	CreatedAt time.Time     `json:"createdAt"`
	Image     Image         `json:"image"`
	Author    users.Summary `json:"user"`
	ID        string        `json:"id"`
	Caption   string        `json:"caption"`
	Likes     []string      `json:"likes"`
	Comments  []CommentView `json:"comments"`
}

// CommentView is a comment resolved with its author.
type CommentView struct {
	CreatedAt time.Time     `json:"createdAt"`
	Author    users.Summary `json:"user"`
	ID        string        `json:"id"`
	PostID    string        `json:"post"`
	Text      string        `json:"text"`
}

// PostList is the response for listing every post.
type PostList struct {
	Posts []*PostView `json:"posts"`
	Count int         `json:"postLength"`
}

// ToggleResult reports the state of a like or save relation around a toggle.
type ToggleResult struct {
	// WasActive is the state observed by the toggle before it flipped.
	WasActive bool `json:"wasActive"`
	// Active is the state after the toggle.
	Active bool `json:"active"`
}

// Upload is a raw image as received from the client.
type Upload struct {
	ContentType string
	Data        []byte
}

// CreatePostRequest represents input for creating a new post
type CreatePostRequest struct {
	Image    *Upload `json:"-"`
	Caption  string  `json:"caption"`
	AuthorID string  `json:"-"`
}

// Caption and comment limits, counted in user-perceived characters.
const (
	MaxCaptionLength = 2200
	MaxCommentLength = 1000
)
