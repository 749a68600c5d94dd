package posts

import (
	"context"
	"time"
)

// EventType names a post lifecycle event.
type EventType string

const (
	EventPostCreated   EventType = "post.created"
	EventPostDeleted   EventType = "post.deleted"
	EventPostLiked     EventType = "post.liked"
	EventPostUnliked   EventType = "post.unliked"
	EventPostCommented EventType = "post.commented"
)

// Event is published after a successful mutation.
type Event struct {
	OccurredAt time.Time `json:"occurredAt"`
	Type       EventType `json:"type"`
	PostID     string    `json:"postId"`
	ActorID    string    `json:"actorId"`
	CommentID  string    `json:"commentId,omitempty"`
}

// EventPublisher delivers events to interested consumers.
// Delivery is fire-and-forget; a failed publish never fails the operation.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// NoopPublisher discards every event.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }
