package events

import (
	"Snapfeed/internal/core/posts"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// msgPublisher is the subset of *nats.Conn the publisher needs.
type msgPublisher interface {
	PublishMsg(msg *nats.Msg) error
}

// NatsPublisher publishes post events to NATS.
// The subject is the event type, optionally prefixed (e.g. "snapfeed.post.created").
type NatsPublisher struct {
	conn          msgPublisher
	subjectPrefix string
}

// NewNatsPublisher creates a publisher on an established connection
func NewNatsPublisher(nc *nats.Conn, subjectPrefix string) *NatsPublisher {
	return &NatsPublisher{conn: nc, subjectPrefix: subjectPrefix}
}

// Subject returns the NATS subject an event type is published on
func (p *NatsPublisher) Subject(eventType posts.EventType) string {
	if p.subjectPrefix == "" {
		return string(eventType)
	}
	return p.subjectPrefix + "." + string(eventType)
}

// Publish implements posts.EventPublisher
func (p *NatsPublisher) Publish(ctx context.Context, event posts.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &nats.Msg{
		Subject: p.Subject(event.Type),
		Data:    data,
		Header:  nats.Header{},
	}
	// Lets JetStream streams drop duplicates if a publish is ever retried.
	msg.Header.Set(nats.MsgIdHdr, uuid.NewString())

	slog.Debug("[POST-EVENTS] publishing event", "subject", msg.Subject, "post_id", event.PostID)

	if err := p.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", msg.Subject, err)
	}
	return nil
}
