package posts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rivo/uniseg"

	"Snapfeed/internal/core/blobs"
	"Snapfeed/internal/core/media"
)

// discardTimeout bounds cleanup of an orphaned upload after the caller's
// context is already done.
const discardTimeout = 10 * time.Second

type postService struct {
	repo       Repository
	transcoder media.Transcoder
	store      blobs.Store
	events     EventPublisher
	timeout    time.Duration
	now        func() time.Time
}

// NewPostService creates a new post service.
// events may be nil, in which case nothing is published.
func NewPostService(
	repo Repository,
	transcoder media.Transcoder,
	store blobs.Store,
	events EventPublisher,
	cfg Config,
) Service {
	if events == nil {
		events = NoopPublisher{}
	}
	return &postService{
		repo:       repo,
		transcoder: transcoder,
		store:      store,
		events:     events,
		timeout:    cfg.OperationTimeout,
		now:        time.Now,
	}
}

// CreatePost creates a new post
// Flow:
// 1. Require an image and a resolvable author
// 2. Validate the caption
// 3. Transcode the image to the bounded JPEG form
// 4. Upload it to the media store
// 5. Insert the post and append it to the author's posts
// 6. Return the post resolved with the author summary
//
// If step 5 fails the upload is removed best effort. Every upload is its own
// object, so nothing else can refer to it yet.
func (s *postService) CreatePost(ctx context.Context, req CreatePostRequest) (*PostView, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if req.Image == nil || len(req.Image.Data) == 0 {
		return nil, ErrMissingImage
	}
	authorID, err := canonicalID(req.AuthorID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if uniseg.GraphemeClusterCount(req.Caption) > MaxCaptionLength {
		return nil, NewValidationError("caption", fmt.Sprintf("caption must be at most %d characters", MaxCaptionLength))
	}

	author, err := s.repo.GetAuthor(ctx, authorID)
	if err != nil {
		return nil, classify(err)
	}

	img, err := s.transcoder.Transcode(ctx, req.Image.Data)
	if err != nil {
		return nil, classify(err)
	}

	ref, err := s.store.Upload(ctx, img.Data, img.MimeType)
	if err != nil {
		return nil, classify(err)
	}

	post := &Post{
		ID:             uuid.NewString(),
		Caption:        req.Caption,
		ImageURL:       ref.URL,
		ImageStorageID: ref.StorageID,
		UserID:         authorID,
		Likes:          []string{},
		Comments:       []string{},
	}
	if err := s.repo.Create(ctx, post); err != nil {
		s.discardUpload(ctx, post)
		return nil, classify(err)
	}

	slog.Info("[POST-CREATE] post created",
		"post_id", post.ID,
		"user_id", authorID,
		"storage_id", ref.StorageID,
		"width", img.Width,
		"height", img.Height,
	)
	s.publish(ctx, Event{Type: EventPostCreated, PostID: post.ID, ActorID: authorID})

	return &PostView{
		CreatedAt: post.CreatedAt,
		Image:     Image{URL: post.ImageURL, StorageID: post.ImageStorageID},
		Author:    *author,
		ID:        post.ID,
		Caption:   post.Caption,
		Likes:     []string{},
		Comments:  []CommentView{},
	}, nil
}

// ListPosts returns every post newest first
func (s *postService) ListPosts(ctx context.Context) (*PostList, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	views, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, classify(err)
	}
	return &PostList{Posts: views, Count: len(views)}, nil
}

// ListUserPosts returns a user's posts by querying on ownership.
// An unknown user is an error rather than an empty list.
func (s *postService) ListUserPosts(ctx context.Context, userID string) ([]*PostView, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	id, err := canonicalID(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if _, err := s.repo.GetAuthor(ctx, id); err != nil {
		return nil, classify(err)
	}

	views, err := s.repo.ListByUser(ctx, id)
	if err != nil {
		return nil, classify(err)
	}
	return views, nil
}

// ToggleSave flips the saved relation between a user and a post
func (s *postService) ToggleSave(ctx context.Context, userID, postID string) (*ToggleResult, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	uid, err := canonicalID(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	pid, err := canonicalID(postID)
	if err != nil {
		return nil, ErrPostNotFound
	}

	wasSaved, err := s.repo.ToggleSave(ctx, uid, pid)
	if err != nil {
		return nil, classify(err)
	}
	return &ToggleResult{WasActive: wasSaved, Active: !wasSaved}, nil
}

// ToggleLike flips the liked relation between a user and a post
func (s *postService) ToggleLike(ctx context.Context, postID, userID string) (*ToggleResult, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	pid, err := canonicalID(postID)
	if err != nil {
		return nil, ErrPostNotFound
	}
	uid, err := canonicalID(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	wasLiked, err := s.repo.ToggleLike(ctx, pid, uid)
	if err != nil {
		return nil, classify(err)
	}

	eventType := EventPostLiked
	if wasLiked {
		eventType = EventPostUnliked
	}
	s.publish(ctx, Event{Type: eventType, PostID: pid, ActorID: uid})

	return &ToggleResult{WasActive: wasLiked, Active: !wasLiked}, nil
}

// AddComment validates the text and appends a comment to the post
func (s *postService) AddComment(ctx context.Context, postID, userID, text string) (*CommentView, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	pid, err := canonicalID(postID)
	if err != nil {
		return nil, ErrPostNotFound
	}
	uid, err := canonicalID(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	text = strings.TrimSpace(text)
	if verr := validateCommentText(text); verr != nil {
		// A missing post is reported ahead of bad input
		if _, err := s.repo.GetByID(ctx, pid); err != nil {
			return nil, classify(err)
		}
		return nil, verr
	}

	comment, err := s.repo.AddComment(ctx, pid, uid, text)
	if err != nil {
		return nil, classify(err)
	}

	s.publish(ctx, Event{Type: EventPostCommented, PostID: pid, ActorID: uid, CommentID: comment.ID})
	return comment, nil
}

// DeletePost deletes a post owned by the requester
// Flow:
// 1. Load the post and check ownership
// 2. Delete the remote image (best effort, failures are logged)
// 3. Delete the records in one transaction: owner back-reference, saved
//    references, comments, then the post itself
//
// The repository re-checks ownership under a row lock, so a concurrent
// ownership race cannot slip past step 1. Every step tolerates having already
// run, so a failed delete can be retried until it converges.
func (s *postService) DeletePost(ctx context.Context, postID, requesterID string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	pid, err := canonicalID(postID)
	if err != nil {
		return ErrPostNotFound
	}
	rid, err := canonicalID(requesterID)
	if err != nil {
		return ErrUserNotFound
	}

	post, err := s.repo.GetByID(ctx, pid)
	if err != nil {
		return classify(err)
	}
	if post.UserID != rid {
		slog.Warn("[POST-DELETE] rejected delete by non-owner", "post_id", pid, "requester_id", rid)
		return ErrForbidden
	}

	s.releaseImage(ctx, post)

	if err := s.repo.Delete(ctx, pid, rid); err != nil {
		return classify(err)
	}

	slog.Info("[POST-DELETE] post deleted", "post_id", pid, "user_id", rid)
	s.publish(ctx, Event{Type: EventPostDeleted, PostID: pid, ActorID: rid})
	return nil
}

// releaseImage deletes the post's remote object. The object belongs to this
// post alone, so no other post can lose its image.
func (s *postService) releaseImage(ctx context.Context, post *Post) {
	if post.ImageStorageID == "" {
		return
	}
	if err := s.store.Delete(ctx, post.ImageStorageID); err != nil {
		slog.Warn("[POST-DELETE] failed to delete remote image",
			"post_id", post.ID, "storage_id", post.ImageStorageID, "error", err)
	}
}

// discardUpload removes an object uploaded for a post whose record was never
// written. It runs on a fresh deadline since the failure that brought us here
// may have been the caller's own.
func (s *postService) discardUpload(ctx context.Context, post *Post) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), discardTimeout)
	defer cancel()

	if err := s.store.Delete(ctx, post.ImageStorageID); err != nil {
		slog.Warn("[POST-CREATE] failed to discard orphaned upload",
			"storage_id", post.ImageStorageID, "error", err)
	}
}

func validateCommentText(text string) error {
	if text == "" {
		return NewValidationError("text", "comment text is required")
	}
	if uniseg.GraphemeClusterCount(text) > MaxCommentLength {
		return NewValidationError("text", fmt.Sprintf("comment must be at most %d characters", MaxCommentLength))
	}
	return nil
}

func (s *postService) publish(ctx context.Context, event Event) {
	event.OccurredAt = s.now().UTC()
	if err := s.events.Publish(context.WithoutCancel(ctx), event); err != nil {
		slog.Warn("[POST-EVENTS] failed to publish event",
			"type", event.Type, "post_id", event.PostID, "error", err)
	}
}

func (s *postService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

// canonicalID parses a uuid and returns its canonical lowercase form, so ids
// from tokens and paths compare equal to ids read from the store.
func canonicalID(id string) (string, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", err
	}
	return parsed.String(), nil
}

// classify reports deadline expiry from any collaborator as ErrTimeout while
// keeping the original error in the chain.
func classify(err error) error {
	if err == nil || errors.Is(err, ErrTimeout) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return err
}
