package postgres

import (
	"Snapfeed/internal/core/posts"
	"Snapfeed/internal/core/users"
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type postgresPostRepo struct {
	db *sql.DB
}

// NewPostRepository creates a new PostgreSQL post repository
func NewPostRepository(db *sql.DB) posts.Repository {
	return &postgresPostRepo{db: db}
}

// Create inserts a new post and appends it to its owner's posts.
// Both writes share one transaction, post first.
func (r *postgresPostRepo) Create(ctx context.Context, post *posts.Post) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return dbError(ctx, "failed to begin transaction", err)
	}
	defer rollback(tx)

	insertQuery := `
		INSERT INTO posts (id, caption, image_url, image_storage_id, user_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	err = tx.QueryRowContext(ctx, insertQuery,
		post.ID, post.Caption, post.ImageURL, post.ImageStorageID, post.UserID,
	).Scan(&post.CreatedAt)
	if err != nil {
		if pqCode(err) == pqForeignKeyViolation {
			return users.ErrUserNotFound
		}
		return dbError(ctx, "failed to insert post", err)
	}

	appendQuery := `
		UPDATE users
		SET posts = array_append(posts, $2::uuid)
		WHERE id = $1`

	result, err := tx.ExecContext(ctx, appendQuery, post.UserID, post.ID)
	if err != nil {
		return dbError(ctx, "failed to append post to owner", err)
	}
	if rows, err := result.RowsAffected(); err != nil {
		return dbError(ctx, "failed to check append result", err)
	} else if rows == 0 {
		return users.ErrUserNotFound
	}

	if err := tx.Commit(); err != nil {
		return dbError(ctx, "failed to commit transaction", err)
	}

	if post.Likes == nil {
		post.Likes = []string{}
	}
	if post.Comments == nil {
		post.Comments = []string{}
	}
	return nil
}

// GetByID retrieves a post record with its comment ids in order
func (r *postgresPostRepo) GetByID(ctx context.Context, id string) (*posts.Post, error) {
	query := `
		SELECT
			p.id, p.caption, p.image_url, p.image_storage_id, p.user_id, p.likes, p.created_at,
			ARRAY(SELECT c.id FROM comments c WHERE c.post_id = p.id ORDER BY c.created_at, c.id)
		FROM posts p
		WHERE p.id = $1`

	var post posts.Post
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&post.ID, &post.Caption, &post.ImageURL, &post.ImageStorageID, &post.UserID,
		pq.Array(&post.Likes), &post.CreatedAt, pq.Array(&post.Comments),
	)
	if err == sql.ErrNoRows {
		return nil, posts.ErrPostNotFound
	}
	if err != nil {
		return nil, dbError(ctx, "failed to get post", err)
	}

	if post.Likes == nil {
		post.Likes = []string{}
	}
	if post.Comments == nil {
		post.Comments = []string{}
	}
	return &post, nil
}

// GetAuthor returns the author summary for a user
func (r *postgresPostRepo) GetAuthor(ctx context.Context, userID string) (*users.Summary, error) {
	query := `SELECT id, name, email, bio, profile_picture FROM users WHERE id = $1`

	var author users.Summary
	err := r.db.QueryRowContext(ctx, query, userID).
		Scan(&author.ID, &author.Name, &author.Email, &author.Bio, &author.ProfilePicture)
	if err == sql.ErrNoRows {
		return nil, users.ErrUserNotFound
	}
	if err != nil {
		return nil, dbError(ctx, "failed to get author", err)
	}
	return &author, nil
}

// ListAll returns every post, newest first, with authors and comments resolved
func (r *postgresPostRepo) ListAll(ctx context.Context) ([]*posts.PostView, error) {
	return r.listViews(ctx, "", nil)
}

// ListByUser returns a user's posts by querying on ownership, newest first
func (r *postgresPostRepo) ListByUser(ctx context.Context, userID string) ([]*posts.PostView, error) {
	return r.listViews(ctx, "WHERE p.user_id = $1", []interface{}{userID})
}

// listViews reads posts and their comments from one snapshot, so a comment
// added between the two queries can't appear without its post or vice versa.
func (r *postgresPostRepo) listViews(ctx context.Context, where string, args []interface{}) ([]*posts.PostView, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, dbError(ctx, "failed to begin transaction", err)
	}
	defer rollback(tx)

	query := fmt.Sprintf(`
		SELECT
			p.id, p.caption, p.image_url, p.image_storage_id, p.likes, p.created_at,
			u.id, u.name, u.email, u.bio, u.profile_picture
		FROM posts p
		INNER JOIN users u ON u.id = p.user_id
		%s
		ORDER BY p.created_at DESC, p.id DESC`, where)

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, dbError(ctx, "failed to list posts", err)
	}

	views := []*posts.PostView{}
	byID := make(map[string]*posts.PostView)
	postIDs := []string{}
	for rows.Next() {
		view := &posts.PostView{Comments: []posts.CommentView{}}
		if err := rows.Scan(
			&view.ID, &view.Caption, &view.Image.URL, &view.Image.StorageID,
			pq.Array(&view.Likes), &view.CreatedAt,
			&view.Author.ID, &view.Author.Name, &view.Author.Email, &view.Author.Bio, &view.Author.ProfilePicture,
		); err != nil {
			_ = rows.Close()
			return nil, dbError(ctx, "failed to scan post", err)
		}
		if view.Likes == nil {
			view.Likes = []string{}
		}
		views = append(views, view)
		byID[view.ID] = view
		postIDs = append(postIDs, view.ID)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, dbError(ctx, "failed to iterate posts", err)
	}
	_ = rows.Close()

	if len(postIDs) == 0 {
		return views, nil
	}

	commentQuery := `
		SELECT
			c.id, c.post_id, c.text, c.created_at,
			u.id, u.name, u.email, u.bio, u.profile_picture
		FROM comments c
		INNER JOIN users u ON u.id = c.user_id
		WHERE c.post_id = ANY($1::uuid[])
		ORDER BY c.created_at, c.id`

	commentRows, err := tx.QueryContext(ctx, commentQuery, pq.Array(postIDs))
	if err != nil {
		return nil, dbError(ctx, "failed to list comments", err)
	}
	defer func() { _ = commentRows.Close() }()

	for commentRows.Next() {
		var c posts.CommentView
		if err := commentRows.Scan(
			&c.ID, &c.PostID, &c.Text, &c.CreatedAt,
			&c.Author.ID, &c.Author.Name, &c.Author.Email, &c.Author.Bio, &c.Author.ProfilePicture,
		); err != nil {
			return nil, dbError(ctx, "failed to scan comment", err)
		}
		if view, ok := byID[c.PostID]; ok {
			view.Comments = append(view.Comments, c)
		}
	}
	if err := commentRows.Err(); err != nil {
		return nil, dbError(ctx, "failed to iterate comments", err)
	}

	return views, nil
}

// ToggleLike flips the user's membership in the post's likes in a single
// statement. Under READ COMMITTED a concurrent toggle waits on the row lock
// and re-evaluates the CASE against the committed row, so no toggle is lost.
func (r *postgresPostRepo) ToggleLike(ctx context.Context, postID, userID string) (bool, error) {
	query := `
		UPDATE posts
		SET likes = CASE
			WHEN $2::uuid = ANY(likes) THEN array_remove(likes, $2::uuid)
			ELSE array_append(likes, $2::uuid)
		END
		WHERE id = $1
		RETURNING NOT ($2::uuid = ANY(likes))`

	var wasLiked bool
	err := r.db.QueryRowContext(ctx, query, postID, userID).Scan(&wasLiked)
	if err == sql.ErrNoRows {
		return false, posts.ErrPostNotFound
	}
	if err != nil {
		return false, dbError(ctx, "failed to toggle like", err)
	}
	return wasLiked, nil
}

// ToggleSave flips the post's membership in the user's saved posts in a
// single statement. The post row is share-locked so a save can't slip in
// behind a delete that has already cleared saved references.
func (r *postgresPostRepo) ToggleSave(ctx context.Context, userID, postID string) (bool, error) {
	query := `
		WITH target AS (
			SELECT id FROM posts WHERE id = $2 FOR SHARE
		)
		UPDATE users u
		SET saved_posts = CASE
			WHEN $2::uuid = ANY(u.saved_posts) THEN array_remove(u.saved_posts, $2::uuid)
			ELSE array_append(u.saved_posts, $2::uuid)
		END
		FROM target
		WHERE u.id = $1
		RETURNING NOT ($2::uuid = ANY(u.saved_posts))`

	var wasSaved bool
	err := r.db.QueryRowContext(ctx, query, userID, postID).Scan(&wasSaved)
	if err == sql.ErrNoRows {
		return false, r.missingSaveTarget(ctx, userID)
	}
	if err != nil {
		return false, dbError(ctx, "failed to toggle save", err)
	}
	return wasSaved, nil
}

// missingSaveTarget works out which side of a save toggle did not resolve.
func (r *postgresPostRepo) missingSaveTarget(ctx context.Context, userID string) error {
	var userExists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&userExists)
	if err != nil {
		return dbError(ctx, "failed to check user", err)
	}
	if !userExists {
		return users.ErrUserNotFound
	}
	return posts.ErrPostNotFound
}

// AddComment inserts a comment on an existing post and returns it with its
// author resolved. The post is share-locked for the insert.
func (r *postgresPostRepo) AddComment(ctx context.Context, postID, userID, text string) (*posts.CommentView, error) {
	// No post row means no insert, so a missing post wins over a blank text
	query := `
		WITH target AS (
			SELECT id FROM posts WHERE id = $2 FOR SHARE
		), inserted AS (
			INSERT INTO comments (id, post_id, user_id, text)
			SELECT $1::uuid, target.id, $3::uuid, $4::text FROM target
			RETURNING id, post_id, user_id, text, created_at
		)
		SELECT
			i.id, i.post_id, i.text, i.created_at,
			u.id, u.name, u.email, u.bio, u.profile_picture
		FROM inserted i
		INNER JOIN users u ON u.id = i.user_id`

	var c posts.CommentView
	err := r.db.QueryRowContext(ctx, query, uuid.NewString(), postID, userID, text).Scan(
		&c.ID, &c.PostID, &c.Text, &c.CreatedAt,
		&c.Author.ID, &c.Author.Name, &c.Author.Email, &c.Author.Bio, &c.Author.ProfilePicture,
	)
	if err == sql.ErrNoRows {
		return nil, posts.ErrPostNotFound
	}
	if err != nil {
		switch pqCode(err) {
		case pqForeignKeyViolation:
			return nil, users.ErrUserNotFound
		case pqCheckViolation:
			return nil, posts.NewValidationError("text", "comment text is required")
		}
		return nil, dbError(ctx, "failed to add comment", err)
	}
	return &c, nil
}

// Delete removes a post and every reference to it in one transaction.
// Order:
// 1. Lock the post and verify ownership (nothing is written otherwise)
// 2. Remove it from the owner's posts
// 3. Remove it from every user's saved posts
// 4. Delete its comments
// 5. Delete the post record
func (r *postgresPostRepo) Delete(ctx context.Context, postID, requesterID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return dbError(ctx, "failed to begin transaction", err)
	}
	defer rollback(tx)

	var ownerID string
	var isOwner bool
	err = tx.QueryRowContext(ctx,
		`SELECT user_id, user_id = $2::uuid FROM posts WHERE id = $1 FOR UPDATE`,
		postID, requesterID,
	).Scan(&ownerID, &isOwner)
	if err == sql.ErrNoRows {
		return posts.ErrPostNotFound
	}
	if err != nil {
		return dbError(ctx, "failed to lock post", err)
	}
	if !isOwner {
		return posts.ErrForbidden
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE users SET posts = array_remove(posts, $2::uuid) WHERE id = $1`,
		ownerID, postID)
	if err != nil {
		return dbError(ctx, "failed to remove post from owner", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE users SET saved_posts = array_remove(saved_posts, $1::uuid) WHERE saved_posts @> ARRAY[$1::uuid]`,
		postID)
	if err != nil {
		return dbError(ctx, "failed to remove saved references", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM comments WHERE post_id = $1`, postID); err != nil {
		return dbError(ctx, "failed to delete comments", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, postID); err != nil {
		return dbError(ctx, "failed to delete post", err)
	}

	if err := tx.Commit(); err != nil {
		return dbError(ctx, "failed to commit transaction", err)
	}
	return nil
}

// ReconcileUserPosts rewrites a user's posts array from the posts table
func (r *postgresPostRepo) ReconcileUserPosts(ctx context.Context, userID string) error {
	query := `
		UPDATE users u
		SET posts = ARRAY(
			SELECT p.id FROM posts p WHERE p.user_id = u.id ORDER BY p.created_at, p.id
		)
		WHERE u.id = $1`

	result, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return dbError(ctx, "failed to reconcile user posts", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return dbError(ctx, "failed to check reconcile result", err)
	}
	if rows == 0 {
		return users.ErrUserNotFound
	}
	return nil
}

// ReconcileAllUserPosts rewrites every user's posts array whose contents
// drifted from the posts table, and returns how many users were corrected.
func (r *postgresPostRepo) ReconcileAllUserPosts(ctx context.Context) (int, error) {
	query := `
		UPDATE users u
		SET posts = derived.posts
		FROM (
			SELECT u2.id, ARRAY(
				SELECT p.id FROM posts p WHERE p.user_id = u2.id ORDER BY p.created_at, p.id
			) AS posts
			FROM users u2
		) derived
		WHERE u.id = derived.id AND u.posts IS DISTINCT FROM derived.posts`

	result, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, dbError(ctx, "failed to reconcile posts", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, dbError(ctx, "failed to check reconcile result", err)
	}
	return int(rows), nil
}
