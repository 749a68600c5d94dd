package postgres

import (
	"Snapfeed/internal/core/users"
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type postgresUserRepo struct {
	db *sql.DB
}

// NewUserRepository creates a new PostgreSQL user repository
func NewUserRepository(db *sql.DB) users.UserRepository {
	return &postgresUserRepo{db: db}
}

// Create inserts a new user into the users table
func (r *postgresUserRepo) Create(ctx context.Context, req users.CreateUserRequest) (*users.User, error) {
	user := &users.User{
		ID:             uuid.NewString(),
		Name:           req.Name,
		Email:          req.Email,
		Bio:            req.Bio,
		ProfilePicture: req.ProfilePicture,
		Posts:          []string{},
		SavedPosts:     []string{},
	}

	query := `
		INSERT INTO users (id, name, email, bio, profile_picture)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query, user.ID, user.Name, user.Email, user.Bio, user.ProfilePicture).
		Scan(&user.CreatedAt)
	if err != nil {
		if pqCode(err) == pqUniqueViolation {
			return nil, users.ErrEmailAlreadyTaken
		}
		return nil, dbError(ctx, "failed to create user", err)
	}

	return user, nil
}

// GetByID retrieves a user by id, including the post back-references
func (r *postgresUserRepo) GetByID(ctx context.Context, id string) (*users.User, error) {
	query := `
		SELECT id, name, email, bio, profile_picture, password_changed_at,
			posts, saved_posts, created_at
		FROM users
		WHERE id = $1`

	user := &users.User{}
	var passwordChangedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.Name, &user.Email, &user.Bio, &user.ProfilePicture,
		&passwordChangedAt, pq.Array(&user.Posts), pq.Array(&user.SavedPosts), &user.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, users.ErrUserNotFound
	}
	if err != nil {
		return nil, dbError(ctx, fmt.Sprintf("failed to get user %s", id), err)
	}

	if passwordChangedAt.Valid {
		user.PasswordChangedAt = &passwordChangedAt.Time
	}
	if user.Posts == nil {
		user.Posts = []string{}
	}
	if user.SavedPosts == nil {
		user.SavedPosts = []string{}
	}

	return user, nil
}
