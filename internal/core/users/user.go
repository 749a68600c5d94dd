package users

import (
	"time"
)

// User is an account as seen by the post engine. Registration and
// credentials live elsewhere; this service reads the profile fields and
// maintains the post back-references.
type User struct {
	CreatedAt         time.Time  `json:"createdAt"`
	PasswordChangedAt *time.Time `json:"-"`
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	Email             string     `json:"email"`
	Bio               string     `json:"bio"`
	ProfilePicture    string     `json:"profilePicture"`
	Posts             []string   `json:"posts"`
	SavedPosts        []string   `json:"savePosts"`
}

// Summary is the author projection embedded in post and comment views.
type Summary struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email,omitempty"`
	Bio            string `json:"bio"`
	ProfilePicture string `json:"profilePicture"`
}

// Summary returns the author projection of u.
func (u *User) Summary() Summary {
	return Summary{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		Bio:            u.Bio,
		ProfilePicture: u.ProfilePicture,
	}
}

// TokenPredatesPasswordChange reports whether a token issued at issuedAt was
// minted before the user's last password change and must be rejected.
// Token timestamps have second precision, so the comparison truncates.
func (u *User) TokenPredatesPasswordChange(issuedAt time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return u.PasswordChangedAt.Truncate(time.Second).After(issuedAt.Truncate(time.Second))
}

// CreateUserRequest represents the input for creating a user record
type CreateUserRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Bio            string `json:"bio"`
	ProfilePicture string `json:"profilePicture"`
}
