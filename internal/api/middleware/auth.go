package middleware

import (
	"Snapfeed/internal/core/users"
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Context keys for storing user information
type contextKey string

const (
	UserIDKey contextKey = "user_id"
	UserKey   contextKey = "user"
)

// JWTAuthMiddleware enforces bearer token authentication for protected routes.
// Tokens are HS256 JWTs whose subject is the user id.
type JWTAuthMiddleware struct {
	users  users.Service
	secret []byte
}

// NewJWTAuthMiddleware creates a new auth middleware
func NewJWTAuthMiddleware(secret []byte, userService users.Service) *JWTAuthMiddleware {
	return &JWTAuthMiddleware{
		users:  userService,
		secret: secret,
	}
}

// RequireAuth middleware ensures the user is authenticated with a valid JWT
// If not authenticated, returns 401
// If the token's user no longer exists, returns 404
// If authenticated, injects user id and user into context
func (m *JWTAuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeAuthError(w, "Missing Authorization header")
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			writeAuthError(w, "Invalid Authorization header format. Expected: Bearer <token>")
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

		claims, err := m.parseToken(token)
		if err != nil {
			log.Printf("[AUTH_FAILURE] type=verification_failed ip=%s method=%s path=%s error=%v",
				r.RemoteAddr, r.Method, r.URL.Path, err)
			writeAuthError(w, "Invalid or expired token")
			return
		}

		if claims.Subject == "" {
			writeAuthError(w, "Missing user id in token")
			return
		}

		user, err := m.users.GetUser(r.Context(), claims.Subject)
		if err != nil {
			if errors.Is(err, users.ErrUserNotFound) {
				writeJSONError(w, http.StatusNotFound, "UserNotFound", "User not found")
				return
			}
			log.Printf("[AUTH_FAILURE] type=user_lookup_failed path=%s error=%v", r.URL.Path, err)
			writeJSONError(w, http.StatusInternalServerError, "InternalServerError", "An internal error occurred")
			return
		}

		if claims.IssuedAt != nil && user.TokenPredatesPasswordChange(claims.IssuedAt.Time) {
			log.Printf("[AUTH_FAILURE] type=stale_token user=%s path=%s", user.ID, r.URL.Path)
			writeAuthError(w, "Password recently changed. Please log in again")
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, user.ID)
		ctx = context.WithValue(ctx, UserKey, user)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// parseToken verifies the signature and standard time claims
func (m *JWTAuthMiddleware) parseToken(token string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (interface{}, error) {
			return m.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// GetUserID extracts the authenticated user's id from the request context
// Returns empty string if not authenticated
func GetUserID(r *http.Request) string {
	id, _ := r.Context().Value(UserIDKey).(string)
	return id
}

// GetUser extracts the authenticated user from the request context
// Returns nil if not authenticated
func GetUser(r *http.Request) *users.User {
	user, _ := r.Context().Value(UserKey).(*users.User)
	return user
}

// SetTestUserID sets the user id in the context for testing purposes
// This function should ONLY be used in tests to mock authenticated users
func SetTestUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// writeAuthError writes a JSON error response for authentication failures
func writeAuthError(w http.ResponseWriter, message string) {
	writeJSONError(w, http.StatusUnauthorized, "AuthenticationRequired", message)
}

func writeJSONError(w http.ResponseWriter, status int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{
		"error":   errorType,
		"message": message,
	}); err != nil {
		log.Printf("Failed to write auth error response: %v", err)
	}
}
