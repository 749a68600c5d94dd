package middleware

import (
	"Snapfeed/internal/core/users"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("test-signing-secret")

const testUserID = "9a5a3c6e-7f1d-4c55-8d0b-2e0f6a1b3c4d"

// fakeUserService is a test double for users.Service
type fakeUserService struct {
	users map[string]*users.User
	err   error
}

func (f *fakeUserService) GetUser(ctx context.Context, id string) (*users.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	user, ok := f.users[id]
	if !ok {
		return nil, users.ErrUserNotFound
	}
	return user, nil
}

func newTestMiddleware(user *users.User) *JWTAuthMiddleware {
	svc := &fakeUserService{users: map[string]*users.User{}}
	if user != nil {
		svc.users[user.ID] = user
	}
	return NewJWTAuthMiddleware(testSecret, svc)
}

func createTestToken(t *testing.T, userID string, issuedAt time.Time) string {
	t.Helper()
	token, err := SignToken(testSecret, userID, issuedAt, time.Hour)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func serve(m *JWTAuthMiddleware, authHeader string) (*httptest.ResponseRecorder, bool, string) {
	var handlerCalled bool
	var gotUserID string
	handler := m.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		gotUserID = GetUserID(r)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/posts", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w, handlerCalled, gotUserID
}

// TestRequireAuth_ValidToken tests that valid tokens are accepted
func TestRequireAuth_ValidToken(t *testing.T) {
	m := newTestMiddleware(&users.User{ID: testUserID, Name: "Ada"})

	w, called, userID := serve(m, "Bearer "+createTestToken(t, testUserID, time.Now()))

	if !called {
		t.Fatal("handler was not called")
	}
	if userID != testUserID {
		t.Errorf("expected user id %s, got %s", testUserID, userID)
	}
	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
}

// TestRequireAuth_Rejections tests the 401 paths
func TestRequireAuth_Rejections(t *testing.T) {
	m := newTestMiddleware(&users.User{ID: testUserID})

	expired, _ := SignToken(testSecret, testUserID, time.Now().Add(-2*time.Hour), time.Hour)
	wrongKey, _ := SignToken([]byte("some-other-secret"), testUserID, time.Now(), time.Hour)
	noneToken, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:  testUserID,
		IssuedAt: jwt.NewNumericDate(time.Now()),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	noSubject, _ := SignToken(testSecret, "", time.Now(), time.Hour)

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "wrong scheme", header: "Basic dXNlcjpwYXNz"},
		{name: "garbage token", header: "Bearer not-a-jwt"},
		{name: "expired", header: "Bearer " + expired},
		{name: "wrong signing key", header: "Bearer " + wrongKey},
		{name: "unsigned token", header: "Bearer " + noneToken},
		{name: "missing subject", header: "Bearer " + noSubject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, called, _ := serve(m, tt.header)
			if called {
				t.Error("handler should not be called")
			}
			if w.Code != http.StatusUnauthorized {
				t.Errorf("expected status 401, got %d", w.Code)
			}

			var body map[string]string
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("response is not JSON: %v", err)
			}
			if body["error"] != "AuthenticationRequired" {
				t.Errorf("expected AuthenticationRequired, got %q", body["error"])
			}
		})
	}
}

// TestRequireAuth_UnknownUser tests that a valid token for a deleted user yields 404
func TestRequireAuth_UnknownUser(t *testing.T) {
	m := newTestMiddleware(nil)

	w, called, _ := serve(m, "Bearer "+createTestToken(t, testUserID, time.Now()))
	if called {
		t.Error("handler should not be called")
	}
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
}

// TestRequireAuth_PasswordChangedAfterIssue tests stale token rejection
func TestRequireAuth_PasswordChangedAfterIssue(t *testing.T) {
	changedAt := time.Now().Add(-10 * time.Minute)
	m := newTestMiddleware(&users.User{ID: testUserID, PasswordChangedAt: &changedAt})

	w, called, _ := serve(m, "Bearer "+createTestToken(t, testUserID, changedAt.Add(-time.Minute)))
	if called || w.Code != http.StatusUnauthorized {
		t.Errorf("expected stale token to be rejected with 401, got %d (handler called: %v)", w.Code, called)
	}

	w, called, _ = serve(m, "Bearer "+createTestToken(t, testUserID, changedAt.Add(time.Minute)))
	if !called || w.Code != http.StatusOK {
		t.Errorf("expected fresh token to be accepted, got %d", w.Code)
	}
}

// TestRequireAuth_LookupFailure tests that infrastructure errors are 500s
func TestRequireAuth_LookupFailure(t *testing.T) {
	m := NewJWTAuthMiddleware(testSecret, &fakeUserService{err: errors.New("connection refused")})

	w, called, _ := serve(m, "Bearer "+createTestToken(t, testUserID, time.Now()))
	if called {
		t.Error("handler should not be called")
	}
	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", w.Code)
	}
}

// TestSetTestUserID tests the context helper used by handler tests
func TestSetTestUserID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(SetTestUserID(req.Context(), testUserID))
	if got := GetUserID(req); got != testUserID {
		t.Errorf("expected %s, got %s", testUserID, got)
	}
	if GetUser(req) != nil {
		t.Error("expected no user in context")
	}
}

func TestSignToken_EmptySecret(t *testing.T) {
	if _, err := SignToken(nil, testUserID, time.Now(), time.Hour); err == nil {
		t.Error("expected error for empty secret")
	}
}
