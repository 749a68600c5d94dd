package blobs

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeObjectStore is an in-memory object store behind httptest.
type fakeObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	token   string
	status  int
}

func newFakeObjectStore(token string) *fakeObjectStore {
	return &fakeObjectStore{objects: make(map[string][]byte), token: token}
}

func (f *fakeObjectStore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if f.token != "" && r.Header.Get("Authorization") != "Bearer "+f.token {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if f.status != 0 {
		w.WriteHeader(f.status)
		_, _ = w.Write([]byte(`{"error":"boom"}`))
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/objects/")
	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.Method {
	case http.MethodPut:
		data, _ := io.ReadAll(r.Body)
		f.objects[id] = data
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"id":  id,
			"url": "https://cdn.example.com/" + id,
		})
	case http.MethodDelete:
		if _, ok := f.objects[id]; !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		delete(f.objects, id)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newTestHTTPStore(url, token string, timeout time.Duration) *HTTPStore {
	return NewHTTPStore(Config{Backend: BackendBlob, URL: url, Token: token, Timeout: timeout})
}

func TestHTTPStore_UploadAndDelete(t *testing.T) {
	fake := newFakeObjectStore("secret")
	server := httptest.NewServer(fake)
	defer server.Close()

	store := newTestHTTPStore(server.URL, "secret", 5*time.Second)
	data := []byte("jpeg bytes")

	ref, err := store.Upload(context.Background(), data, "image/jpeg")
	require.NoError(t, err)

	contentID, err := ContentID(data)
	require.NoError(t, err)
	wantID := ref.StorageID
	assert.True(t, strings.HasPrefix(wantID, contentID+"-"), "storage id %q", wantID)
	assert.NoError(t, ValidateStorageID(wantID))
	assert.Equal(t, "https://cdn.example.com/"+wantID, ref.URL)
	assert.Equal(t, len(data), ref.Size)
	assert.Contains(t, fake.objects, wantID)

	require.NoError(t, store.Delete(context.Background(), ref.StorageID))
	assert.NotContains(t, fake.objects, wantID)

	// Deleting again is idempotent.
	assert.NoError(t, store.Delete(context.Background(), ref.StorageID))
}

func TestHTTPStore_IdenticalUploadsAreDistinctObjects(t *testing.T) {
	fake := newFakeObjectStore("")
	server := httptest.NewServer(fake)
	defer server.Close()

	store := newTestHTTPStore(server.URL, "", 5*time.Second)
	data := []byte("same jpeg bytes")

	a, err := store.Upload(context.Background(), data, "image/jpeg")
	require.NoError(t, err)
	b, err := store.Upload(context.Background(), data, "image/jpeg")
	require.NoError(t, err)
	require.NotEqual(t, a.StorageID, b.StorageID)

	require.NoError(t, store.Delete(context.Background(), a.StorageID))
	assert.NotContains(t, fake.objects, a.StorageID)
	assert.Contains(t, fake.objects, b.StorageID)
}

func TestHTTPStore_Upload_ServerError(t *testing.T) {
	fake := newFakeObjectStore("")
	fake.status = http.StatusInternalServerError
	server := httptest.NewServer(fake)
	defer server.Close()

	store := newTestHTTPStore(server.URL, "", 5*time.Second)
	ref, err := store.Upload(context.Background(), []byte("data"), "image/jpeg")
	assert.Nil(t, ref)
	assert.ErrorIs(t, err, ErrUploadFailed)
}

func TestHTTPStore_Upload_MismatchedAcknowledgement(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id":"bafkreisomethingelse"}`))
	}))
	defer server.Close()

	store := newTestHTTPStore(server.URL, "", 5*time.Second)
	_, err := store.Upload(context.Background(), []byte("data"), "image/jpeg")
	assert.ErrorIs(t, err, ErrUploadFailed)
}

func TestHTTPStore_Upload_FallsBackToPublicURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	store := NewHTTPStore(Config{
		Backend:   BackendBlob,
		URL:       server.URL,
		PublicURL: "https://media.example.com/",
		Timeout:   5 * time.Second,
	})
	ref, err := store.Upload(context.Background(), []byte("data"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "https://media.example.com/"+ref.StorageID, ref.URL)
}

func TestHTTPStore_Upload_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	store := newTestHTTPStore(server.URL, "", 50*time.Millisecond)
	_, err := store.Upload(context.Background(), []byte("data"), "image/jpeg")
	assert.ErrorIs(t, err, ErrUploadFailed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestHTTPStore_Upload_InvalidInput(t *testing.T) {
	store := newTestHTTPStore("http://127.0.0.1:0", "", time.Second)

	_, err := store.Upload(context.Background(), nil, "image/jpeg")
	assert.ErrorIs(t, err, ErrUploadFailed)

	_, err = store.Upload(context.Background(), []byte("data"), "text/plain")
	assert.ErrorIs(t, err, ErrUploadFailed)
}

func TestHTTPStore_Delete_InvalidStorageID(t *testing.T) {
	store := newTestHTTPStore("http://127.0.0.1:0", "", time.Second)
	assert.ErrorIs(t, store.Delete(context.Background(), "../etc/passwd"), ErrInvalidStorageID)
}
