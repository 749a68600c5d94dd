package blobs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
)

// HTTPStore talks to a remote object store over HTTP.
//
// Objects are written with PUT {endpoint}/objects/{cid} and removed with
// DELETE {endpoint}/objects/{cid}. The store answers uploads with
// {"id": "<cid>", "url": "<public url>"}; a missing url falls back to
// {publicURL}/{cid}.
type HTTPStore struct {
	endpoint  string
	publicURL string
	token     string
	client    *http.Client
}

// NewHTTPStore creates a store client from a validated Config.
func NewHTTPStore(cfg Config) *HTTPStore {
	publicURL := cfg.PublicURL
	if publicURL == "" {
		publicURL = strings.TrimSuffix(cfg.URL, "/") + "/objects"
	}
	return &HTTPStore{
		endpoint:  strings.TrimSuffix(cfg.URL, "/"),
		publicURL: publicURL,
		token:     cfg.Token,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Upload uploads an image buffer as a new object.
// Flow:
// 1. Validate inputs
// 2. Derive a fresh storage id from the buffer's CID
// 3. PUT to {endpoint}/objects/{id} with bearer auth
// 4. Verify the store acknowledged the same id
func (s *HTTPStore) Upload(ctx context.Context, data []byte, mimeType string) (*BlobRef, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: data cannot be empty", ErrUploadFailed)
	}
	if !isValidMimeType(mimeType) {
		return nil, fmt.Errorf("%w: unsupported MIME type: %s", ErrUploadFailed, mimeType)
	}

	id, err := NewStorageID(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.objectURL(id), bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %w", ErrUploadFailed, err)
	}
	req.Header.Set("Content-Type", mimeType)
	s.authorize(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, wrapTransportError(ErrUploadFailed, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Printf("Warning: failed to close media store response body: %v", closeErr)
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return nil, wrapTransportError(ErrUploadFailed, err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		bodyPreview := string(body)
		if len(bodyPreview) > 200 {
			bodyPreview = bodyPreview[:200] + "... (truncated)"
		}
		log.Printf("[MEDIA-UPLOAD-ERROR] Status: %d, Body: %s", resp.StatusCode, bodyPreview)
		return nil, fmt.Errorf("%w: store returned status %d", ErrUploadFailed, resp.StatusCode)
	}

	var result struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &result); err != nil {
			return nil, fmt.Errorf("%w: failed to parse store response: %w", ErrUploadFailed, err)
		}
	}

	if result.ID != "" && result.ID != id {
		return nil, fmt.Errorf("%w: store acknowledged %s, expected %s", ErrUploadFailed, result.ID, id)
	}

	url := result.URL
	if url == "" {
		url = PublicURL(s.publicURL, id)
	}

	return &BlobRef{
		URL:       url,
		StorageID: id,
		MimeType:  mimeType,
		Size:      len(data),
	}, nil
}

// Delete removes an object by storage identifier. A 404 counts as success.
func (s *HTTPStore) Delete(ctx context.Context, storageID string) error {
	if err := ValidateStorageID(storageID); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, s.objectURL(storageID), nil)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %w", ErrDeleteFailed, err)
	}
	s.authorize(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return wrapTransportError(ErrDeleteFailed, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Printf("Warning: failed to close media store response body: %v", closeErr)
		}
	}()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))

	switch resp.StatusCode {
	case http.StatusOK, http.StatusAccepted, http.StatusNoContent, http.StatusNotFound:
		return nil
	default:
		return fmt.Errorf("%w: store returned status %d", ErrDeleteFailed, resp.StatusCode)
	}
}

func (s *HTTPStore) objectURL(id string) string {
	return PublicURL(s.endpoint+"/objects", id)
}

func (s *HTTPStore) authorize(req *http.Request) {
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
}
