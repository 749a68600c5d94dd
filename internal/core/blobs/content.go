package blobs

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// contentPrefix describes the content addresses this store computes:
// CIDv1, raw codec, sha2-256.
var contentPrefix = cid.Prefix{
	Version:  1,
	Codec:    cid.Raw,
	MhType:   multihash.SHA2_256,
	MhLength: -1,
}

// ContentID computes the content address of data.
func ContentID(data []byte) (string, error) {
	c, err := contentPrefix.Sum(data)
	if err != nil {
		return "", fmt.Errorf("failed to hash content: %w", err)
	}
	return c.String(), nil
}

// NewStorageID returns a fresh identifier for one upload of data, in the form
// "{cid}-{uuid}". Every upload gets its own object, so byte-identical images
// on two posts never share storage and deleting one leaves the other intact.
func NewStorageID(data []byte) (string, error) {
	contentID, err := ContentID(data)
	if err != nil {
		return "", err
	}
	return contentID + "-" + uuid.NewString(), nil
}

// ValidateStorageID checks that id is a CID followed by a canonical uuid,
// which also rules out path separators and traversal sequences.
func ValidateStorageID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty", ErrInvalidStorageID)
	}
	// Base32 CIDs never contain '-', so the first one ends the content part.
	contentID, suffix, ok := strings.Cut(id, "-")
	if !ok {
		return fmt.Errorf("%w: missing upload suffix", ErrInvalidStorageID)
	}
	if _, err := cid.Decode(contentID); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidStorageID, err)
	}
	parsed, err := uuid.Parse(suffix)
	if err != nil || parsed.String() != suffix {
		return fmt.Errorf("%w: malformed upload suffix", ErrInvalidStorageID)
	}
	return nil
}
