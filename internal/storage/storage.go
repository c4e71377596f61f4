package storage

import (
	"context"
	"time"
)

// ObjectStorage is the storage surface the local pipeline backend needs:
// hand out pre-authorized upload targets and map keys to public URLs.
type ObjectStorage interface {
	// PresignPut returns a time-limited URL accepting a PUT of raw bytes
	// with the given content type. Authorization is embedded in the URL.
	PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (string, error)

	// PublicURL returns the CDN-reachable URL for an object key.
	PublicURL(key string) string

	// EnsureBucket creates the bucket if it doesn't exist.
	EnsureBucket(ctx context.Context) error
}
