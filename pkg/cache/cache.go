// Package cache provides the conversion result cache for icoforge.
//
// The cache records which (source content, pipeline options) pairs have
// already been converted, letting repeat runs with --overwrite skip the
// decode/trim/resize pipeline for unchanged sources. Three backends are
// provided:
//   - file: directory-based storage for CLI usage (default)
//   - redis: shared storage for CI runners converting the same asset sets
//   - null: no-op cache for --no-cache and tests
//
// Keys are derived from the SHA-256 of the source bytes plus the options
// that affect the output, so a changed source or a different --size never
// produces a stale hit.
package cache

import (
	"context"
	"time"
)

// DefaultTTL is how long conversion records stay valid.
// Conversion is deterministic, so the TTL mostly bounds cache growth.
const DefaultTTL = 30 * 24 * time.Hour

// Cache stores opaque byte values under string keys with optional TTL.
type Cache interface {
	// Get retrieves a value. The second result reports whether the key
	// was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of zero means no expiration; a negative
	// ttl stores the entry already expired.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// IconKeyOpts captures the pipeline options that affect the output bytes.
type IconKeyOpts struct {
	Size int `json:"size"`
}

// IconKey generates the cache key for a conversion result.
// srcHash is the SHA-256 hex digest of the source file bytes.
func IconKey(srcHash string, opts IconKeyOpts) string {
	return hashKey("icon", srcHash, opts)
}
