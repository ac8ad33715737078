package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache stores fetched page bodies keyed by URL hash so repeated runs within
// the TTL do not refetch unchanged pages.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration)
}

// Key derives a cache key from a URL.
func Key(url string) string {
	sum := sha256.Sum256([]byte(url))
	return "cityfeed:fetch:" + hex.EncodeToString(sum[:])
}
