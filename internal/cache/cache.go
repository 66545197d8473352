package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for NLP lookup caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key generates a cache key for a capability lookup. The input is hashed so
// arbitrary statement text never leaks into file names.
func Key(capability, input string) string {
	hash := sha256.Sum256([]byte(input))
	return "perturbia:v1:" + capability + ":" + hex.EncodeToString(hash[:])
}
