package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// CacheKey generates a namespaced cache key for an identifier
func CacheKey(namespace, id string) string {
	hash := sha256.Sum256([]byte(id))
	return "feverpipe:v1:" + namespace + ":" + hex.EncodeToString(hash[:])
}
