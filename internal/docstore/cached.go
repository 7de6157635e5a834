package docstore

import (
	"context"
	"time"

	"github.com/ppiankov/feverpipe/internal/cache"
)

const cacheNamespace = "doc"

// Cached fronts a Lookup with an in-memory cache. Misses are remembered as
// well, so a page that is absent from the store is only queried once.
type Cached struct {
	next  Lookup
	cache cache.Cache
	ttl   time.Duration
}

// NewCached wraps next with a memory cache of the given TTL
func NewCached(next Lookup, ttl time.Duration) *Cached {
	return &Cached{
		next:  next,
		cache: cache.NewMemoryCache(ttl, 2*ttl),
		ttl:   ttl,
	}
}

// entry layout: first byte 1 = found, 0 = missing; rest is the lines blob
func encodeEntry(lines string, found bool) []byte {
	b := make([]byte, 1, len(lines)+1)
	if found {
		b[0] = 1
	}
	return append(b, lines...)
}

func decodeEntry(b []byte) (string, bool) {
	if len(b) == 0 || b[0] == 0 {
		return "", false
	}
	return string(b[1:]), true
}

// GetLines serves from cache, falling through to the wrapped lookup
func (c *Cached) GetLines(ctx context.Context, id string) (string, bool, error) {
	key := cache.CacheKey(cacheNamespace, Normalize(id))
	if b, ok := c.cache.Get(key); ok {
		lines, found := decodeEntry(b)
		return lines, found, nil
	}

	lines, found, err := c.next.GetLines(ctx, id)
	if err != nil {
		return "", false, err
	}
	_ = c.cache.Set(key, encodeEntry(lines, found), c.ttl)
	return lines, found, nil
}

// GetManyLines serves cached ids and fetches the rest in one batch
func (c *Cached) GetManyLines(ctx context.Context, ids []string) (map[string]string, error) {
	out := make(map[string]string, len(ids))
	var pending []string

	for _, id := range uniqueNormalized(ids) {
		if b, ok := c.cache.Get(cache.CacheKey(cacheNamespace, id)); ok {
			if lines, found := decodeEntry(b); found {
				out[id] = lines
			}
			continue
		}
		pending = append(pending, id)
	}

	if len(pending) == 0 {
		return out, nil
	}

	fetched, err := c.next.GetManyLines(ctx, pending)
	if err != nil {
		return nil, err
	}
	for _, id := range pending {
		lines, found := fetched[id]
		_ = c.cache.Set(cache.CacheKey(cacheNamespace, id), encodeEntry(lines, found), c.ttl)
		if found {
			out[id] = lines
		}
	}
	return out, nil
}
