package semantic

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/patrickmn/go-cache"
)

// CachingCompleter memoizes successful completions. Identical requests
// within the TTL are answered without calling the backend; errors are never
// cached.
type CachingCompleter struct {
	next  Completer
	cache *cache.Cache
}

// NewCachingCompleter wraps next with a TTL cache.
func NewCachingCompleter(next Completer, ttl time.Duration) *CachingCompleter {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &CachingCompleter{
		next:  next,
		cache: cache.New(ttl, 2*ttl),
	}
}

// Complete returns a cached response or delegates to the wrapped backend.
func (c *CachingCompleter) Complete(ctx context.Context, req Request) (Response, error) {
	key, err := cacheKey(req)
	if err != nil {
		return c.next.Complete(ctx, req)
	}
	if v, ok := c.cache.Get(key); ok {
		return v.(Response), nil
	}

	resp, err := c.next.Complete(ctx, req)
	if err != nil {
		return Response{}, err
	}
	c.cache.SetDefault(key, resp)
	return resp, nil
}

// Len returns the number of cached responses, including expired ones not
// yet evicted.
func (c *CachingCompleter) Len() int {
	return c.cache.ItemCount()
}

// Flush drops every cached response.
func (c *CachingCompleter) Flush() {
	c.cache.Flush()
}

// Available delegates to the wrapped backend when it reports availability.
func (c *CachingCompleter) Available() bool {
	if a, ok := c.next.(interface{ Available() bool }); ok {
		return a.Available()
	}
	return true
}

func cacheKey(req Request) (string, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

var _ Completer = (*CachingCompleter)(nil)
