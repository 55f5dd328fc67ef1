package dashboard

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"
)

// RenderCache memoizes rendered widget HTML so repeated layout resolutions
// stay cheap.
type RenderCache interface {
	GetOrRender(key string, render func() (string, error)) (string, error)
}

// TTLRenderCache is an in-memory render cache with per-entry expiry.
type TTLRenderCache struct {
	ttl     time.Duration
	mu      sync.RWMutex
	entries map[string]renderEntry
}

type renderEntry struct {
	html    string
	expires time.Time
}

// NewTTLRenderCache builds a cache with the provided TTL. A non-positive
// TTL disables caching entirely.
func NewTTLRenderCache(ttl time.Duration) *TTLRenderCache {
	return &TTLRenderCache{ttl: ttl, entries: make(map[string]renderEntry)}
}

// GetOrRender returns a cached entry or renders and stores a new one.
func (c *TTLRenderCache) GetOrRender(key string, render func() (string, error)) (string, error) {
	if html, ok := c.get(key); ok {
		return html, nil
	}
	html, err := render()
	if err != nil {
		return "", err
	}
	c.set(key, html)
	return html, nil
}

func (c *TTLRenderCache) get(key string) (string, bool) {
	if c == nil || c.ttl <= 0 {
		return "", false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return "", false
	}
	if time.Now().After(entry.expires) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return "", false
	}
	return entry.html, true
}

func (c *TTLRenderCache) set(key, html string) {
	if c == nil || c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.entries[key] = renderEntry{html: html, expires: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

// renderCacheKey derives a stable key from any JSON-encodable payload.
func renderCacheKey(parts ...any) string {
	hash := sha1.New()
	encoder := json.NewEncoder(hash)
	for _, part := range parts {
		_ = encoder.Encode(part)
	}
	return hex.EncodeToString(hash.Sum(nil))
}
