// Package cache provides the content-addressed response cache (C3) and
// the time-limited deduplication cache used elsewhere in the tree.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nikcli-go/nikcli/internal/infra"
	"github.com/nikcli-go/nikcli/pkg/models"
)

const (
	defaultTemperature = 0.7
	defaultMaxTokens   = 8192
)

type entry struct {
	response  models.ModelResponse
	createdAt time.Time
	ttl       time.Duration
	hits      atomic.Uint64
}

func (e *entry) expired(now time.Time) bool {
	return now.Sub(e.createdAt) >= e.ttl
}

// ResponseCache is a TTL-based, content-addressed cache of completed
// chat-completion responses, with single-flight coalescing so that N
// concurrent requests sharing a fingerprint trigger exactly one
// underlying generate call.
type ResponseCache struct {
	mu      sync.RWMutex
	entries map[string]*entry
	group   infra.Group[string, models.ModelResponse]

	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewResponseCache constructs an empty response cache.
func NewResponseCache() *ResponseCache {
	return &ResponseCache{entries: make(map[string]*entry)}
}

// Fingerprint computes the cache key for a request: SHA-256 over the
// canonical message serialization, temperature, and max_tokens (applying
// the documented defaults when unset). Two requests with identical
// fingerprints always resolve to the same cache entry.
func Fingerprint(req *models.GenerateRequest) string {
	var sb strings.Builder
	for _, m := range req.Messages {
		sb.WriteString(string(m.Role))
		sb.WriteByte(':')
		sb.WriteString(m.Content)
		sb.WriteByte(':')
	}

	temp := defaultTemperature
	if req.Temperature != nil {
		temp = float64(*req.Temperature)
	}
	maxTokens := defaultMaxTokens
	if req.MaxTokens != nil && *req.MaxTokens > 0 {
		maxTokens = *req.MaxTokens
	}
	fmt.Fprintf(&sb, "%.4f:%d", temp, maxTokens)

	sum := sha256.Sum256([]byte(sb.String()))
	return hex.EncodeToString(sum[:])
}

// Lookup returns the cached entry for key if present and not expired. An
// expired entry is evicted on access and Lookup reports a miss.
func (c *ResponseCache) Lookup(key string) (models.ModelResponse, bool) {
	now := time.Now()

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		c.misses.Add(1)
		return models.ModelResponse{}, false
	}
	if e.expired(now) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		c.misses.Add(1)
		return models.ModelResponse{}, false
	}

	e.hits.Add(1)
	c.hits.Add(1)
	return e.response, true
}

// Insert stores a response under key with the given TTL.
func (c *ResponseCache) Insert(key string, resp models.ModelResponse, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = &entry{response: resp, createdAt: time.Now(), ttl: ttl}
}

// GetOrGenerate looks up key; on a miss it coalesces concurrent callers
// sharing the same key into a single invocation of gen, inserts the
// result with ttl, and returns it to every waiter.
func (c *ResponseCache) GetOrGenerate(key string, ttl time.Duration, gen func() (models.ModelResponse, error)) (models.ModelResponse, error, bool) {
	if resp, ok := c.Lookup(key); ok {
		return resp, nil, true
	}

	resp, err, shared := c.group.Do(key, gen)
	if err != nil {
		return models.ModelResponse{}, err, false
	}
	if !shared {
		c.Insert(key, resp, ttl)
	}
	return resp, nil, shared
}

// Clear removes every cached entry.
func (c *ResponseCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
}

// Stats reports cache size and hit-rate counters.
type Stats struct {
	Entries int     `json:"entries"`
	Hits    uint64  `json:"hits"`
	Misses  uint64  `json:"misses"`
	HitRate float64 `json:"hit_rate"`
}

// Stats returns the current cache statistics.
func (c *ResponseCache) Stats() Stats {
	c.mu.RLock()
	n := len(c.entries)
	c.mu.RUnlock()

	hits := c.hits.Load()
	misses := c.misses.Load()
	var rate float64
	if n > 0 {
		rate = float64(hits) / float64(n)
	}
	return Stats{Entries: n, Hits: hits, Misses: misses, HitRate: rate}
}
