// Package cache provides the in-memory response cache keyed by the inbound
// message. Entries expire on a TTL and the least recently used entry is
// evicted when the cache is full.
package cache

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultTTL keeps responses fresh enough for conversational retries
	// without serving stale data after an edit.
	DefaultTTL = 2 * time.Minute
	// DefaultMaxEntries bounds memory; one entry per distinct question.
	DefaultMaxEntries = 200
)

// Stats represents cache statistics
type Stats struct {
	Entries int     `json:"entries"`
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	HitRate float64 `json:"hit_rate"`
}

type entry struct {
	key       string
	value     any
	expiresAt time.Time
}

// ResponseCache is a TTL + LRU cache for fully assembled chart responses.
// Safe for concurrent use.
type ResponseCache struct {
	mu         sync.Mutex
	ttl        time.Duration
	maxEntries int
	entries    map[string]*list.Element
	order      *list.List // front = most recently used
	hits       int64
	misses     int64
	now        func() time.Time
}

// New creates a response cache with the given TTL and capacity. Non-positive
// arguments fall back to the defaults.
func New(ttl time.Duration, maxEntries int) *ResponseCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}

	return &ResponseCache{
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]*list.Element),
		order:      list.New(),
		now:        time.Now,
	}
}

// Key derives the cache key for a request: sha256 over the message, language,
// and any forced chart type, so the same question in a different language or
// with a different forced type never collides.
func Key(message, language, forcedType string) string {
	h := sha256.Sum256([]byte(strings.Join([]string{message, language, forcedType}, "|")))
	return hex.EncodeToString(h[:])
}

// Get returns the cached value for key, if present and unexpired.
func (c *ResponseCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, false
	}

	e := el.Value.(*entry)
	if c.now().After(e.expiresAt) {
		c.removeLocked(el)
		c.misses++

		return nil, false
	}

	c.order.MoveToFront(el)
	c.hits++

	return e.value, true
}

// Set stores value under key, evicting the least recently used entry when
// the cache is full.
func (c *ResponseCache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		e := el.Value.(*entry)
		e.value = value
		e.expiresAt = c.now().Add(c.ttl)
		c.order.MoveToFront(el)

		return
	}

	for len(c.entries) >= c.maxEntries {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}

		c.removeLocked(oldest)
	}

	el := c.order.PushFront(&entry{
		key:       key,
		value:     value,
		expiresAt: c.now().Add(c.ttl),
	})
	c.entries[key] = el
}

// Delete removes key from the cache.
func (c *ResponseCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		c.removeLocked(el)
	}
}

// Clear removes every entry. Statistics are kept.
func (c *ResponseCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*list.Element)
	c.order.Init()
}

// Len returns the number of live entries, expired or not.
func (c *ResponseCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// GetStats returns a snapshot of cache statistics.
func (c *ResponseCache) GetStats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{
		Entries: len(c.entries),
		Hits:    c.hits,
		Misses:  c.misses,
	}

	if total := c.hits + c.misses; total > 0 {
		s.HitRate = float64(c.hits) / float64(total)
	}

	return s
}

func (c *ResponseCache) removeLocked(el *list.Element) {
	e := el.Value.(*entry)
	c.order.Remove(el)
	delete(c.entries, e.key)
}
