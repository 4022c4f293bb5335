// Package tagcache is an in-memory cache whose entries carry tags, so a group
// of entries can be dropped at once after a write that makes them stale.
package tagcache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/inconshreveable/log15"
)

// Option configures a Cache.
type Option func(*Cache)

// WithTTL expires entries ttl after they were stored. Zero disables expiry.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets the logger used to report invalidations.
func WithLogger(logger log15.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

type entry struct {
	value   any
	tags    []string
	expires time.Time
}

// Stamp records the generation of each tag at the moment it was taken. Pass
// it to SetIfFresh to store a value built from data read after the stamp.
type Stamp map[string]uint64

// Cache is safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	gens    map[string]uint64
	ttl     time.Duration
	now     func() time.Time
	logger  log15.Logger
}

// New returns an empty cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[string]entry),
		gens:    make(map[string]uint64),
		now:     time.Now,
		logger:  log15.New("module", "tagcache"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Set stores value under key, replacing any previous entry and its tags.
func (c *Cache) Set(key string, value any, tags ...string) {
	e := c.newEntry(value, tags)

	c.mu.Lock()
	c.store(key, e)
	c.mu.Unlock()
}

// Stamp returns the current generation of every tag. Invalidate bumps the
// generation of the tag it drops.
func (c *Cache) Stamp(tags ...string) Stamp {
	c.mu.RLock()
	defer c.mu.RUnlock()
	stamp := make(Stamp, len(tags))
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			stamp[tag] = c.gens[tag]
		}
	}
	return stamp
}

// SetIfFresh stores value like Set unless one of tags was invalidated since
// stamp was taken, in which case value is discarded and false is returned.
// Tags missing from stamp count as generation zero.
func (c *Cache) SetIfFresh(key string, value any, stamp Stamp, tags ...string) bool {
	e := c.newEntry(value, tags)

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, tag := range e.tags {
		if c.gens[tag] != stamp[tag] {
			c.logger.Debug("cache write discarded", "key", key, "tag", tag)
			return false
		}
	}
	c.store(key, e)
	return true
}

func (c *Cache) newEntry(value any, tags []string) entry {
	e := entry{value: value}
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			e.tags = append(e.tags, tag)
		}
	}
	if c.ttl > 0 {
		e.expires = c.now().Add(c.ttl)
	}
	return e
}

// store writes e and sweeps expired entries. Callers hold c.mu.
func (c *Cache) store(key string, e entry) {
	if c.ttl > 0 {
		for k, old := range c.entries {
			if c.expired(old) {
				delete(c.entries, k)
			}
		}
	}
	c.entries[key] = e
}

// Get returns the value stored under key. Expired entries are reported as
// missing and removed on the next Set or Invalidate.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || c.expired(e) {
		return nil, false
	}
	return e.value, true
}

// Invalidate drops every entry carrying tag. It satisfies action.Invalidator.
func (c *Cache) Invalidate(_ context.Context, tag string) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return
	}

	c.mu.Lock()
	c.gens[tag]++
	dropped := 0
	for key, e := range c.entries {
		if c.expired(e) || hasTag(e.tags, tag) {
			delete(c.entries, key)
			dropped++
		}
	}
	c.mu.Unlock()

	c.logger.Debug("cache invalidated", "tag", tag, "dropped", dropped)
}

// Len reports the number of live entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, e := range c.entries {
		if !c.expired(e) {
			n++
		}
	}
	return n
}

func (c *Cache) expired(e entry) bool {
	return !e.expires.IsZero() && !c.now().Before(e.expires)
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
