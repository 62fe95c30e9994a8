package llm

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/couchcryptid/floatchat/internal/domain"
	"github.com/couchcryptid/floatchat/internal/observability"
)

// CachedAugmenter wraps an Augmenter with in-memory LRU caches. Identical
// questions are common (suggested queries, retries), and each miss costs a
// paid API call.
type CachedAugmenter struct {
	inner      domain.Augmenter
	intents    *lruCache[domain.IntentCandidate]
	narratives *lruCache[string]
	metrics    *observability.Metrics
}

// NewCachedAugmenter creates a cache decorator around an augmenter.
func NewCachedAugmenter(inner domain.Augmenter, maxEntries int, metrics *observability.Metrics) *CachedAugmenter {
	return &CachedAugmenter{
		inner:      inner,
		intents:    newLRUCache[domain.IntentCandidate](maxEntries),
		narratives: newLRUCache[string](maxEntries),
		metrics:    metrics,
	}
}

// Augment keys intents by question and current UTC day, since the provider
// resolves relative phrases like "last 6 months" against today's date.
func (c *CachedAugmenter) Augment(ctx context.Context, text string, vocab domain.Vocabulary) (domain.IntentCandidate, error) {
	key := domain.Now().Format(time.DateOnly) + "|" + cacheKey(text)
	if candidate, ok := c.intents.get(key); ok {
		c.metrics.AugmenterCache.WithLabelValues("augment", "hit").Inc()
		return candidate, nil
	}
	c.metrics.AugmenterCache.WithLabelValues("augment", "miss").Inc()

	candidate, err := c.inner.Augment(ctx, text, vocab)
	if err != nil {
		return candidate, err
	}
	c.intents.put(key, candidate)
	return candidate, nil
}

func (c *CachedAugmenter) Elaborate(ctx context.Context, req domain.ElaborationRequest) (string, error) {
	key := cacheKey(req.Question) + "|" + req.Summary
	if text, ok := c.narratives.get(key); ok {
		c.metrics.AugmenterCache.WithLabelValues("elaborate", "hit").Inc()
		return text, nil
	}
	c.metrics.AugmenterCache.WithLabelValues("elaborate", "miss").Inc()

	text, err := c.inner.Elaborate(ctx, req)
	if err != nil {
		return text, err
	}
	// Only cache non-empty text so a blank answer can be retried.
	if strings.TrimSpace(text) != "" {
		c.narratives.put(key, text)
	}
	return text, nil
}

func cacheKey(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// lruCache is a simple thread-safe LRU cache.
type lruCache[V any] struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry[V]
	head       *entry[V] // most recently used
	tail       *entry[V] // least recently used
}

type entry[V any] struct {
	key   string
	value V
	prev  *entry[V]
	next  *entry[V]
}

func newLRUCache[V any](maxEntries int) *lruCache[V] {
	return &lruCache[V]{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry[V]),
	}
}

func (c *lruCache[V]) get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache[V]) put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry[V]{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache[V]) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *lruCache[V]) moveToFront(e *entry[V]) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache[V]) addToFront(e *entry[V]) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache[V]) remove(e *entry[V]) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache[V]) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
