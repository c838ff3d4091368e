package exprcache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dshills/rootfinder-mcp/internal/expr"
)

// DefaultSize is used when New is given a non-positive size
const DefaultSize = 1024

// Lookup kinds passed to a LookupObserver
const (
	KindExpression = "expression"
	KindDerivative = "derivative"
)

// LookupObserver is notified of every cache lookup
type LookupObserver func(kind string, hit bool)

// Cache provides in-memory LRU caching of compiled expressions and their
// derivatives by source hash. It implements solver.Compiler.
type Cache struct {
	cache    *lru.Cache[string, *expr.Expression]
	hits     atomic.Int64
	misses   atomic.Int64
	observer LookupObserver
}

// Option configures a Cache
type Option func(*Cache)

// WithObserver registers fn to be called on every lookup
func WithObserver(fn LookupObserver) Option {
	return func(c *Cache) {
		c.observer = fn
	}
}

// New creates a new expression cache with LRU eviction
func New(maxLen int, opts ...Option) *Cache {
	if maxLen <= 0 {
		maxLen = DefaultSize
	}
	cache, err := lru.New[string, *expr.Expression](maxLen)
	if err != nil {
		// Should never happen with positive size, but fallback to default
		cache, _ = lru.New[string, *expr.Expression](DefaultSize)
	}

	c := &Cache{cache: cache}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile returns the compiled form of text, parsing it on a miss.
// Parse failures are returned and not cached.
func (c *Cache) Compile(text string) (*expr.Expression, error) {
	key := "f:" + Hash(text)
	if e, ok := c.get(KindExpression, key); ok {
		return e, nil
	}

	e, err := expr.Parse(text)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, e)
	return e, nil
}

// CompileDerivative returns the derivative of text, reusing a cached compiled
// expression when one exists
func (c *Cache) CompileDerivative(text string) (*expr.Expression, error) {
	key := "d:" + Hash(text)
	if d, ok := c.get(KindDerivative, key); ok {
		return d, nil
	}

	e, err := c.Compile(text)
	if err != nil {
		return nil, err
	}
	d := e.Derivative()
	c.cache.Add(key, d)
	return d, nil
}

func (c *Cache) get(kind, key string) (*expr.Expression, bool) {
	// Expressions are immutable, so cached values are shared without copying
	e, ok := c.cache.Get(key)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	if c.observer != nil {
		c.observer(kind, ok)
	}
	return e, ok
}

// Size returns the number of cached entries
func (c *Cache) Size() int {
	return c.cache.Len()
}

// Clear removes all cached entries. Hit and miss counters are kept.
func (c *Cache) Clear() {
	c.cache.Purge()
}

// Stats is a snapshot of cache counters
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Size   int   `json:"size"`
}

// Stats returns the current counters
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Size:   c.cache.Len(),
	}
}

// Hash computes the SHA-256 hex digest of the trimmed expression text
func Hash(text string) string {
	h := sha256.Sum256([]byte(strings.TrimSpace(text)))
	return hex.EncodeToString(h[:])
}
