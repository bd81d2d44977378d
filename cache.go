package formula

import (
	"strconv"
	"strings"
	"sync"

	"github.com/gammazero/deque"
	"go.uber.org/zap"
)

// Cache maps formula text to compiled expressions. It holds at most
// Capacity entries. When an insertion would exceed the capacity, the entry
// inserted first is evicted; looking an entry up never changes its place in
// line. A formula is inserted only after its first evaluation succeeds, so
// a failing formula never displaces another.
//
// Safe for concurrent use by multiple goroutines.
type Cache struct {
	mu       sync.Mutex
	capacity int
	// seq is the sequence id of the last inserted entry.
	seq uint64
	// entries maps formula text to the live entry.
	entries map[string]cacheEntry
	// pending holds formulas compiled on a miss whose evaluation has not yet
	// finished. Callers missing on the same formula meanwhile share it.
	pending map[string]*Expr
	// order holds the keys of entries by increasing sequence id.
	order *deque.Deque[cacheKey]
	stats Stats
	log   *zap.Logger
}

type cacheEntry struct {
	seq  uint64
	expr *Expr
}

type cacheKey struct {
	src string
	seq uint64
}

// Stats counts cache traffic.
type Stats struct {
	// Hits counts lookups which found a compiled formula.
	Hits uint64
	// Misses counts lookups which had to compile.
	Misses uint64
	// Evictions counts entries removed to respect the capacity.
	Evictions uint64
}

func newCache(capacity int, log *zap.Logger) *Cache {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	return &Cache{
		capacity: capacity,
		entries:  make(map[string]cacheEntry, capacity),
		pending:  make(map[string]*Expr),
		order:    new(deque.Deque[cacheKey]),
		log:      log,
	}
}

// lookup returns the compiled expression for src. On a miss it calls
// compile, or reuses a compilation still pending for another caller, without
// inserting the result. The lookup and the compilation happen under one lock,
// so concurrent callers never compile the same missing formula twice. The
// second result reports whether the expression came from the cache; when it
// is false, the caller must follow with insert or abandon.
func (c *Cache) lookup(src string, compile func() (*Expr, error)) (*Expr, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[src]; ok {
		c.stats.Hits++
		return e.expr, true, nil
	}
	if x, ok := c.pending[src]; ok {
		c.stats.Hits++
		return x, false, nil
	}
	c.stats.Misses++
	x, err := compile()
	if err != nil {
		return nil, false, err
	}
	c.pending[src] = x
	c.log.Debug("compiled formula", zap.String("formula", src))
	return x, false, nil
}

// insert adds a compiled expression returned by lookup, evicting the oldest
// entries as needed. Nothing happens if src is already cached.
func (c *Cache) insert(src string, x *Expr) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unpendLocked(src, x)
	if _, ok := c.entries[src]; ok {
		return
	}
	for len(c.entries) >= c.capacity {
		c.evictLocked()
	}
	c.seq++
	c.entries[src] = cacheEntry{seq: c.seq, expr: x}
	c.order.PushBack(cacheKey{src: src, seq: c.seq})
	c.log.Debug("cached formula", zap.String("formula", src), zap.Uint64("seq", c.seq))
}

// abandon forgets a compiled expression returned by lookup whose evaluation
// failed. The cached entries are untouched.
func (c *Cache) abandon(src string, x *Expr) {
	c.mu.Lock()
	c.unpendLocked(src, x)
	c.mu.Unlock()
}

// unpendLocked removes x from the pending compilations.
// Must be called with c.mu held.
func (c *Cache) unpendLocked(src string, x *Expr) {
	if c.pending[src] == x {
		delete(c.pending, src)
	}
}

// evictLocked removes the entry with the smallest sequence id.
// Must be called with c.mu held.
func (c *Cache) evictLocked() {
	k := c.order.PopFront()
	delete(c.entries, k.src)
	c.stats.Evictions++
	c.log.Debug("evicted formula", zap.String("formula", k.src), zap.Uint64("seq", k.seq))
}

// Contains reports whether a compiled entry for src is cached. It does not
// count as a hit or a miss.
func (c *Cache) Contains(src string) bool {
	c.mu.Lock()
	_, ok := c.entries[src]
	c.mu.Unlock()
	return ok
}

// Len returns the number of entries currently in the cache.
func (c *Cache) Len() int {
	c.mu.Lock()
	n := len(c.entries)
	c.mu.Unlock()
	return n
}

// Capacity returns the maximum number of entries the cache can hold.
func (c *Cache) Capacity() int {
	return c.capacity
}

// Stats returns a snapshot of the cache counters. Clear does not reset
// them.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	s := c.stats
	c.mu.Unlock()
	return s
}

// Clear removes all entries from the cache. Sequence ids keep increasing
// across clears.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.log.Debug("cleared formula cache", zap.Int("entries", len(c.entries)))
	c.entries = make(map[string]cacheEntry, c.capacity)
	c.order = new(deque.Deque[cacheKey])
}

// Dump describes the cached entries, one per line in insertion order, as
// "[seq] formula => tree".
func (c *Cache) Dump() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var b strings.Builder
	for i := 0; i < c.order.Len(); i++ {
		k := c.order.At(i)
		b.WriteByte('[')
		b.WriteString(strconv.FormatUint(k.seq, 10))
		b.WriteString("] ")
		b.WriteString(k.src)
		b.WriteString(" => ")
		b.WriteString(c.entries[k.src].expr.String())
		b.WriteByte('\n')
	}
	return b.String()
}
