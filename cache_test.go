package formula

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// put compiles src into c and inserts it the way a successful evaluation
// does, failing the test on error. It reports whether src was already cached.
func put(t *testing.T, c *Cache, src string) bool {
	t.Helper()
	e, cached, err := c.lookup(src, func() (*Expr, error) { return Compile(src) })
	require.NoError(t, err)
	require.NotNil(t, e)
	if !cached {
		c.insert(src, e)
	}
	return cached
}

func TestCacheFIFO(t *testing.T) {
	c := newCache(2, zap.NewNop())
	require.False(t, put(t, c, "1+1"))
	put(t, c, "2+2")
	// A hit does not move the entry to the back.
	require.True(t, put(t, c, "1+1"))
	put(t, c, "3+3")

	require.False(t, c.Contains("1+1"))
	require.True(t, c.Contains("2+2"))
	require.True(t, c.Contains("3+3"))
	require.Equal(t, 2, c.Len())
	require.Equal(t, Stats{Hits: 1, Misses: 3, Evictions: 1}, c.Stats())

	put(t, c, "4+4")
	require.False(t, c.Contains("2+2"))
	require.Equal(t, uint64(2), c.Stats().Evictions)
}

func TestCacheCapacity(t *testing.T) {
	require.Equal(t, DefaultCacheCapacity, newCache(0, zap.NewNop()).Capacity())
	require.Equal(t, DefaultCacheCapacity, newCache(-1, zap.NewNop()).Capacity())
	c := newCache(3, zap.NewNop())
	require.Equal(t, 3, c.Capacity())
	for _, src := range []string{"1", "2", "3", "4", "5", "6", "7"} {
		put(t, c, src)
		require.LessOrEqual(t, c.Len(), 3)
	}
	require.Equal(t, 3, c.Len())
	require.Equal(t, uint64(4), c.Stats().Evictions)
}

func TestCacheCompileError(t *testing.T) {
	c := newCache(2, zap.NewNop())
	bad := errors.New("bad formula")
	e, cached, err := c.lookup("x", func() (*Expr, error) { return nil, bad })
	require.ErrorIs(t, err, bad)
	require.Nil(t, e)
	require.False(t, cached)
	require.Zero(t, c.Len())
	require.Empty(t, c.pending)
	require.Equal(t, Stats{Misses: 1}, c.Stats())
}

func TestCacheAbandon(t *testing.T) {
	c := newCache(2, zap.NewNop())
	put(t, c, "1+1")
	put(t, c, "2+2")
	e, cached, err := c.lookup("$nope", func() (*Expr, error) { return Compile("$nope") })
	require.NoError(t, err)
	require.False(t, cached)
	// A formula awaiting its first evaluation is not an entry.
	require.False(t, c.Contains("$nope"))
	c.abandon("$nope", e)

	require.Empty(t, c.pending)
	require.True(t, c.Contains("1+1"))
	require.True(t, c.Contains("2+2"))
	require.Equal(t, 2, c.Len())
	require.Equal(t, 2, c.order.Len())
	require.Zero(t, c.Stats().Evictions)
}

func TestCachePendingShared(t *testing.T) {
	c := newCache(2, zap.NewNop())
	compiles := 0
	compile := func() (*Expr, error) {
		compiles++
		return Compile("1+2")
	}
	a, cached, err := c.lookup("1+2", compile)
	require.NoError(t, err)
	require.False(t, cached)
	b, cached, err := c.lookup("1+2", compile)
	require.NoError(t, err)
	require.False(t, cached)
	require.Same(t, a, b)
	require.Equal(t, 1, compiles)

	// Inserting twice keeps one entry.
	c.insert("1+2", a)
	c.insert("1+2", b)
	require.Equal(t, 1, c.Len())
	require.Equal(t, 1, c.order.Len())
	require.Empty(t, c.pending)
	_, cached, err = c.lookup("1+2", compile)
	require.NoError(t, err)
	require.True(t, cached)
	require.Equal(t, Stats{Hits: 2, Misses: 1}, c.Stats())
}

func TestCacheClear(t *testing.T) {
	c := newCache(4, zap.NewNop())
	put(t, c, "1")
	put(t, c, "2")
	put(t, c, "1")
	c.Clear()
	require.Zero(t, c.Len())
	require.False(t, c.Contains("1"))
	require.Equal(t, Stats{Hits: 1, Misses: 2}, c.Stats())
	require.False(t, put(t, c, "1"))
	require.Equal(t, "[3] 1 => (1)\n", c.Dump())
}

func TestCacheDump(t *testing.T) {
	c := newCache(2, zap.NewNop())
	require.Empty(t, c.Dump())
	put(t, c, "0")
	put(t, c, "1+2")
	put(t, c, "$x")
	require.Equal(t, "[2] 1+2 => ([1] + [2])\n[3] $x => ($x)\n", c.Dump())
}

func TestCacheCompileOnce(t *testing.T) {
	c := newCache(4, zap.NewNop())
	var compiles atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e, cached, err := c.lookup("1+2", func() (*Expr, error) {
				compiles.Inc()
				return Compile("1+2")
			})
			if err == nil && !cached {
				c.insert("1+2", e)
			}
		}()
	}
	wg.Wait()
	require.Equal(t, int32(1), compiles.Load())
	s := c.Stats()
	require.Equal(t, uint64(31), s.Hits)
	require.Equal(t, uint64(1), s.Misses)
}

func TestCacheLogs(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	c := newCache(1, zap.New(core))
	put(t, c, "1")
	put(t, c, "2")
	e, _, err := c.lookup("3", func() (*Expr, error) { return Compile("3") })
	require.NoError(t, err)
	c.abandon("3", e)
	c.Clear()

	require.Equal(t, 3, logs.FilterMessage("compiled formula").Len())
	require.Equal(t, 2, logs.FilterMessage("cached formula").Len())
	ev := logs.FilterMessage("evicted formula").All()
	require.Len(t, ev, 1)
	require.Equal(t, "1", ev[0].ContextMap()["formula"])
	require.Equal(t, 1, logs.FilterMessage("cleared formula cache").Len())
}
