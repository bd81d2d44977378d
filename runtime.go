package formula

import (
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Runtime is the state shared by every interpreter created from it: the
// compiled formula cache, the global variables, and the random source for
// rand and dice. A program normally creates one Runtime at startup and
// passes it wherever formulas are evaluated.
//
// Safe for concurrent use by multiple goroutines.
type Runtime struct {
	cache *Cache

	mu      sync.RWMutex
	globals map[string]float64

	rngmu sync.Mutex
	rng   *rand.Rand

	log      *zap.Logger
	eps      float64
	maxRolls int
}

// NewRuntime creates a runtime. Options are applied in order.
func NewRuntime(opts ...Option) *Runtime {
	var (
		capacity = DefaultCacheCapacity
		log      = zap.NewNop()
		seed     = time.Now().UnixNano()
		eps      = DefaultEpsilon
		rolls    = 0
	)
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		switch opt := opt.(type) {
		case capopt:
			capacity = int(opt)
		case logopt:
			if opt.log != nil {
				log = opt.log
			}
		case seedopt:
			seed = int64(opt)
		case epsopt:
			if opt > 0 {
				eps = float64(opt)
			}
		case rollsopt:
			rolls = int(opt)
		default:
			panic("formula: unknown option type")
		}
	}
	return &Runtime{
		cache:    newCache(capacity, log),
		globals:  make(map[string]float64),
		rng:      rand.New(rand.NewSource(seed)),
		log:      log,
		eps:      eps,
		maxRolls: rolls,
	}
}

// NewInterpreter creates an interpreter with no local variables and no
// named contexts.
func (rt *Runtime) NewInterpreter() *Interpreter {
	return &Interpreter{
		rt:   rt,
		vars: make(map[string]float64),
		ctxs: make(map[string]VariableProvider),
	}
}

// SetGlobalVariable sets a variable visible to every interpreter of the
// runtime, unless a global of that name already exists, in which case the
// original value is kept. Names are stored with the variable prefix, so
// "x" and "$x" are the same variable. Returns rt for chaining.
func (rt *Runtime) SetGlobalVariable(name string, value float64) *Runtime {
	name = varName(name)
	rt.mu.Lock()
	if _, ok := rt.globals[name]; !ok {
		rt.globals[name] = value
	}
	rt.mu.Unlock()
	return rt
}

// GlobalVariable returns the value of a global variable.
func (rt *Runtime) GlobalVariable(name string) (float64, bool) {
	rt.mu.RLock()
	v, ok := rt.globals[varName(name)]
	rt.mu.RUnlock()
	return v, ok
}

// Cache returns the runtime's compiled formula cache.
func (rt *Runtime) Cache() *Cache {
	return rt.cache
}

// ClearCache removes every compiled formula from the cache.
func (rt *Runtime) ClearCache() {
	rt.cache.Clear()
}

// Epsilon returns the tolerance used for equality and truthiness.
func (rt *Runtime) Epsilon() float64 {
	return rt.eps
}

// random draws a uniform value in [0, 1).
func (rt *Runtime) random() float64 {
	rt.rngmu.Lock()
	v := rt.rng.Float64()
	rt.rngmu.Unlock()
	return v
}

// roll sums n uniform draws from [1, faces]. faces must be positive.
func (rt *Runtime) roll(n, faces int64) float64 {
	rt.rngmu.Lock()
	defer rt.rngmu.Unlock()
	var sum float64
	for i := int64(0); i < n; i++ {
		sum += float64(rt.rng.Int63n(faces) + 1)
	}
	return sum
}
