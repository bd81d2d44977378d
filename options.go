package formula

import "go.uber.org/zap"

// Option is an option used when creating a runtime.
type Option interface {
	runtimeOption()
}

type (
	capopt   int
	logopt   struct{ log *zap.Logger }
	seedopt  int64
	epsopt   float64
	rollsopt int
)

func (capopt) runtimeOption()   {}
func (logopt) runtimeOption()   {}
func (seedopt) runtimeOption()  {}
func (epsopt) runtimeOption()   {}
func (rollsopt) runtimeOption() {}

// Defaults for runtime options.
const (
	DefaultCacheCapacity = 256
	DefaultEpsilon       = 1e-9
)

// CacheCapacity sets the maximum number of compiled formulas the runtime
// keeps. A capacity of zero or less selects DefaultCacheCapacity.
func CacheCapacity(n int) Option {
	return capopt(n)
}

// Logger sets the logger for cache and compilation events. The default
// discards everything.
func Logger(log *zap.Logger) Option {
	return logopt{log}
}

// Seed seeds the random source used by rand and dice operators. Without a
// seed, the source is seeded from the clock.
func Seed(seed int64) Option {
	return seedopt(seed)
}

// Epsilon sets the tolerance for equality comparisons and truthiness. A
// value of zero or less selects DefaultEpsilon.
func Epsilon(eps float64) Option {
	return epsopt(eps)
}

// MaxDiceRolls sets the largest number of dice a single d operator may roll.
// By default, and with a value of zero or less, there is no limit.
func MaxDiceRolls(n int) Option {
	return rollsopt(n)
}
