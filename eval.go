package formula

import (
	"math"
	"strings"
)

// Boolean results are encoded as numbers.
const (
	True  = 1.0
	False = 0.0
)

// Interpreter evaluates formulas with its own local variables and named
// contexts, falling back to the global variables of its runtime. It is not
// safe to use an Interpreter concurrently; use one interpreter per goroutine
// with a shared Runtime instead.
type Interpreter struct {
	rt   *Runtime
	vars map[string]float64
	ctxs map[string]VariableProvider
}

// Runtime returns the runtime the interpreter belongs to.
func (in *Interpreter) Runtime() *Runtime {
	return in.rt
}

// SetVariable sets a local variable, unless a local variable of that name
// already exists, in which case the original value is kept. Names are stored
// with the variable prefix, so "x" and "$x" are the same variable. Returns
// in for chaining.
func (in *Interpreter) SetVariable(name string, value float64) *Interpreter {
	name = varName(name)
	if _, ok := in.vars[name]; !ok {
		in.vars[name] = value
	}
	return in
}

// SetGlobalVariable is a shortcut for in.Runtime().SetGlobalVariable.
func (in *Interpreter) SetGlobalVariable(name string, value float64) *Interpreter {
	in.rt.SetGlobalVariable(name, value)
	return in
}

// SetContext binds a provider to a context name, so that $name.field
// resolves through p. A nil provider unbinds the name. A leading variable
// prefix on name is ignored. Returns in for chaining.
func (in *Interpreter) SetContext(name string, p VariableProvider) *Interpreter {
	name = strings.TrimPrefix(name, string(VarPrefix))
	if p == nil {
		delete(in.ctxs, name)
		return in
	}
	in.ctxs[name] = p
	return in
}

// Lookup resolves a variable reference the way evaluation does: local
// variables first, then the named context for a reference like $ctx.field,
// then global variables.
func (in *Interpreter) Lookup(name string) (float64, bool) {
	key := varName(name)
	if v, ok := in.vars[key]; ok {
		return v, true
	}
	if ctx, field, ok := splitContextRef(key); ok {
		if p := in.ctxs[ctx]; p != nil {
			if v, ok := p.TryGetVariable(field); ok {
				return v, true
			}
		}
	}
	return in.rt.GlobalVariable(key)
}

// Evaluate evaluates a formula. The compiled formula is taken from the
// runtime's cache. On a miss, the formula is compiled and cached once its
// evaluation succeeds. If compilation or evaluation fails, the result is 0
// with the error, and the cache is left as it was.
func (in *Interpreter) Evaluate(src string) (float64, error) {
	c := in.rt.cache
	e, cached, err := c.lookup(src, func() (*Expr, error) {
		return Compile(src)
	})
	if err != nil {
		return 0, err
	}
	v, err := e.Eval(in)
	if err != nil {
		if !cached {
			c.abandon(src, e)
		}
		return 0, err
	}
	if !cached {
		c.insert(src, e)
	}
	return v, nil
}

// Eval evaluates a compiled expression with an interpreter. The cache is not
// involved.
func (e *Expr) Eval(in *Interpreter) (float64, error) {
	return e.n.eval(in)
}

// varName adds the variable prefix to name if it lacks it.
func varName(name string) string {
	if strings.HasPrefix(name, string(VarPrefix)) {
		return name
	}
	return string(VarPrefix) + name
}

// splitContextRef splits a reference of the form $ctx.field.
func splitContextRef(name string) (ctx, field string, ok bool) {
	if !strings.HasPrefix(name, string(VarPrefix)) {
		return "", "", false
	}
	ctx, field, ok = strings.Cut(name[1:], string(ContextSep))
	if !ok || !isIdent(ctx) || !isIdent(field) {
		return "", "", false
	}
	return ctx, field, true
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !isAlnum(r) {
			return false
		}
	}
	return true
}

// eval computes the value of the node.
func (n *node) eval(in *Interpreter) (float64, error) {
	switch n.kind {
	case nodeNum:
		return n.num, nil
	case nodeVar:
		v, ok := in.Lookup(n.name)
		if !ok {
			return 0, &NameError{Name: n.name}
		}
		return v, nil
	case nodeConst:
		return in.constant(n.op), nil
	case nodeUnary:
		x, err := n.left.eval(in)
		if err != nil {
			return 0, err
		}
		return in.unary(n.op, x), nil
	case nodeBinary:
		// Both operands are always evaluated; and/or do not short-circuit.
		l, err := n.left.eval(in)
		if err != nil {
			return 0, err
		}
		r, err := n.right.eval(in)
		if err != nil {
			return 0, err
		}
		return in.binary(n.op, l, r)
	default:
		panic("formula: invalid AST node " + n.kind.String())
	}
}

func (in *Interpreter) constant(op *Operator) float64 {
	switch op.rule {
	case rulePi:
		return math.Pi
	case ruleRand:
		return in.rt.random()
	case ruleTrue:
		return True
	case ruleFalse:
		return False
	default:
		panic("formula: invalid constant " + op.Symbol)
	}
}

func (in *Interpreter) unary(op *Operator, x float64) float64 {
	switch op.rule {
	case ruleSign:
		return -x
	case ruleNot:
		return boolean(math.Abs(x) < in.rt.eps)
	case ruleSqrt:
		return math.Sqrt(x)
	case ruleCos:
		return math.Cos(x)
	case ruleSin:
		return math.Sin(x)
	case ruleTan:
		return math.Tan(x)
	case ruleAcos:
		return math.Acos(x)
	case ruleAsin:
		return math.Asin(x)
	case ruleAtan:
		return math.Atan(x)
	case ruleCosh:
		return math.Cosh(x)
	case ruleSinh:
		return math.Sinh(x)
	case ruleTanh:
		return math.Tanh(x)
	case ruleDegRad:
		return x * math.Pi / 180
	case ruleRadDeg:
		return x * 180 / math.Pi
	case ruleAbs:
		return math.Abs(x)
	case ruleRound:
		return math.RoundToEven(x)
	case ruleCeil:
		return math.Ceil(x)
	case ruleFloor:
		return math.Floor(x)
	case ruleTrunc:
		return math.Trunc(x)
	case ruleLog:
		return math.Log(x)
	case ruleLog10:
		return math.Log10(x)
	case ruleExp:
		return math.Exp(x)
	default:
		panic("formula: invalid unary operator " + op.Symbol)
	}
}

func (in *Interpreter) binary(op *Operator, l, r float64) (float64, error) {
	eps := in.rt.eps
	switch op.rule {
	case ruleAdd:
		return l + r, nil
	case ruleSub:
		return l - r, nil
	case ruleMul:
		return l * r, nil
	case ruleDiv:
		return l / r, nil
	case ruleMod:
		// Integer remainder of the truncated operands. math.Mod gives NaN
		// instead of a division panic when r truncates to zero.
		return math.Mod(math.Trunc(l), math.Trunc(r)), nil
	case rulePow:
		return math.Pow(l, r), nil
	case ruleMin:
		return math.Min(l, r), nil
	case ruleMax:
		return math.Max(l, r), nil
	case ruleEq:
		return boolean(math.Abs(l-r) < eps), nil
	case ruleNe:
		return boolean(!(math.Abs(l-r) < eps)), nil
	case ruleLt:
		return boolean(l < r), nil
	case ruleLte:
		return boolean(l <= r), nil
	case ruleGt:
		return boolean(l > r), nil
	case ruleGte:
		return boolean(l >= r), nil
	case ruleAnd:
		return boolean(truthy(l, eps) && truthy(r, eps)), nil
	case ruleOr:
		return boolean(truthy(l, eps) || truthy(r, eps)), nil
	case ruleShl:
		return float64(toInt(l) << shift(r)), nil
	case ruleShr:
		return float64(toInt(l) >> shift(r)), nil
	case ruleBitAnd:
		return float64(toInt(l) & toInt(r)), nil
	case ruleBitOr:
		return float64(toInt(l) | toInt(r)), nil
	case ruleDice:
		return in.dice(op, l, r)
	default:
		panic("formula: invalid binary operator " + op.Symbol)
	}
}

// dice rolls trunc(l) dice with trunc(r) faces each and sums them. Rolling
// zero or fewer dice gives 0, and a die with no faces always shows 1.
func (in *Interpreter) dice(op *Operator, l, r float64) (float64, error) {
	n, faces := math.Trunc(l), math.Trunc(r)
	if !(n > 0) {
		return 0, nil
	}
	if n >= float64(math.MaxInt64) || in.rt.maxRolls > 0 && n > float64(in.rt.maxRolls) {
		return 0, &DomainError{X: l, Arg: 1, Operator: op.Symbol}
	}
	if !(faces >= 0) || faces >= float64(math.MaxInt64) {
		return 0, &DomainError{X: r, Arg: 2, Operator: op.Symbol}
	}
	if faces <= 1 {
		return n, nil
	}
	return in.rt.roll(int64(n), int64(faces)), nil
}

// toInt truncates x to a 32-bit integer for bitwise operators. Values
// outside the int32 range wrap.
func toInt(x float64) int32 {
	return int32(int64(x))
}

// shift converts a shift count, keeping its low five bits like a 32-bit
// machine shift.
func shift(r float64) uint {
	return uint(toInt(r)) & 31
}

func truthy(x, eps float64) bool {
	return math.Abs(x-1) < eps
}

func boolean(b bool) float64 {
	if b {
		return True
	}
	return False
}
