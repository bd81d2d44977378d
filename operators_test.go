package formula

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOperatorsRegistered(t *testing.T) {
	cases := []struct {
		arity Arity
		syms  []string
	}{
		{ArityConst, []string{"pi", "rand", "true", "false"}},
		{ArityUnary, []string{
			"±", "!", "not", "sqrt", "cos", "sin", "tan", "acos", "asin", "atan",
			"cosh", "sinh", "tanh", "degrad", "deg2rad", "raddeg", "rad2deg",
			"abs", "round", "ceil", "floor", "trunc", "log", "log10", "exp",
		}},
		{ArityBinary, []string{
			"+", "-", "*", "/", "%", "^", "pow", "min", "max", "d", "D",
			"<<", ">>", "<", "lt", "<=", "lte", ">", "gt", ">=", "gte",
			"==", "eq", "!=", "ne", "&", "|", "&&", "and", "||", "or",
		}},
	}
	n := 0
	for _, c := range cases {
		t.Run(c.arity.String(), func(t *testing.T) {
			for _, sym := range c.syms {
				op, ok := LookupOperator(sym)
				require.Truef(t, ok, "%q is not registered", sym)
				require.Equal(t, sym, op.Symbol)
				require.Equalf(t, c.arity, op.Arity, "wrong arity for %q", sym)
			}
		})
		n += len(c.syms)
	}
	require.Len(t, Operators(), n, "unexpected registered operators")
}

func TestOperatorAliases(t *testing.T) {
	cases := [][]string{
		{"!", "not"},
		{"degrad", "deg2rad"},
		{"raddeg", "rad2deg"},
		{"^", "pow"},
		{"d", "D"},
		{"<", "lt"},
		{"<=", "lte"},
		{">", "gt"},
		{">=", "gte"},
		{"==", "eq"},
		{"!=", "ne"},
		{"&&", "and"},
		{"||", "or"},
	}
	for _, c := range cases {
		a, _ := lookupOperator(c[0])
		b, _ := lookupOperator(c[1])
		require.NotNil(t, a)
		require.NotNil(t, b)
		require.Equalf(t, a.rule, b.rule, "%q and %q evaluate differently", c[0], c[1])
		require.Equalf(t, a.Prec, b.Prec, "%q and %q have different precedence", c[0], c[1])
	}
}

func TestOperatorPrecedenceOrder(t *testing.T) {
	// Each operator binds strictly tighter than the next.
	order := []string{"pi", "±", "sqrt", "!", "*", "+", "<<", "<", "==", "&", "|", "&&", "||"}
	for i := 1; i < len(order); i++ {
		a, _ := LookupOperator(order[i-1])
		b, _ := LookupOperator(order[i])
		require.Lessf(t, a.Prec, b.Prec, "%q should bind tighter than %q", a.Symbol, b.Symbol)
	}
	for _, sym := range []string{"^", "pow", "min", "max", "d", "sin", "log10"} {
		op, _ := LookupOperator(sym)
		require.Equalf(t, precFunc, op.Prec, "%q should have function precedence", sym)
	}
	for _, sym := range []string{"/", "%"} {
		op, _ := LookupOperator(sym)
		require.Equalf(t, precMul, op.Prec, "%q should have multiplication precedence", sym)
	}
}

func TestOperatorsSorted(t *testing.T) {
	ops := Operators()
	for i := 1; i < len(ops); i++ {
		a, b := ops[i-1], ops[i]
		ok := a.Prec < b.Prec || a.Prec == b.Prec && a.Symbol < b.Symbol
		require.Truef(t, ok, "%q (%d) sorts before %q (%d)", a.Symbol, a.Prec, b.Symbol, b.Prec)
	}
	// Operators returns copies.
	ops[0].Symbol = "xyzzy"
	_, ok := LookupOperator("xyzzy")
	require.False(t, ok)
}

func TestLookupOperatorMissing(t *testing.T) {
	for _, sym := range []string{"", "e", "ln", "sec", "**", "#", "$x"} {
		_, ok := LookupOperator(sym)
		require.Falsef(t, ok, "%q should not be registered", sym)
	}
}

func TestMaxSymbolLen(t *testing.T) {
	require.Equal(t, 2, maxSymbolLen)
	require.True(t, isWord("log10"))
	require.True(t, isWord("D"))
	require.False(t, isWord("<="))
	require.False(t, isWord("±"))
	require.False(t, isWord(""))
}
