package formula

import (
	"sort"
	"strconv"
)

// Arity is the number of operands an operator consumes.
type Arity int8

const (
	// ArityConst operators take no operands, e.g. pi.
	ArityConst Arity = iota
	// ArityUnary operators take one operand, e.g. sqrt.
	ArityUnary
	// ArityBinary operators take two operands, e.g. +.
	ArityBinary
)

func (a Arity) String() string {
	switch a {
	case ArityConst:
		return "const"
	case ArityUnary:
		return "unary"
	case ArityBinary:
		return "binary"
	default:
		return "Arity(" + strconv.Itoa(int(a)) + ")"
	}
}

// Operator describes a registered operator. Lower precedence numbers bind
// more tightly.
type Operator struct {
	// Symbol is the operator text as written in formulas.
	Symbol string
	// Arity is the number of operands the operator consumes.
	Arity Arity
	// Prec is the precedence used when comparing two operators.
	Prec int
	// rule selects the evaluation rule.
	rule rule
}

// rule is the evaluation rule of an operator. Aliases such as "and" and "&&"
// share a rule.
type rule uint8

const (
	ruleNone rule = iota

	// constants
	rulePi
	ruleRand
	ruleTrue
	ruleFalse

	// unary
	ruleSign
	ruleNot
	ruleSqrt
	ruleCos
	ruleSin
	ruleTan
	ruleAcos
	ruleAsin
	ruleAtan
	ruleCosh
	ruleSinh
	ruleTanh
	ruleDegRad
	ruleRadDeg
	ruleAbs
	ruleRound
	ruleCeil
	ruleFloor
	ruleTrunc
	ruleLog
	ruleLog10
	ruleExp

	// binary
	ruleAdd
	ruleSub
	ruleMul
	ruleDiv
	ruleMod
	rulePow
	ruleMin
	ruleMax
	ruleEq
	ruleNe
	ruleLt
	ruleLte
	ruleGt
	ruleGte
	ruleAnd
	ruleOr
	ruleShl
	ruleShr
	ruleBitAnd
	ruleBitOr
	ruleDice
)

// Precedence levels. Functions share one level so that "sin 1+2" is
// sin(1)+2.
const (
	precConst    = 0
	precSign     = 1
	precFunc     = 2
	precNot      = 3
	precMul      = 5
	precAdd      = 6
	precShift    = 7
	precCompare  = 8
	precEquality = 9
	precBitAnd   = 10
	precBitOr    = 12
	precAnd      = 13
	precOr       = 14
)

// operatorTable is the full set of operators. It is the compatibility
// surface for formulas: two evaluators agreeing on this table tokenize and
// parse the same formulas identically.
var operatorTable = []Operator{
	{"pi", ArityConst, precConst, rulePi},
	{"rand", ArityConst, precConst, ruleRand},
	{"true", ArityConst, precConst, ruleTrue},
	{"false", ArityConst, precConst, ruleFalse},

	{"±", ArityUnary, precSign, ruleSign},
	{"!", ArityUnary, precNot, ruleNot},
	{"not", ArityUnary, precNot, ruleNot},
	{"sqrt", ArityUnary, precFunc, ruleSqrt},
	{"cos", ArityUnary, precFunc, ruleCos},
	{"sin", ArityUnary, precFunc, ruleSin},
	{"tan", ArityUnary, precFunc, ruleTan},
	{"acos", ArityUnary, precFunc, ruleAcos},
	{"asin", ArityUnary, precFunc, ruleAsin},
	{"atan", ArityUnary, precFunc, ruleAtan},
	{"cosh", ArityUnary, precFunc, ruleCosh},
	{"sinh", ArityUnary, precFunc, ruleSinh},
	{"tanh", ArityUnary, precFunc, ruleTanh},
	{"degrad", ArityUnary, precFunc, ruleDegRad},
	{"deg2rad", ArityUnary, precFunc, ruleDegRad},
	{"raddeg", ArityUnary, precFunc, ruleRadDeg},
	{"rad2deg", ArityUnary, precFunc, ruleRadDeg},
	{"abs", ArityUnary, precFunc, ruleAbs},
	{"round", ArityUnary, precFunc, ruleRound},
	{"ceil", ArityUnary, precFunc, ruleCeil},
	{"floor", ArityUnary, precFunc, ruleFloor},
	{"trunc", ArityUnary, precFunc, ruleTrunc},
	{"log", ArityUnary, precFunc, ruleLog},
	{"log10", ArityUnary, precFunc, ruleLog10},
	{"exp", ArityUnary, precFunc, ruleExp},

	{"+", ArityBinary, precAdd, ruleAdd},
	{"-", ArityBinary, precAdd, ruleSub},
	{"*", ArityBinary, precMul, ruleMul},
	{"/", ArityBinary, precMul, ruleDiv},
	{"%", ArityBinary, precMul, ruleMod},
	{"^", ArityBinary, precFunc, rulePow},
	{"pow", ArityBinary, precFunc, rulePow},
	{"min", ArityBinary, precFunc, ruleMin},
	{"max", ArityBinary, precFunc, ruleMax},
	{"d", ArityBinary, precFunc, ruleDice},
	{"D", ArityBinary, precFunc, ruleDice},
	{"<<", ArityBinary, precShift, ruleShl},
	{">>", ArityBinary, precShift, ruleShr},
	{"<", ArityBinary, precCompare, ruleLt},
	{"lt", ArityBinary, precCompare, ruleLt},
	{"<=", ArityBinary, precCompare, ruleLte},
	{"lte", ArityBinary, precCompare, ruleLte},
	{">", ArityBinary, precCompare, ruleGt},
	{"gt", ArityBinary, precCompare, ruleGt},
	{">=", ArityBinary, precCompare, ruleGte},
	{"gte", ArityBinary, precCompare, ruleGte},
	{"==", ArityBinary, precEquality, ruleEq},
	{"eq", ArityBinary, precEquality, ruleEq},
	{"!=", ArityBinary, precEquality, ruleNe},
	{"ne", ArityBinary, precEquality, ruleNe},
	{"&", ArityBinary, precBitAnd, ruleBitAnd},
	{"|", ArityBinary, precBitOr, ruleBitOr},
	{"&&", ArityBinary, precAnd, ruleAnd},
	{"and", ArityBinary, precAnd, ruleAnd},
	{"||", ArityBinary, precOr, ruleOr},
	{"or", ArityBinary, precOr, ruleOr},
}

var (
	// operators indexes operatorTable by symbol. It is never modified after
	// init.
	operators map[string]*Operator
	// maxSymbolLen is the length in runes of the longest symbolic operator.
	maxSymbolLen int
)

func init() {
	operators = make(map[string]*Operator, len(operatorTable))
	for i := range operatorTable {
		op := &operatorTable[i]
		if _, dup := operators[op.Symbol]; dup {
			panic("formula: repeating operator symbol " + strconv.Quote(op.Symbol))
		}
		if op.rule == ruleNone {
			panic("formula: operator " + strconv.Quote(op.Symbol) + " has no rule")
		}
		operators[op.Symbol] = op
		if !isWord(op.Symbol) {
			if n := len([]rune(op.Symbol)); n > maxSymbolLen {
				maxSymbolLen = n
			}
		}
	}
}

// lookupOperator gets the registered operator for a symbol.
func lookupOperator(sym string) (*Operator, bool) {
	op, ok := operators[sym]
	return op, ok
}

// LookupOperator returns a copy of the registered operator for a symbol.
func LookupOperator(sym string) (Operator, bool) {
	op, ok := operators[sym]
	if !ok {
		return Operator{}, false
	}
	return *op, true
}

// Operators returns a copy of every registered operator, sorted by
// precedence and then by symbol.
func Operators() []Operator {
	r := append([]Operator(nil), operatorTable...)
	sort.SliceStable(r, func(i, j int) bool {
		if r[i].Prec != r[j].Prec {
			return r[i].Prec < r[j].Prec
		}
		return r[i].Symbol < r[j].Symbol
	})
	return r
}

// isWord reports whether an operator symbol is spelled with letters, as
// opposed to special characters.
func isWord(sym string) bool {
	for _, r := range sym {
		if !isAlpha(r) && !isDigit(r) {
			return false
		}
	}
	return sym != ""
}
