package formula

import (
	"errors"
	"sort"
	"strconv"
	"strings"
)

// Expr is a compiled formula that can be evaluated with an interpreter. An
// Expr is immutable and safe to evaluate concurrently.
type Expr struct {
	// src is the formula text.
	src string
	// rpn is the formula's tokens in postfix order.
	rpn []lexToken
	// n is the root node of the expression.
	n *node
	// names is the list of variable names used in the expression.
	names []string
}

// Compile compiles a formula: it tokenizes the text, converts the tokens to
// postfix order, and builds the expression tree. Compile does not consult
// any cache; see Interpreter.Evaluate.
func Compile(src string) (*Expr, error) {
	rpn, err := shunt(tokenize(src))
	if err != nil {
		return nil, err
	}
	n, err := build(rpn)
	if err != nil {
		return nil, err
	}
	ex := Expr{src: src, rpn: rpn, n: n}
	seen := make(map[string]bool)
	n.walk(func(n *node) {
		if n.kind == nodeVar && !seen[n.name] {
			seen[n.name] = true
			ex.names = append(ex.names, n.name)
		}
	})
	sort.Strings(ex.names)
	return &ex, nil
}

// shunt converts tokens in infix order to postfix order. Operators are
// popped from the stack while the operator on top binds at least as tightly
// as the incoming one, so operators of equal precedence, including ^, group
// left to right. An operator in operand position, e.g. the second sqrt in
// "sqrt sqrt 16", is a prefix operator and pops nothing. Constants are
// output like operands. Separators are dropped after closing the argument
// before them.
func shunt(toks []lexToken) ([]lexToken, error) {
	out := make([]lexToken, 0, len(toks))
	var stack []lexToken
	// prefix is true when the next token is expected to start an operand.
	prefix := true
	for _, tok := range toks {
		switch tok.kind {
		case tokenNum, tokenVar:
			out = append(out, tok)
			prefix = false
		case tokenSep:
			// Inside brackets, a separator ends the argument before it.
			open := len(stack) - 1
			for open >= 0 && stack[open].kind != tokenOpen {
				open--
			}
			if open >= 0 {
				for i := len(stack) - 1; i > open; i-- {
					out = append(out, stack[i])
				}
				stack = stack[:open+1]
			}
			prefix = true
		case tokenOpen:
			stack = append(stack, tok)
			prefix = true
		case tokenClose:
			for {
				if len(stack) == 0 {
					return nil, &BracketError{Col: tok.pos, Right: tok.text}
				}
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if top.kind == tokenOpen {
					break
				}
				out = append(out, top)
			}
			prefix = false
		case tokenOp:
			op, ok := lookupOperator(tok.text)
			if !ok {
				return nil, &OperatorError{Col: tok.pos, Operator: tok.text}
			}
			if op.Arity == ArityConst {
				out = append(out, tok)
				prefix = false
				continue
			}
			for !prefix && len(stack) > 0 {
				top := stack[len(stack)-1]
				if top.kind != tokenOp || !bindsFirst(top.text, op) {
					break
				}
				out = append(out, top)
				stack = stack[:len(stack)-1]
			}
			stack = append(stack, tok)
			prefix = true
		default:
			panic("formula: unknown token: " + tok.String())
		}
	}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.kind == tokenOpen {
			return nil, &BracketError{Col: top.pos, Left: top.text}
		}
		out = append(out, top)
	}
	return out, nil
}

// bindsFirst reports whether the stacked operator sym must be output before
// the incoming operator op is pushed.
func bindsFirst(sym string, op *Operator) bool {
	top, ok := lookupOperator(sym)
	if !ok {
		// Only registered operators are ever pushed.
		panic("formula: unregistered operator on stack: " + strconv.Quote(sym))
	}
	return top.Prec <= op.Prec
}

// build builds an expression tree from tokens in postfix order.
func build(rpn []lexToken) (*node, error) {
	stack := make([]*node, 0, len(rpn))
	for _, tok := range rpn {
		if tok.kind == tokenNum {
			v, err := strconv.ParseFloat(tok.text, 64)
			// Overlong literals round to ±Inf with ErrRange.
			if err == nil || errors.Is(err, strconv.ErrRange) {
				stack = append(stack, &node{kind: nodeNum, num: v})
				continue
			}
		}
		if tok.kind == tokenOp {
			op, ok := lookupOperator(tok.text)
			if !ok {
				return nil, &OperatorError{Col: tok.pos, Operator: tok.text}
			}
			k := int(op.Arity)
			if len(stack) < k {
				return nil, &ArityError{Col: tok.pos, Operator: op.Symbol, Want: k, Have: len(stack)}
			}
			n := &node{op: op}
			switch op.Arity {
			case ArityConst:
				n.kind = nodeConst
			case ArityUnary:
				n.kind = nodeUnary
				n.left = stack[len(stack)-1]
			case ArityBinary:
				n.kind = nodeBinary
				n.right = stack[len(stack)-1]
				n.left = stack[len(stack)-2]
			}
			stack = append(stack[:len(stack)-k], n)
			continue
		}
		stack = append(stack, &node{kind: nodeVar, name: tok.text})
	}
	if len(stack) != 1 {
		col := 0
		if len(rpn) > 0 {
			col = rpn[len(rpn)-1].pos
		}
		return nil, &ArityError{Col: col, Want: 1, Have: len(stack)}
	}
	return stack[0], nil
}

// Source returns the formula text the expression was compiled from.
func (e *Expr) Source() string {
	return e.src
}

// Vars returns the variable references used in the expression, as written
// and sorted.
func (e *Expr) Vars() []string {
	return append(([]string)(nil), e.names...)
}

// RPN returns the expression's tokens in postfix order, separated by single
// spaces.
func (e *Expr) RPN() string {
	var b strings.Builder
	for i, tok := range e.rpn {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(tok.text)
	}
	return b.String()
}

// String creates a string representation of the compiled expression, with
// alternating round and square brackets grouping each term.
func (e *Expr) String() string {
	return e.n.String()
}
