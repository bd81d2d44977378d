package formula

import (
	"strconv"
	"strings"
)

// node is a node in the expression tree of a compiled formula. Trees are
// never modified once built, so any number of goroutines may evaluate the
// same tree.
type node struct {
	kind nodeKind

	// num is the value of a nodeNum.
	num float64
	// name is the variable reference of a nodeVar, as written.
	name string
	// op is the operator of nodeConst, nodeUnary, and nodeBinary.
	op *Operator

	left  *node
	right *node
}

type nodeKind int8

const (
	nodeNone nodeKind = iota

	nodeNum    // push num
	nodeVar    // push resolve(name)
	nodeConst  // push op()
	nodeUnary  // evaluate left, apply op
	nodeBinary // evaluate left, evaluate right, apply op
)

func (k nodeKind) String() string {
	switch k {
	case nodeNone:
		return "None"
	case nodeNum:
		return "Num"
	case nodeVar:
		return "Var"
	case nodeConst:
		return "Const"
	case nodeUnary:
		return "Unary"
	case nodeBinary:
		return "Binary"
	default:
		return "nodeKind(" + strconv.Itoa(int(k)) + ")"
	}
}

func (n *node) String() string {
	var b strings.Builder
	n.fmt(&b, false)
	return b.String()
}

// fmt writes the node with round and square brackets alternating by depth.
func (n *node) fmt(b *strings.Builder, square bool) {
	var l, r byte = '(', ')'
	if square {
		l, r = '[', ']'
	}
	b.WriteByte(l)
	defer b.WriteByte(r)
	switch n.kind {
	case nodeNum:
		b.WriteString(strconv.FormatFloat(n.num, 'g', -1, 64))
	case nodeVar:
		b.WriteString(n.name)
	case nodeConst:
		b.WriteString(n.op.Symbol)
	case nodeUnary:
		b.WriteString(n.op.Symbol)
		b.WriteByte(' ')
		n.left.fmt(b, !square)
	case nodeBinary:
		n.left.fmt(b, !square)
		b.WriteByte(' ')
		b.WriteString(n.op.Symbol)
		b.WriteByte(' ')
		n.right.fmt(b, !square)
	default:
		panic("formula: invalid node kind " + n.kind.String() + " after writing " + b.String())
	}
}

// walk calls f for n and every node below it, in prefix order.
func (n *node) walk(f func(*node)) {
	if n == nil {
		return
	}
	f(n)
	n.left.walk(f)
	n.right.walk(f)
}
