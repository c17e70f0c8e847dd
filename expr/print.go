package expr

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// operator precedence for printing only
const (
	precAdd = iota + 1
	precMul
	precAtom
)

func (op BinaryOp) precedence() int {
	if op == Plus || op == Minus {
		return precAdd
	}
	return precMul
}

// Source renders the tree as conventional infix notation with minimal
// parenthesization, e.g. "1*2+y*x" or "sin(x)/(x+1)"
func Source(e Expr) string {
	var sb strings.Builder
	printExpr(&sb, e, 0)
	return sb.String()
}

func (n *Number) String() string { return Source(n) }
func (n *Ident) String() string  { return Source(n) }
func (n *Binary) String() string { return Source(n) }
func (n *Unary) String() string  { return Source(n) }

func printExpr(sb *strings.Builder, e Expr, outerPrec int) {
	switch n := e.(type) {
	case *Number:
		// a negative literal as an operand reads ambiguously ("x--1"),
		// parenthesize it
		if outerPrec > 0 && math.Signbit(n.Value) {
			sb.WriteByte('(')
			sb.WriteString(strconv.FormatFloat(n.Value, 'g', -1, 64))
			sb.WriteByte(')')
			return
		}
		sb.WriteString(strconv.FormatFloat(n.Value, 'g', -1, 64))
	case *Ident:
		sb.WriteString(n.Name)
	case *Binary:
		prec := n.Op.precedence()
		if prec < outerPrec {
			sb.WriteByte('(')
		}
		printExpr(sb, n.Left, prec)
		sb.WriteString(n.Op.String())
		// right operand of a non-commutative operator binds tighter
		printExpr(sb, n.Right, prec+1)
		if prec < outerPrec {
			sb.WriteByte(')')
		}
	case *Unary:
		sb.WriteString(n.Op.String())
		sb.WriteByte('(')
		printExpr(sb, n.Arg, 0)
		sb.WriteByte(')')
	default:
		panic(fmt.Sprintf("printExpr: unknown node type %T", e))
	}
}
