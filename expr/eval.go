package expr

import (
	"fmt"
)

// EvalDirect evaluates the tree by walking it, without compiling. It is the
// reference semantics against which compiled code is checked: same traversal
// order, same IEEE 754 behavior. Wrong number of arguments panics, an
// unresolved identifier is an error, same as in code generation
func EvalDirect(e Expr, vars *Vars, args ...float64) (float64, error) {
	if len(args) != vars.NumVars() {
		panic(fmt.Sprintf("EvalDirect: %d arguments expected, got %d", vars.NumVars(), len(args)))
	}
	switch n := e.(type) {
	case *Number:
		return n.Value, nil
	case *Ident:
		slot, err := vars.SlotOf(n.Name)
		if err != nil {
			return 0, err
		}
		return args[slot], nil
	case *Binary:
		left, err := EvalDirect(n.Left, vars, args...)
		if err != nil {
			return 0, err
		}
		right, err := EvalDirect(n.Right, vars, args...)
		if err != nil {
			return 0, err
		}
		return n.Op.Apply(left, right), nil
	case *Unary:
		arg, err := EvalDirect(n.Arg, vars, args...)
		if err != nil {
			return 0, err
		}
		return n.Op.Apply(arg), nil
	}
	panic(fmt.Sprintf("EvalDirect: unknown node type %T", e))
}

// Fold returns a new tree with every identifier-free subtree collapsed into
// a Number. The original tree is never modified. Folding uses the same
// float64 semantics as evaluation, so meaning is preserved exactly,
// including Inf/NaN results
func Fold(e Expr) Expr {
	switch n := e.(type) {
	case *Number, *Ident:
		return e
	case *Binary:
		left := Fold(n.Left)
		right := Fold(n.Right)
		if lNum, ok := left.(*Number); ok {
			if rNum, ok := right.(*Number); ok {
				return Num(n.Op.Apply(lNum.Value, rNum.Value))
			}
		}
		if left == n.Left && right == n.Right {
			return e
		}
		return &Binary{Op: n.Op, Left: left, Right: right}
	case *Unary:
		arg := Fold(n.Arg)
		if num, ok := arg.(*Number); ok {
			return Num(n.Op.Apply(num.Value))
		}
		if arg == n.Arg {
			return e
		}
		return &Unary{Op: n.Op, Arg: arg}
	}
	panic(fmt.Sprintf("Fold: unknown node type %T", e))
}
