// Package expr is the representation of arithmetic expressions: an immutable
// tree of float64 literals, named variables, binary arithmetic and unary
// transcendental functions. Trees are built programmatically with the
// constructors below, then consumed by code generation, direct evaluation,
// folding and printing. The variant set is closed; consumers dispatch with an
// exhaustive type switch.
package expr

// Expr is one node of the expression tree. It is sealed: the only
// implementations are *Number, *Ident, *Binary and *Unary
type Expr interface {
	exprNode()
}

type (
	// Number is a float64 literal leaf
	Number struct {
		Value float64
	}

	// Ident is a leaf referencing a variable by name. The name must be known
	// to the Vars binding at code generation time
	Ident struct {
		Name string
	}

	// Binary owns exactly two child subtrees, evaluated left then right
	Binary struct {
		Op          BinaryOp
		Left, Right Expr
	}

	// Unary owns exactly one child subtree
	Unary struct {
		Op  UnaryOp
		Arg Expr
	}
)

func (*Number) exprNode() {}
func (*Ident) exprNode()  {}
func (*Binary) exprNode() {}
func (*Unary) exprNode()  {}

func Num(v float64) *Number {
	return &Number{Value: v}
}

func Var(name string) *Ident {
	if len(name) == 0 {
		panic("Var: empty variable name")
	}
	return &Ident{Name: name}
}

func Bin(op BinaryOp, left, right Expr) *Binary {
	if !op.Valid() {
		panic("Bin: wrong binary operator")
	}
	mustNotNil(left)
	mustNotNil(right)
	return &Binary{Op: op, Left: left, Right: right}
}

func Un(op UnaryOp, arg Expr) *Unary {
	if !op.Valid() {
		panic("Un: wrong unary operator")
	}
	mustNotNil(arg)
	return &Unary{Op: op, Arg: arg}
}

func mustNotNil(e Expr) {
	if e == nil {
		panic("nil expression subtree")
	}
}

// shorthand constructors in the manner of the usual AST builder helpers

func Add(left, right Expr) *Binary { return Bin(Plus, left, right) }
func Sub(left, right Expr) *Binary { return Bin(Minus, left, right) }
func Mul(left, right Expr) *Binary { return Bin(Mult, left, right) }
func Quo(left, right Expr) *Binary { return Bin(Div, left, right) }

func AcosOf(arg Expr) *Unary  { return Un(Acos, arg) }
func AsinOf(arg Expr) *Unary  { return Un(Asin, arg) }
func AtanOf(arg Expr) *Unary  { return Un(Atan, arg) }
func CosOf(arg Expr) *Unary   { return Un(Cos, arg) }
func CoshOf(arg Expr) *Unary  { return Un(Cosh, arg) }
func ExpOf(arg Expr) *Unary   { return Un(Exp, arg) }
func Log10Of(arg Expr) *Unary { return Un(Log10, arg) }
func SinOf(arg Expr) *Unary   { return Un(Sin, arg) }
func SinhOf(arg Expr) *Unary  { return Un(Sinh, arg) }
func SqrtOf(arg Expr) *Unary  { return Un(Sqrt, arg) }
func TanOf(arg Expr) *Unary   { return Un(Tan, arg) }
func TanhOf(arg Expr) *Unary  { return Un(Tanh, arg) }

// NumIdentRefs counts identifier references in the tree
func NumIdentRefs(e Expr) int {
	switch n := e.(type) {
	case *Number:
		return 0
	case *Ident:
		return 1
	case *Binary:
		return NumIdentRefs(n.Left) + NumIdentRefs(n.Right)
	case *Unary:
		return NumIdentRefs(n.Arg)
	}
	panic("NumIdentRefs: unknown node type")
}
