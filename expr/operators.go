package expr

import (
	"fmt"
	"math"
)

// BinaryOp is the closed enumeration of two-operand arithmetic operators
type BinaryOp byte

const (
	Plus = BinaryOp(iota)
	Minus
	Mult
	Div

	numBinaryOps
)

// UnaryOp is the closed enumeration of one-operand functions. Each maps 1:1
// to the standard math library function of the same name. Domain errors
// follow IEEE 754: they produce NaN, never a signaled error
type UnaryOp byte

const (
	Acos = UnaryOp(iota)
	Asin
	Atan
	Cos
	Cosh
	Exp
	Log10
	Sin
	Sinh
	Sqrt
	Tan
	Tanh

	numUnaryOps
)

func (op BinaryOp) Valid() bool {
	return op < numBinaryOps
}

func (op BinaryOp) String() string {
	switch op {
	case Plus:
		return "+"
	case Minus:
		return "-"
	case Mult:
		return "*"
	case Div:
		return "/"
	}
	return fmt.Sprintf("(wrong binary op %d)", byte(op))
}

// Apply computes the operator over concrete values with native float64
// semantics. Division by zero yields Inf or NaN, not an error
func (op BinaryOp) Apply(left, right float64) float64 {
	switch op {
	case Plus:
		return left + right
	case Minus:
		return left - right
	case Mult:
		return left * right
	case Div:
		return left / right
	}
	panic(fmt.Sprintf("BinaryOp.Apply: wrong operator %d", byte(op)))
}

var unaryNames = [numUnaryOps]string{
	Acos:  "acos",
	Asin:  "asin",
	Atan:  "atan",
	Cos:   "cos",
	Cosh:  "cosh",
	Exp:   "exp",
	Log10: "log10",
	Sin:   "sin",
	Sinh:  "sinh",
	Sqrt:  "sqrt",
	Tan:   "tan",
	Tanh:  "tanh",
}

var unaryFuns = [numUnaryOps]func(float64) float64{
	Acos:  math.Acos,
	Asin:  math.Asin,
	Atan:  math.Atan,
	Cos:   math.Cos,
	Cosh:  math.Cosh,
	Exp:   math.Exp,
	Log10: math.Log10,
	Sin:   math.Sin,
	Sinh:  math.Sinh,
	Sqrt:  math.Sqrt,
	Tan:   math.Tan,
	Tanh:  math.Tanh,
}

func (op UnaryOp) Valid() bool {
	return op < numUnaryOps
}

func (op UnaryOp) String() string {
	if !op.Valid() {
		return fmt.Sprintf("(wrong unary op %d)", byte(op))
	}
	return unaryNames[op]
}

// Apply computes the function over a concrete value
func (op UnaryOp) Apply(arg float64) float64 {
	if !op.Valid() {
		panic(fmt.Sprintf("UnaryOp.Apply: wrong operator %d", byte(op)))
	}
	return unaryFuns[op](arg)
}
