// Package codegen lowers an expression tree into a callable unit through an
// abstract code-emission capability. The generator itself knows nothing
// about the target: it walks the tree post-order and asks a backend-supplied
// Emitter to materialize constants, parameter reads and operator
// applications, threading opaque value handles between the steps.
package codegen

import (
	"fmt"

	"github.com/easyjit/easyjit"
	"github.com/easyjit/easyjit/expr"
	"go.uber.org/zap"
)

// Value is an opaque handle of an intermediate result inside the emitter.
// Handles are only meaningful to the emitter which minted them
type Value int

type (
	// Emitter builds one function body. One instance per compilation: the
	// arity is fixed when the backend mints it. Emitters trust the generator
	// to feed them a well formed post-order stream and panic on misuse
	Emitter interface {
		Const(v float64) Value
		Param(slot byte) Value
		BinOp(op expr.BinaryOp, left, right Value) Value
		UnOp(op expr.UnaryOp, arg Value) Value
		Return(v Value)
		Finalize() (Callable, error)
	}

	// Backend is the code-emission capability of a compilation target
	Backend interface {
		NewFunc(numParams int) Emitter
	}

	// Callable is the finalized invocable artifact. It holds no mutable
	// state between calls: same arguments, bit-identical result. Numeric
	// anomalies flow through as IEEE 754 Inf/NaN in the returned value.
	// Calling with a wrong number of arguments panics
	Callable interface {
		Arity() int
		Call(args ...float64) float64
	}
)

type options struct {
	log *zap.SugaredLogger
}

type Option func(*options)

// WithTrace logs one debug line per emitted node
func WithTrace(log *zap.SugaredLogger) Option {
	return func(o *options) {
		o.log = log
	}
}

// Compile generates code for the tree on the given backend and finalizes it
// into a Callable with arity equal to the number of bound variables.
// Compilation is all-or-nothing: on any error no callable is exposed. The
// only expected failure for a well formed tree is an identifier missing
// from the binding
func Compile(root expr.Expr, vars *expr.Vars, b Backend, opt ...Option) (Callable, error) {
	opts := options{}
	for _, o := range opt {
		o(&opts)
	}
	gen := &generator{
		em:   b.NewFunc(vars.NumVars()),
		vars: vars,
		log:  opts.log,
	}
	var ret Callable
	err := easyjit.CatchPanicOrError(func() error {
		out, err := gen.genExpr(root)
		if err != nil {
			return err
		}
		gen.em.Return(out)
		ret, err = gen.em.Finalize()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("compile: %v", err)
	}
	return ret, nil
}

type generator struct {
	em   Emitter
	vars *expr.Vars
	log  *zap.SugaredLogger
}

// genExpr emits code for one subtree and returns the handle of its result.
// Strictly post-order: children first, then the node's own operation
func (g *generator) genExpr(e expr.Expr) (Value, error) {
	switch n := e.(type) {
	case *expr.Number:
		ret := g.em.Const(n.Value)
		g.trace("const %g -> v%d", n.Value, ret)
		return ret, nil

	case *expr.Ident:
		slot, err := g.vars.SlotOf(n.Name)
		if err != nil {
			return 0, err
		}
		ret := g.em.Param(slot)
		g.trace("param '%s' @ slot %d -> v%d", n.Name, slot, ret)
		return ret, nil

	case *expr.Binary:
		left, err := g.genExpr(n.Left)
		if err != nil {
			return 0, err
		}
		right, err := g.genExpr(n.Right)
		if err != nil {
			return 0, err
		}
		// operand order matters for '-' and '/'
		ret := g.em.BinOp(n.Op, left, right)
		g.trace("binop '%s' v%d v%d -> v%d", n.Op, left, right, ret)
		return ret, nil

	case *expr.Unary:
		arg, err := g.genExpr(n.Arg)
		if err != nil {
			return 0, err
		}
		ret := g.em.UnOp(n.Op, arg)
		g.trace("unop '%s' v%d -> v%d", n.Op, arg, ret)
		return ret, nil
	}
	panic(fmt.Sprintf("genExpr: unknown node type %T", e))
}

func (g *generator) trace(format string, args ...interface{}) {
	if g.log != nil {
		g.log.Debugf(format, args...)
	}
}
