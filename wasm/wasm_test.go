package wasm_test

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/easyjit/easyjit/codegen"
	"github.com/easyjit/easyjit/engine"
	"github.com/easyjit/easyjit/expr"
	"github.com/easyjit/easyjit/wasm"
	"github.com/stretchr/testify/require"
)

func newCtx(t *testing.T) *wasm.Context {
	c, err := wasm.NewContext(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = c.Close()
	})
	return c
}

func TestCompileNative(t *testing.T) {
	t.Run("1", func(t *testing.T) {
		c := newCtx(t)
		e := expr.Add(expr.Mul(expr.Num(1), expr.Num(2)), expr.Mul(expr.Var("y"), expr.Var("x")))
		f, err := codegen.Compile(e, expr.NewVars("x", "y"), c)
		require.NoError(t, err)
		require.EqualValues(t, 2, f.Arity())
		require.EqualValues(t, 17, f.Call(3, 5))
	})
	t.Run("constant only", func(t *testing.T) {
		c := newCtx(t)
		f, err := codegen.Compile(expr.Num(42), expr.NewVars(), c)
		require.NoError(t, err)
		require.EqualValues(t, 42, f.Call())
	})
	t.Run("operand order", func(t *testing.T) {
		c := newCtx(t)
		f, err := codegen.Compile(expr.Sub(expr.Num(10), expr.Num(4)), expr.NewVars(), c)
		require.NoError(t, err)
		require.EqualValues(t, 6, f.Call())
	})
	t.Run("unresolved identifier", func(t *testing.T) {
		c := newCtx(t)
		f, err := codegen.Compile(expr.Var("q"), expr.NewVars("x"), c)
		require.Error(t, err)
		require.Nil(t, f)
	})
	t.Run("many functions one context", func(t *testing.T) {
		c := newCtx(t)
		for i := 0; i < 10; i++ {
			f, err := codegen.Compile(expr.Add(expr.Var("x"), expr.Num(float64(i))), expr.NewVars("x"), c)
			require.NoError(t, err)
			require.EqualValues(t, float64(100+i), f.Call(100))
		}
	})
}

func TestNativeUnaryOps(t *testing.T) {
	c := newCtx(t)
	for op := expr.Acos; op <= expr.Tanh; op++ {
		op := op
		t.Run(op.String(), func(t *testing.T) {
			f, err := codegen.Compile(expr.Un(op, expr.Var("x")), expr.NewVars("x"), c)
			require.NoError(t, err)
			for _, x := range []float64{0, 0.25, 0.75} {
				require.InDelta(t, op.Apply(x), f.Call(x), 1e-12)
			}
		})
	}
	t.Run("sqrt is native", func(t *testing.T) {
		f, err := codegen.Compile(expr.SqrtOf(expr.Num(9)), expr.NewVars(), c)
		require.NoError(t, err)
		require.EqualValues(t, 3, f.Call())
	})
}

func TestNativeNumericEdgeCases(t *testing.T) {
	c := newCtx(t)
	t.Run("1/0", func(t *testing.T) {
		f, err := codegen.Compile(expr.Quo(expr.Num(1), expr.Num(0)), expr.NewVars(), c)
		require.NoError(t, err)
		require.True(t, math.IsInf(f.Call(), 1))
	})
	t.Run("0/0", func(t *testing.T) {
		f, err := codegen.Compile(expr.Quo(expr.Num(0), expr.Num(0)), expr.NewVars(), c)
		require.NoError(t, err)
		require.True(t, math.IsNaN(f.Call()))
	})
	t.Run("domain error", func(t *testing.T) {
		f, err := codegen.Compile(expr.Log10Of(expr.Num(-1)), expr.NewVars(), c)
		require.NoError(t, err)
		require.True(t, math.IsNaN(f.Call()))
	})
}

func TestNativeCallableContract(t *testing.T) {
	t.Run("pure across invocations", func(t *testing.T) {
		c := newCtx(t)
		e := expr.ExpOf(expr.Mul(expr.Var("x"), expr.Var("y")))
		f, err := codegen.Compile(e, expr.NewVars("x", "y"), c)
		require.NoError(t, err)
		first := f.Call(0.5, 0.25)
		for i := 0; i < 10; i++ {
			require.EqualValues(t, first, f.Call(0.5, 0.25))
		}
	})
	t.Run("wrong arity panics", func(t *testing.T) {
		c := newCtx(t)
		f, err := codegen.Compile(expr.Var("x"), expr.NewVars("x"), c)
		require.NoError(t, err)
		require.Panics(t, func() {
			f.Call()
		})
	})
	t.Run("call after close panics", func(t *testing.T) {
		c, err := wasm.NewContext(context.Background())
		require.NoError(t, err)
		f, err := codegen.Compile(expr.Num(1), expr.NewVars(), c)
		require.NoError(t, err)
		require.EqualValues(t, 1, f.Call())
		require.NoError(t, c.Close())
		require.Panics(t, func() {
			f.Call()
		})
	})
	t.Run("contexts are independent", func(t *testing.T) {
		c1, err := wasm.NewContext(context.Background())
		require.NoError(t, err)
		c2, err := wasm.NewContext(context.Background())
		require.NoError(t, err)
		defer func() { _ = c2.Close() }()

		f1, err := codegen.Compile(expr.Num(1), expr.NewVars(), c1)
		require.NoError(t, err)
		f2, err := codegen.Compile(expr.Num(2), expr.NewVars(), c2)
		require.NoError(t, err)

		require.NoError(t, c1.Close())
		require.Panics(t, func() {
			f1.Call()
		})
		require.EqualValues(t, 2, f2.Call())
	})
}

// randomTree builds an arbitrary well formed tree over the given variables
func randomTree(rnd *rand.Rand, names []string, depth int) expr.Expr {
	if depth == 0 || rnd.Intn(4) == 0 {
		if len(names) > 0 && rnd.Intn(2) == 0 {
			return expr.Var(names[rnd.Intn(len(names))])
		}
		return expr.Num(float64(rnd.Intn(20))/4 + 0.25)
	}
	if rnd.Intn(3) == 0 {
		return expr.Un(expr.UnaryOp(rnd.Intn(12)), expr.TanhOf(randomTree(rnd, names, depth-1)))
	}
	return expr.Bin(expr.BinaryOp(rnd.Intn(4)), randomTree(rnd, names, depth-1), randomTree(rnd, names, depth-1))
}

// the two backends must agree bit for bit: the native module performs the
// same float64 operations in the same order
func TestBackendsAgree(t *testing.T) {
	c := newCtx(t)
	rnd := rand.New(rand.NewSource(271))
	vars := expr.NewVars("x", "y", "z")
	for i := 0; i < 50; i++ {
		e := randomTree(rnd, vars.Names(), 5)
		fNative, err := codegen.Compile(e, vars, c)
		require.NoError(t, err)
		fEngine, err := codegen.Compile(e, vars, engine.NewBackend())
		require.NoError(t, err)

		args := []float64{rnd.Float64(), rnd.Float64(), rnd.Float64()}
		rNative, rEngine := fNative.Call(args...), fEngine.Call(args...)
		if math.IsNaN(rEngine) {
			require.True(t, math.IsNaN(rNative), "tree: %s", expr.Source(e))
		} else {
			require.EqualValues(t, rEngine, rNative, "tree: %s", expr.Source(e))
		}
	}
}
