package engine

import (
	"fmt"

	"github.com/easyjit/easyjit/codegen"
	"github.com/easyjit/easyjit/expr"
)

// Backend implements codegen.Backend on the stack machine. Value handles are
// minted in emission order; since emission is strictly post-order, the
// operands of every operation are the most recently minted live handles,
// which the emitter asserts
type Backend struct{}

func NewBackend() *Backend {
	return &Backend{}
}

func (b *Backend) NewFunc(numParams int) codegen.Emitter {
	return &emitter{
		prog:      NewProgram(),
		numParams: numParams,
	}
}

type emitter struct {
	prog      *Program
	numParams int
	numValues int
	returned  bool
}

func (em *emitter) newValue() codegen.Value {
	ret := codegen.Value(em.numValues)
	em.numValues++
	return ret
}

func (em *emitter) mustCurrent(v codegen.Value) {
	if int(v) != em.numValues-1 {
		panic(fmt.Sprintf("emitter: value handle v%d is not the current result", v))
	}
}

func (em *emitter) Const(v float64) codegen.Value {
	em.prog.OP(OP_CONST).F64(v)
	return em.newValue()
}

func (em *emitter) Param(slot byte) codegen.Value {
	if int(slot) >= em.numParams {
		panic(fmt.Sprintf("emitter: parameter slot #%d out of arity %d", slot, em.numParams))
	}
	em.prog.OP(OP_PARAM).Slot(slot)
	return em.newValue()
}

func (em *emitter) BinOp(op expr.BinaryOp, left, right codegen.Value) codegen.Value {
	em.mustCurrent(right)
	if left >= right {
		panic(fmt.Sprintf("emitter: wrong operand order v%d, v%d", left, right))
	}
	em.prog.OP(OpcodeForBinary(op))
	return em.newValue()
}

func (em *emitter) UnOp(op expr.UnaryOp, arg codegen.Value) codegen.Value {
	em.mustCurrent(arg)
	em.prog.OP(OpcodeForUnary(op))
	return em.newValue()
}

func (em *emitter) Return(v codegen.Value) {
	em.mustCurrent(v)
	em.prog.OP(OP_RET)
	em.returned = true
}

func (em *emitter) Finalize() (codegen.Callable, error) {
	if !em.returned {
		return nil, fmt.Errorf("finalize: no return value set")
	}
	code, err := em.prog.Assemble()
	if err != nil {
		return nil, err
	}
	return &Fun{
		code:      code,
		numParams: em.numParams,
	}, nil
}

// Fun is the compiled callable of the stack machine backend: assembled code
// plus the fixed arity. Pure: each Call runs on a fresh engine
type Fun struct {
	code      []byte
	numParams int
}

func (f *Fun) Arity() int {
	return f.numParams
}

func (f *Fun) Call(args ...float64) float64 {
	if len(args) != f.numParams {
		panic(fmt.Sprintf("Call: %d arguments expected, got %d", f.numParams, len(args)))
	}
	return Run(f.code, args)
}

// Code returns the assembled code of the function
func (f *Fun) Code() []byte {
	ret := make([]byte, len(f.code))
	copy(ret, f.code)
	return ret
}
