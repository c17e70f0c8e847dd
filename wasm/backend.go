package wasm

import (
	"fmt"

	"github.com/easyjit/easyjit/codegen"
	"github.com/easyjit/easyjit/expr"
	"github.com/tetratelabs/wazero/api"
)

// emitter appends wasm f64 instructions to the function body. Handles are
// minted in emission order, exactly as in the engine backend: post-order
// emission keeps the wasm operand stack aligned with the generator's handles
type emitter struct {
	c         *Context
	numParams int
	body      []byte
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
	em.body = appendF64Const(em.body, v)
	return em.newValue()
}

func (em *emitter) Param(slot byte) codegen.Value {
	if int(slot) >= em.numParams {
		panic(fmt.Sprintf("emitter: parameter slot #%d out of arity %d", slot, em.numParams))
	}
	em.body = append(em.body, opLocalGet)
	em.body = appendUleb128(em.body, uint64(slot))
	return em.newValue()
}

func (em *emitter) BinOp(op expr.BinaryOp, left, right codegen.Value) codegen.Value {
	em.mustCurrent(right)
	if left >= right {
		panic(fmt.Sprintf("emitter: wrong operand order v%d, v%d", left, right))
	}
	em.body = append(em.body, opcodeForBinary(op))
	return em.newValue()
}

func (em *emitter) UnOp(op expr.UnaryOp, arg codegen.Value) codegen.Value {
	em.mustCurrent(arg)
	if idx, isHostFun := hostFunIndex(op); isHostFun {
		em.body = append(em.body, opCall)
		em.body = appendUleb128(em.body, uint64(idx))
	} else {
		em.body = append(em.body, opF64Sqrt)
	}
	return em.newValue()
}

func (em *emitter) Return(v codegen.Value) {
	// the function result is the value left on the wasm stack at 'end',
	// which moduleBytes appends. Nothing to emit here
	em.mustCurrent(v)
	em.returned = true
}

func (em *emitter) Finalize() (codegen.Callable, error) {
	if !em.returned {
		return nil, fmt.Errorf("finalize: no return value set")
	}
	bin := moduleBytes(em.numParams, em.body)
	mod, err := em.c.runtime.Instantiate(em.c.ctx, bin)
	if err != nil {
		return nil, fmt.Errorf("finalize: %v", err)
	}
	fn := mod.ExportedFunction(ExportName)
	if fn == nil {
		return nil, fmt.Errorf("finalize: export '%s' not found", ExportName)
	}
	return &Fun{
		c:         em.c,
		fn:        fn,
		numParams: em.numParams,
	}, nil
}

// Fun is the native compiled callable. It stays valid until the Context it
// was built in is closed
type Fun struct {
	c         *Context
	fn        api.Function
	numParams int
}

func (f *Fun) Arity() int {
	return f.numParams
}

func (f *Fun) Call(args ...float64) float64 {
	if len(args) != f.numParams {
		panic(fmt.Sprintf("Call: %d arguments expected, got %d", f.numParams, len(args)))
	}
	raw := make([]uint64, len(args))
	for i, a := range args {
		raw[i] = api.EncodeF64(a)
	}
	res, err := f.fn.Call(f.c.ctx, raw...)
	if err != nil {
		// only possible after the owning Context was closed
		panic(fmt.Sprintf("Call: %v", err))
	}
	return api.DecodeF64(res[0])
}
