package wasm

import (
	"context"
	"fmt"

	"github.com/easyjit/easyjit/codegen"
	"github.com/tetratelabs/wazero"
)

// Context is the scoped build context of the native backend. It owns the
// wazero runtime every compiled callable lives in. Close tears the runtime
// down and invalidates all callables built from this Context; calling one
// afterwards panics. Build, freeze, then invoke: a Context must not be
// closed while a compilation is in progress
type Context struct {
	ctx     context.Context
	runtime wazero.Runtime
}

// NewContext creates a runtime with the host math module instantiated.
// On platforms without compiler support wazero falls back to its
// interpreter, the contract of the callables does not change
func NewContext(ctx context.Context) (*Context, error) {
	r := wazero.NewRuntime(ctx)
	builder := r.NewHostModuleBuilder(hostModuleName)
	for _, hf := range hostFuns {
		builder = builder.NewFunctionBuilder().WithFunc(hf.fn).Export(hf.name)
	}
	if _, err := builder.Instantiate(ctx); err != nil {
		_ = r.Close(ctx)
		return nil, fmt.Errorf("wasm.NewContext: %v", err)
	}
	return &Context{
		ctx:     ctx,
		runtime: r,
	}, nil
}

// Close releases the runtime and all compiled callables derived from it
func (c *Context) Close() error {
	return c.runtime.Close(c.ctx)
}

// NewFunc implements codegen.Backend
func (c *Context) NewFunc(numParams int) codegen.Emitter {
	return &emitter{
		c:         c,
		numParams: numParams,
		body:      make([]byte, 0, 64),
	}
}
