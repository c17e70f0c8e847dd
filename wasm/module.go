// Package wasm is the native backend: generated code is lowered into a
// one-function WebAssembly module and compiled to machine code by the wazero
// runtime. WebAssembly is itself a stack machine, so the post-order emission
// stream maps one to one onto the function body. The four arithmetic
// operators and sqrt lower to native f64 instructions, the remaining eleven
// unary functions call host functions backed by the Go math package.
package wasm

import (
	"fmt"
	"math"

	"github.com/easyjit/easyjit"
	"github.com/easyjit/easyjit/expr"
)

// wasm binary opcodes and section ids used by the emitted module
const (
	secType     = byte(1)
	secImport   = byte(2)
	secFunction = byte(3)
	secExport   = byte(7)
	secCode     = byte(10)

	typeFunc = byte(0x60)
	typeF64  = byte(0x7C)

	opLocalGet = byte(0x20)
	opF64Const = byte(0x44)
	opF64Sqrt  = byte(0x9F)
	opF64Add   = byte(0xA0)
	opF64Sub   = byte(0xA1)
	opF64Mul   = byte(0xA2)
	opF64Div   = byte(0xA3)
	opCall     = byte(0x10)
	opEnd      = byte(0x0B)
)

// hostModuleName is the import module providing the unary functions wasm
// has no native instruction for
const hostModuleName = "math"

// ExportName is the name under which the compiled function is exported
const ExportName = "eval"

type hostFun struct {
	name string
	fn   func(float64) float64
}

// import order fixes the function indices of the emitted call instructions
var hostFuns = []hostFun{
	{"acos", math.Acos},
	{"asin", math.Asin},
	{"atan", math.Atan},
	{"cos", math.Cos},
	{"cosh", math.Cosh},
	{"exp", math.Exp},
	{"log10", math.Log10},
	{"sin", math.Sin},
	{"sinh", math.Sinh},
	{"tan", math.Tan},
	{"tanh", math.Tanh},
}

// hostFunIndex returns the import function index implementing op, or false
// when op lowers to a native instruction
func hostFunIndex(op expr.UnaryOp) (uint32, bool) {
	switch op {
	case expr.Acos:
		return 0, true
	case expr.Asin:
		return 1, true
	case expr.Atan:
		return 2, true
	case expr.Cos:
		return 3, true
	case expr.Cosh:
		return 4, true
	case expr.Exp:
		return 5, true
	case expr.Log10:
		return 6, true
	case expr.Sin:
		return 7, true
	case expr.Sinh:
		return 8, true
	case expr.Sqrt:
		return 0, false
	case expr.Tan:
		return 9, true
	case expr.Tanh:
		return 10, true
	}
	panic(fmt.Sprintf("hostFunIndex: wrong operator %d", byte(op)))
}

func opcodeForBinary(op expr.BinaryOp) byte {
	switch op {
	case expr.Plus:
		return opF64Add
	case expr.Minus:
		return opF64Sub
	case expr.Mult:
		return opF64Mul
	case expr.Div:
		return opF64Div
	}
	panic(fmt.Sprintf("opcodeForBinary: wrong operator %d", byte(op)))
}

func appendUleb128(b []byte, v uint64) []byte {
	for {
		c := byte(v & 0x7F)
		v >>= 7
		if v != 0 {
			c |= 0x80
		}
		b = append(b, c)
		if v == 0 {
			return b
		}
	}
}

func appendName(b []byte, name string) []byte {
	b = appendUleb128(b, uint64(len(name)))
	return append(b, []byte(name)...)
}

func appendSection(b []byte, id byte, content []byte) []byte {
	b = append(b, id)
	b = appendUleb128(b, uint64(len(content)))
	return append(b, content...)
}

// moduleBytes wraps an already emitted function body into a complete module:
// type section with the host function type (f64)->f64 and the function type
// (f64 x numParams)->f64, the host imports, one function exporting "eval"
func moduleBytes(numParams int, body []byte) []byte {
	ret := []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00} // magic, version

	// type section: type 0 is (f64)->f64, type 1 is the function signature
	sec := appendUleb128(nil, 2)
	sec = append(sec, typeFunc)
	sec = appendUleb128(sec, 1)
	sec = append(sec, typeF64)
	sec = appendUleb128(sec, 1)
	sec = append(sec, typeF64)
	sec = append(sec, typeFunc)
	sec = appendUleb128(sec, uint64(numParams))
	for i := 0; i < numParams; i++ {
		sec = append(sec, typeF64)
	}
	sec = appendUleb128(sec, 1)
	sec = append(sec, typeF64)
	ret = appendSection(ret, secType, sec)

	// import section: the host math functions, indices 0..len-1
	sec = appendUleb128(nil, uint64(len(hostFuns)))
	for _, hf := range hostFuns {
		sec = appendName(sec, hostModuleName)
		sec = appendName(sec, hf.name)
		sec = append(sec, 0x00) // func import
		sec = appendUleb128(sec, 0)
	}
	ret = appendSection(ret, secImport, sec)

	// function section: one function of type 1
	sec = appendUleb128(nil, 1)
	sec = appendUleb128(sec, 1)
	ret = appendSection(ret, secFunction, sec)

	// export section: "eval" is the function after the imports
	sec = appendUleb128(nil, 1)
	sec = appendName(sec, ExportName)
	sec = append(sec, 0x00) // func export
	sec = appendUleb128(sec, uint64(len(hostFuns)))
	ret = appendSection(ret, secExport, sec)

	// code section: no locals, the body, end
	code := appendUleb128(nil, 0)
	code = append(code, body...)
	code = append(code, opEnd)
	sec = appendUleb128(nil, 1)
	sec = appendUleb128(sec, uint64(len(code)))
	sec = append(sec, code...)
	ret = appendSection(ret, secCode, sec)

	return ret
}

func appendF64Const(b []byte, v float64) []byte {
	b = append(b, opF64Const)
	return append(b, easyjit.EncodeFloat64(v)...)
}
