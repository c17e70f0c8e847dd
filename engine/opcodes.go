package engine

import (
	"fmt"

	"github.com/easyjit/easyjit"
	"github.com/easyjit/easyjit/expr"
)

// OpCode is one byte. The operand bytes, if any, immediately follow it in
// the code
type OpCode byte

const (
	OP_RET = OpCode(iota)
	OP_CONST
	OP_PARAM
	OP_ADD
	OP_SUB
	OP_MUL
	OP_DIV
	OP_ACOS
	OP_ASIN
	OP_ATAN
	OP_COS
	OP_COSH
	OP_EXP
	OP_LOG10
	OP_SIN
	OP_SINH
	OP_SQRT
	OP_TAN
	OP_TANH
)

// InstructionRunner executes one parsed instruction against the engine
type InstructionRunner func(e *Engine, par []byte)

type opcodeDescriptor struct {
	name   string
	parLen int
	// how many stack values the instruction pops and pushes.
	// used by the assembler to validate stack balance
	numPop  int
	numPush int
	runner  InstructionRunner
}

var opcodes = map[OpCode]opcodeDescriptor{
	OP_RET:   {"OP_RET", 0, 1, 0, opRetRunner},
	OP_CONST: {"OP_CONST", 8, 0, 1, opConstRunner},
	OP_PARAM: {"OP_PARAM", 1, 0, 1, opParamRunner},
	OP_ADD:   {"OP_ADD", 0, 2, 1, binOpRunner(expr.Plus)},
	OP_SUB:   {"OP_SUB", 0, 2, 1, binOpRunner(expr.Minus)},
	OP_MUL:   {"OP_MUL", 0, 2, 1, binOpRunner(expr.Mult)},
	OP_DIV:   {"OP_DIV", 0, 2, 1, binOpRunner(expr.Div)},
	OP_ACOS:  {"OP_ACOS", 0, 1, 1, unOpRunner(expr.Acos)},
	OP_ASIN:  {"OP_ASIN", 0, 1, 1, unOpRunner(expr.Asin)},
	OP_ATAN:  {"OP_ATAN", 0, 1, 1, unOpRunner(expr.Atan)},
	OP_COS:   {"OP_COS", 0, 1, 1, unOpRunner(expr.Cos)},
	OP_COSH:  {"OP_COSH", 0, 1, 1, unOpRunner(expr.Cosh)},
	OP_EXP:   {"OP_EXP", 0, 1, 1, unOpRunner(expr.Exp)},
	OP_LOG10: {"OP_LOG10", 0, 1, 1, unOpRunner(expr.Log10)},
	OP_SIN:   {"OP_SIN", 0, 1, 1, unOpRunner(expr.Sin)},
	OP_SINH:  {"OP_SINH", 0, 1, 1, unOpRunner(expr.Sinh)},
	OP_SQRT:  {"OP_SQRT", 0, 1, 1, unOpRunner(expr.Sqrt)},
	OP_TAN:   {"OP_TAN", 0, 1, 1, unOpRunner(expr.Tan)},
	OP_TANH:  {"OP_TANH", 0, 1, 1, unOpRunner(expr.Tanh)},
}

func (c OpCode) Valid() bool {
	_, found := opcodes[c]
	return found
}

func (c OpCode) Name() string {
	if dscr, found := opcodes[c]; found {
		return dscr.name
	}
	return "(wrong opcode)"
}

func (c OpCode) String() string {
	return fmt.Sprintf("%s(0x%02X)", c.Name(), byte(c))
}

// OpcodeForBinary maps the operator table 1:1 to opcodes
func OpcodeForBinary(op expr.BinaryOp) OpCode {
	switch op {
	case expr.Plus:
		return OP_ADD
	case expr.Minus:
		return OP_SUB
	case expr.Mult:
		return OP_MUL
	case expr.Div:
		return OP_DIV
	}
	panic(fmt.Sprintf("OpcodeForBinary: wrong operator %d", byte(op)))
}

// OpcodeForUnary maps the operator table 1:1 to opcodes
func OpcodeForUnary(op expr.UnaryOp) OpCode {
	switch op {
	case expr.Acos:
		return OP_ACOS
	case expr.Asin:
		return OP_ASIN
	case expr.Atan:
		return OP_ATAN
	case expr.Cos:
		return OP_COS
	case expr.Cosh:
		return OP_COSH
	case expr.Exp:
		return OP_EXP
	case expr.Log10:
		return OP_LOG10
	case expr.Sin:
		return OP_SIN
	case expr.Sinh:
		return OP_SINH
	case expr.Sqrt:
		return OP_SQRT
	case expr.Tan:
		return OP_TAN
	case expr.Tanh:
		return OP_TANH
	}
	panic(fmt.Sprintf("OpcodeForUnary: wrong operator %d", byte(op)))
}

// ParseInstruction returns the instruction runner, its parameter bytes and
// the remaining code. Malformed code panics: code reaches the engine only
// through the assembler
func ParseInstruction(code []byte) (InstructionRunner, []byte, []byte) {
	if len(code) == 0 {
		panic("ParseInstruction: unexpected end of code")
	}
	dscr, found := opcodes[OpCode(code[0])]
	if !found {
		panic(fmt.Sprintf("ParseInstruction: wrong opcode 0x%02X", code[0]))
	}
	if len(code) < 1+dscr.parLen {
		panic(fmt.Sprintf("ParseInstruction: unexpected end of code in %s parameters", dscr.name))
	}
	return dscr.runner, code[1 : 1+dscr.parLen], code[1+dscr.parLen:]
}

func opRetRunner(e *Engine, _ []byte) {
	e.result = e.Pop()
	e.exit = true
}

func opConstRunner(e *Engine, par []byte) {
	e.Push(easyjit.DecodeFloat64(par))
}

func opParamRunner(e *Engine, par []byte) {
	e.Push(e.Param(par[0]))
}

func binOpRunner(op expr.BinaryOp) InstructionRunner {
	return func(e *Engine, _ []byte) {
		right := e.Pop()
		left := e.Pop()
		e.Push(op.Apply(left, right))
	}
}

func unOpRunner(op expr.UnaryOp) InstructionRunner {
	return func(e *Engine, _ []byte) {
		e.Push(op.Apply(e.Pop()))
	}
}
