// Package engine is the portable backend: it runs generated code on a small
// float64 stack machine. Code is a flat byte string of instructions in
// post-order, assembled by Program and executed by Engine one instruction
// per cycle. The same code can be run any number of times, each run gets a
// fresh stack
package engine

import (
	"fmt"
	"strings"

	"github.com/easyjit/easyjit"
	"go.uber.org/zap"
)

type Engine struct {
	remainingCode []byte
	params        []float64
	stack         []float64
	instrCounter  int
	result        float64
	exit          bool
	log           *zap.SugaredLogger
}

// Run executes assembled code against the given argument vector and returns
// the single result. The stack grows with the program's depth, which the
// assembler has already proven balanced. The optional logger traces every
// instruction
func Run(code []byte, args []float64, log ...*zap.SugaredLogger) float64 {
	e := Engine{
		remainingCode: code,
		params:        args,
		stack:         make([]float64, 0, 16),
	}
	if len(log) > 0 {
		e.log = log[0]
	}
	for e.run1Cycle() {
	}
	return e.result
}

func (e *Engine) Push(v float64) {
	e.stack = append(e.stack, v)
}

func (e *Engine) Pop() float64 {
	if len(e.stack) == 0 {
		panic("Pop: stack is empty")
	}
	ret := e.stack[len(e.stack)-1]
	e.stack = e.stack[:len(e.stack)-1]
	return ret
}

func (e *Engine) Top() float64 {
	if len(e.stack) == 0 {
		panic("Top: stack is empty")
	}
	return e.stack[len(e.stack)-1]
}

func (e *Engine) Param(slot byte) float64 {
	if int(slot) >= len(e.params) {
		panic(fmt.Sprintf("Param: wrong parameter slot #%d", slot))
	}
	return e.params[slot]
}

func (e *Engine) run1Cycle() bool {
	// assembled code is always OP_RET-terminated, so the code never runs out
	// before exit
	instrRunner, par, rest := ParseInstruction(e.remainingCode)
	opcode := OpCode(e.remainingCode[0])
	instrRunner(e, par)
	e.remainingCode = rest
	e.instrCounter++
	if e.log != nil {
		e.log.Debugf("#%d %s stack depth: %d", e.instrCounter, opcode, len(e.stack))
	}
	return !e.exit
}

// Disassemble renders assembled code as one instruction per line, for
// tracing and tests
func Disassemble(code []byte) string {
	var sb strings.Builder
	for len(code) > 0 {
		opcode := OpCode(code[0])
		_, par, rest := ParseInstruction(code)
		switch opcode {
		case OP_CONST:
			sb.WriteString(fmt.Sprintf("%s %g\n", opcode.Name(), easyjit.DecodeFloat64(par)))
		case OP_PARAM:
			sb.WriteString(fmt.Sprintf("%s #%d\n", opcode.Name(), par[0]))
		default:
			sb.WriteString(opcode.Name())
			sb.WriteByte('\n')
		}
		code = rest
	}
	return sb.String()
}
