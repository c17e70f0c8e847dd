package engine

import (
	"fmt"

	"github.com/easyjit/easyjit"
)

// Program collects instructions one by one and assembles them into the flat
// byte string the engine runs. Instructions are started with OP and extended
// with operand bytes:
//
//	NewProgram().
//		OP(OP_CONST).F64(2).
//		OP(OP_PARAM).Slot(0).
//		OP(OP_MUL).
//		OP(OP_RET).
//		Assemble()
type Program struct {
	instructions []instruction
}

type instruction struct {
	opcode OpCode
	par    []byte
}

func NewProgram() *Program {
	return &Program{
		instructions: make([]instruction, 0),
	}
}

// OP starts new instruction
func (p *Program) OP(c OpCode) *Program {
	if !c.Valid() {
		panic(fmt.Errorf("error @ instruction #%d: wrong opcode 0x%02X", len(p.instructions), byte(c)))
	}
	p.instructions = append(p.instructions, instruction{
		opcode: c,
		par:    nil,
	})
	return p
}

// F64 appends a float64 operand to the current instruction
func (p *Program) F64(v float64) *Program {
	p.appendPar(easyjit.EncodeFloat64(v)...)
	return p
}

// Slot appends a parameter slot operand to the current instruction
func (p *Program) Slot(s byte) *Program {
	p.appendPar(s)
	return p
}

func (p *Program) appendPar(b ...byte) {
	if len(p.instructions) == 0 {
		panic("operand bytes before first instruction")
	}
	last := &p.instructions[len(p.instructions)-1]
	last.par = append(last.par, b...)
}

// NumInstructions returns the number of instructions collected so far
func (p *Program) NumInstructions() int {
	return len(p.instructions)
}

// Assemble validates the program and returns the executable code.
// Validated invariants: every instruction carries exactly the operand bytes
// its opcode expects, the stack never underflows, OP_RET occurs exactly
// once, as the last instruction, with exactly one value on the stack
func (p *Program) Assemble() ([]byte, error) {
	size := 0
	depth := 0
	for i, instr := range p.instructions {
		dscr := opcodes[instr.opcode]
		if len(instr.par) != dscr.parLen {
			return nil, fmt.Errorf("assemble: instruction #%d (%s): %d operand bytes expected, got %d",
				i, dscr.name, dscr.parLen, len(instr.par))
		}
		if instr.opcode == OP_RET && i != len(p.instructions)-1 {
			return nil, fmt.Errorf("assemble: %s @ instruction #%d is not the last one", dscr.name, i)
		}
		depth -= dscr.numPop
		if depth < 0 {
			return nil, fmt.Errorf("assemble: stack underflow @ instruction #%d (%s)", i, dscr.name)
		}
		depth += dscr.numPush
		size += 1 + dscr.parLen
	}
	if len(p.instructions) == 0 || p.instructions[len(p.instructions)-1].opcode != OP_RET {
		return nil, fmt.Errorf("assemble: program does not end with OP_RET")
	}
	if depth != 0 {
		return nil, fmt.Errorf("assemble: %d values left on the stack", depth)
	}
	ret := make([]byte, 0, size)
	for _, instr := range p.instructions {
		ret = append(ret, byte(instr.opcode))
		ret = append(ret, instr.par...)
	}
	return ret, nil
}
