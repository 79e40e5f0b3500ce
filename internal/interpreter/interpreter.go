// Package interpreter is the tree-walking reference implementation of the
// register machine spec.md §4.7 describes: the test oracle every compiled
// program's output is checked against (spec.md §8 invariant 5), and the
// execution path --no-jit selects.
package interpreter

import (
	"errors"
	"fmt"

	"github.com/cheekyjit/cheekyjit/internal/vm"
	"github.com/cheekyjit/cheekyjit/internal/vmrand"
)

// ErrBreakpoint is returned when execution reaches a BREAK instruction.
var ErrBreakpoint = errors.New("interpreter: hit breakpoint")

// accumIndex mirrors compiler.accumIndex: the accumulator is VM register 0.
const accumIndex = 0

// Run walks prog starting at its entry block (block 0), mutating m in place,
// until an EXIT instruction is reached. It returns ErrBreakpoint (wrapped
// with the block/instruction position) if it hits a BREAK instruction
// first, or an error if the program jumps to a nonexistent block — mirroring
// the host-side validation the compiler's own block table already gives the
// JIT path for free.
func Run(prog *vm.Program, m *vm.VM) error {
	if prog.Len() == 0 {
		return nil
	}
	block := vm.BlockID(0)
	for {
		if int(block) < 0 || int(block) >= prog.Len() {
			return fmt.Errorf("interpreter: jump to nonexistent block %d", block)
		}
		b := prog.Block(block)
		next, halt, err := runBlock(b, m)
		if err != nil {
			return err
		}
		if halt {
			return nil
		}
		block = next
	}
}

// runBlock executes every instruction in b in order. It returns the next
// block to run and halt=true once an EXIT is reached.
func runBlock(b *vm.BasicBlock, m *vm.VM) (next vm.BlockID, halt bool, err error) {
	for i, instr := range b.Instructions {
		switch instr.Op {
		case vm.OpLoadImmediate:
			m.SetAccum(instr.Imm)

		case vm.OpLoad:
			m.SetAccum(m.Registers[instr.Reg])

		case vm.OpStore:
			m.Registers[instr.Reg] = m.Accum()

		case vm.OpGetLocal:
			m.SetAccum(m.Locals[instr.Local])

		case vm.OpSetLocal:
			m.Locals[instr.Local] = m.Accum()

		case vm.OpIncrement:
			m.SetAccum(m.Accum() + 1)

		case vm.OpLessThan:
			// registers[operand] < accumulator_before, signed — the same
			// direction the compiled CMP/CSET sequence computes, so the two
			// execution paths agree on every comparison.
			accBefore := int64(m.Accum())
			operand := int64(m.Registers[instr.Reg])
			if operand < accBefore {
				m.SetAccum(1)
			} else {
				m.SetAccum(0)
			}

		case vm.OpLoadRandom:
			m.SetAccum(vm.Value(vmrand.Next(uint64(instr.Imm))))

		case vm.OpNop:
			// no-op

		case vm.OpBreakpoint:
			return 0, false, fmt.Errorf("%w: block offset %d, instruction %d", ErrBreakpoint, b.Offset, i)

		case vm.OpExit:
			return 0, true, nil

		case vm.OpJump:
			return instr.Target, false, nil

		case vm.OpJumpConditional:
			if m.Accum() != 0 {
				return instr.TrueTarget, false, nil
			}
			return instr.FalseTarget, false, nil

		default:
			return 0, false, fmt.Errorf("interpreter: unhandled opcode %s", instr.Op)
		}
	}
	return 0, false, fmt.Errorf("interpreter: fell off the end of a block without a terminator")
}
