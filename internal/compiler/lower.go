// Package compiler implements the two-pass JIT backend of spec.md §4.4/§4.5:
// Lower walks the VM's control-flow graph once, emitting a native sequence
// per instruction and a placeholder branch per control-flow edge; Link then
// back-patches every placeholder once all block offsets are known.
package compiler

import (
	"fmt"

	"github.com/cheekyjit/cheekyjit/internal/arm64asm"
	"github.com/cheekyjit/cheekyjit/internal/vm"
)

// accumIndex is the VM register index backing the accumulator (vm.VM.Accum
// is simply Registers[0]); the lowering pass addresses it the same way it
// addresses any other VM register.
const accumIndex uint32 = 0

// Lower emits native code for every block of prog, in block order, and
// returns the assembler holding it. randomFnAddr is the host-callable
// address LOAD_RANDOM's call-into-host sequence branches to; it is ignored
// if prog contains no LOAD_RANDOM instruction.
//
// Each basic block's vm.BasicBlock.Offset is set to the byte offset its code
// starts at, and every JUMP/JUMP_EITHER records its placeholder branch site
// into the target block's JumpsToHere via InsertJumpMarker — Link consumes
// both in a second pass once every block's final offset is fixed.
func Lower(prog *vm.Program, randomFnAddr uint64) *arm64asm.Assembler {
	a := arm64asm.NewAssembler()
	for _, b := range prog.Blocks {
		b.Offset = a.Len()
		for _, instr := range b.Instructions {
			lowerInstruction(a, prog, instr, randomFnAddr)
		}
	}
	return a
}

func lowerInstruction(a *arm64asm.Assembler, prog *vm.Program, instr vm.Instruction, randomFnAddr uint64) {
	switch instr.Op {
	case vm.OpLoadImmediate:
		a.LoadImmediate64(arm64asm.GPR0, uint64(instr.Imm))
		a.StoreVMRegister(accumIndex, arm64asm.GPR0)

	case vm.OpLoad:
		a.LoadVMRegister(arm64asm.GPR0, uint32(instr.Reg))
		a.StoreVMRegister(accumIndex, arm64asm.GPR0)

	case vm.OpStore:
		a.LoadVMRegister(arm64asm.GPR0, accumIndex)
		a.StoreVMRegister(uint32(instr.Reg), arm64asm.GPR0)

	case vm.OpGetLocal:
		a.LoadVMLocal(arm64asm.GPR0, uint32(instr.Local))
		a.StoreVMRegister(accumIndex, arm64asm.GPR0)

	case vm.OpSetLocal:
		a.LoadVMRegister(arm64asm.GPR0, accumIndex)
		a.StoreVMLocal(uint32(instr.Local), arm64asm.GPR0)

	case vm.OpIncrement:
		a.LoadVMRegister(arm64asm.GPR0, accumIndex)
		a.Increment(arm64asm.GPR0)
		a.StoreVMRegister(accumIndex, arm64asm.GPR0)

	case vm.OpLessThan:
		// dst=GPR0 holds the accumulator's value taken before the
		// comparison, src=GPR1 holds the operand register's value;
		// LessThan(dst,src) leaves dst = (src < dst_old), i.e.
		// registers[operand] < accumulator_before — the sample loop
		// program's own counter check only terminates under this direction.
		a.LoadVMRegister(arm64asm.GPR0, accumIndex)
		a.LoadVMRegister(arm64asm.GPR1, uint32(instr.Reg))
		a.LessThan(arm64asm.GPR0, arm64asm.GPR1)
		a.StoreVMRegister(accumIndex, arm64asm.GPR0)

	case vm.OpLoadRandom:
		a.CallIntoHost(arm64asm.GPR0, randomFnAddr, uint64(instr.Imm))
		a.StoreVMRegister(accumIndex, arm64asm.GPR0)

	case vm.OpNop:
		a.Nop()

	case vm.OpBreakpoint:
		a.Brk()

	case vm.OpExit:
		a.Ret()

	case vm.OpJump:
		post := a.Jump()
		prog.Block(instr.Target).InsertJumpMarker(post)

	case vm.OpJumpConditional:
		a.LoadVMRegister(arm64asm.GPR0, accumIndex)
		falsePost := a.JumpConditional(arm64asm.GPR0)
		prog.Block(instr.FalseTarget).InsertJumpMarker(falsePost)
		truePost := a.Jump()
		prog.Block(instr.TrueTarget).InsertJumpMarker(truePost)

	default:
		panic(fmt.Sprintf("compiler: unhandled opcode %s", instr.Op))
	}
}
