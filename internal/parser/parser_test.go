package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cheekyjit/cheekyjit/internal/vm"
)

func TestParse_SingleBlockUnaryInstructions(t *testing.T) {
	prog, err := Parse("ENTRY:\n    INCR\n    BREAK\n    RET\n")
	require.NoError(t, err)
	require.Equal(t, 1, prog.Len())
	instrs := prog.Block(0).Instructions
	require.Len(t, instrs, 3)
	require.Equal(t, vm.OpIncrement, instrs[0].Op)
	require.Equal(t, vm.OpBreakpoint, instrs[1].Op)
	require.Equal(t, vm.OpExit, instrs[2].Op)
}

func TestParse_OperandForms(t *testing.T) {
	src := `ENTRY:
    LOAD_IMM 123
    LOAD_REG r4
    STORE_REG r5
    GET_LOCAL .2
    SET_LOCAL .3
    LESS_THAN r1
    RET
`
	prog, err := Parse(src)
	require.NoError(t, err)
	instrs := prog.Block(0).Instructions
	require.Equal(t, vm.Value(123), instrs[0].Imm)
	require.Equal(t, vm.Register(4), instrs[1].Reg)
	require.Equal(t, vm.Register(5), instrs[2].Reg)
	require.Equal(t, vm.Local(2), instrs[3].Local)
	require.Equal(t, vm.Local(3), instrs[4].Local)
	require.Equal(t, vm.Register(1), instrs[5].Reg)
}

func TestParse_JumpAndJumpEitherCreateForwardReferencedBlocks(t *testing.T) {
	src := `ENTRY:
    JUMP_EITHER #A #B
A:
    RET
B:
    RET
`
	prog, err := Parse(src)
	require.NoError(t, err)
	require.Equal(t, 3, prog.Len())

	entry := prog.Block(0).Instructions[0]
	require.Equal(t, vm.OpJumpConditional, entry.Op)
	require.Equal(t, vm.BlockID(1), entry.TrueTarget)
	require.Equal(t, vm.BlockID(2), entry.FalseTarget)
}

func TestParse_StripsCommentsAndBlankLines(t *testing.T) {
	src := "ENTRY: // the only block\n\n    INCR // count once\n\n    RET\n"
	prog, err := Parse(src)
	require.NoError(t, err)
	require.Len(t, prog.Block(0).Instructions, 2)
}

func TestParse_RejectsMissingBlockLabel(t *testing.T) {
	_, err := Parse("INCR\n")
	require.Error(t, err)
}

func TestParse_RejectsUnknownInstruction(t *testing.T) {
	_, err := Parse("ENTRY:\n    FROB r0\n")
	require.Error(t, err)
}

func TestParse_RejectsDuplicateBlockLabel(t *testing.T) {
	_, err := Parse("A:\n  RET\nA:\n  RET\n")
	require.Error(t, err)
}

func TestParse_RejectsUndeclaredBlockReference(t *testing.T) {
	_, err := Parse("ENTRY:\n    JUMP #NOWHERE\n")
	require.Error(t, err)
}

func TestParse_Nop(t *testing.T) {
	prog, err := Parse("ENTRY:\n    NOP\n    NOP\n    NOP\n    RET\n")
	require.NoError(t, err)
	instrs := prog.Block(0).Instructions
	require.Len(t, instrs, 4)
	for _, instr := range instrs[:3] {
		require.Equal(t, vm.OpNop, instr.Op)
	}
	require.Equal(t, vm.OpExit, instrs[3].Op)
}

func TestParse_LoadRandom(t *testing.T) {
	prog, err := Parse("ENTRY:\n    LOAD_RANDOM 100\n    RET\n")
	require.NoError(t, err)
	instr := prog.Block(0).Instructions[0]
	require.Equal(t, vm.OpLoadRandom, instr.Op)
	require.Equal(t, vm.Value(100), instr.Imm)
}
