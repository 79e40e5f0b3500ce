package compiler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cheekyjit/cheekyjit/internal/arm64asm"
	"github.com/cheekyjit/cheekyjit/internal/vm"
)

func TestLink_ForwardUnconditionalBranch(t *testing.T) {
	prog := vm.NewProgram()
	b0 := prog.MakeBlock()
	b1 := prog.MakeBlock()
	prog.Append(b0, vm.Instruction{Op: vm.OpJump, Target: b1})
	prog.Append(b1, vm.Instruction{Op: vm.OpExit})

	asm := Lower(prog, 0)
	require.NoError(t, Link(asm, prog))

	word := asm.Read32(0)
	require.Equal(t, uint32(0b000101), word>>26)
	imm26 := int32(word<<6) >> 6 // sign-extend the low 26 bits
	wantWords := int32(prog.Block(b1).Offset-0) / 4
	require.Equal(t, wantWords, imm26)
}

func TestLink_BackwardConditionalBranch(t *testing.T) {
	prog := vm.NewProgram()
	loop := prog.MakeBlock()
	body := prog.MakeBlock()
	after := prog.MakeBlock()
	prog.Append(loop, vm.Instruction{Op: vm.OpJumpConditional, TrueTarget: body, FalseTarget: after})
	prog.Append(body, vm.Instruction{Op: vm.OpJump, Target: loop})
	prog.Append(after, vm.Instruction{Op: vm.OpExit})

	asm := Lower(prog, 0)
	require.NoError(t, Link(asm, prog))

	// body's unconditional jump back to loop: a negative word delta.
	backBranchAt := prog.Block(body).Offset
	word := asm.Read32(backBranchAt)
	require.Equal(t, uint32(0b000101), word>>26)
	imm26 := int32(word<<6) >> 6
	require.Negative(t, imm26)

	wantWords := int32(prog.Block(loop).Offset-backBranchAt) / 4
	require.Equal(t, wantWords, imm26)
}

func TestLink_UnknownOpcodeAtRecordedSiteIsReported(t *testing.T) {
	prog := vm.NewProgram()
	b0 := prog.MakeBlock()
	prog.Append(b0, vm.Instruction{Op: vm.OpExit})
	asm := Lower(prog, 0)

	// Fabricate a bogus jump site pointing at the RET we just emitted.
	prog.Block(b0).JumpsToHere = append(prog.Block(b0).JumpsToHere, 0)

	err := Link(asm, prog)
	require.ErrorIs(t, err, ErrUnknownBranchOpcode)
}

func TestSignedFit_RejectsOutOfRangeDelta(t *testing.T) {
	_, err := signedFit(1<<20, 19)
	require.ErrorIs(t, err, ErrBranchOutOfRange)

	ok, err := signedFit(-1, 19)
	require.NoError(t, err)
	require.Equal(t, uint32(1<<19-1), ok)
}

// TestSignedFit_NegativeFiveEncodesToReferenceHex pins the exact backward
// branch encoding spec.md §8 names: a word delta of -5 packed into the
// unconditional B form's 26-bit field is 0x3FFFFFB.
func TestSignedFit_NegativeFiveEncodesToReferenceHex(t *testing.T) {
	imm26, err := signedFit(-5, imm26Bits)
	require.NoError(t, err)
	require.Equal(t, uint32(0x3FFFFFB), imm26)
}

// TestLink_BackwardBranch_MatchesReferenceDeltaAndEncoding builds a branch
// site exactly 5 words after its target and checks the literal patched hex
// value spec.md §8 scenario 6 names for a delta_words=-5 backward branch.
func TestLink_BackwardBranch_MatchesReferenceDeltaAndEncoding(t *testing.T) {
	asm := arm64asm.NewAssembler()
	for i := 0; i < 5; i++ {
		asm.Nop()
	}
	post := asm.Jump()
	branchAt := post - 4 // byte offset 20, five words after the target at offset 0

	require.NoError(t, linkOne(asm, branchAt, 0))

	word := asm.Read32(branchAt)
	require.Equal(t, uint32(0b000101), word>>26)
	require.Equal(t, uint32(0x3FFFFFB), word&(1<<26-1))
}
