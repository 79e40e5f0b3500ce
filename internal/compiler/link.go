package compiler

import (
	"errors"
	"fmt"

	"github.com/cheekyjit/cheekyjit/internal/arm64asm"
	"github.com/cheekyjit/cheekyjit/internal/vm"
)

// ErrBranchOutOfRange is returned when a resolved branch delta does not fit
// the placeholder's immediate field (imm26 for B, imm19 for B.cond).
var ErrBranchOutOfRange = errors.New("compiler: branch target out of encodable range")

// ErrUnknownBranchOpcode is returned when a recorded jump site does not hold
// one of the two placeholder forms Lower ever emits (B or B.EQ). Seeing this
// means a jump marker was recorded at the wrong offset — a bug in Lower, not
// in the program being compiled.
var ErrUnknownBranchOpcode = errors.New("compiler: jump site does not hold a recognized placeholder branch")

// ErrMisalignedBranch is returned when a branch delta is not a multiple of 4
// bytes, which cannot happen unless block offsets were corrupted.
var ErrMisalignedBranch = errors.New("compiler: branch delta is not word-aligned")

const (
	unconditionalBTop6 = 0b000101
	bCondTop8          = 0b01010100

	imm26Bits = 26
	imm19Bits = 19
)

// Link performs the branch-linking pass of spec.md §4.5: for every block,
// for every placeholder branch site recorded against it by Lower, compute
// the PC-relative word delta from the branch instruction to the block's
// final offset and back-patch the placeholder's immediate field in place.
//
// All arithmetic is done in signed 64-bit regardless of host word size, so a
// delta too large for the branch's immediate field (imm26 for B, imm19 for
// B.cond) is reported as ErrBranchOutOfRange instead of being silently
// truncated.
func Link(a *arm64asm.Assembler, prog *vm.Program) error {
	for _, b := range prog.Blocks {
		for _, site := range b.JumpsToHere {
			if err := linkOne(a, site, b.Offset); err != nil {
				return err
			}
		}
	}
	return nil
}

func linkOne(a *arm64asm.Assembler, branchAt, targetOffset int) error {
	word := a.Read32(branchAt)

	deltaBytes := int64(targetOffset) - int64(branchAt)
	if deltaBytes%4 != 0 {
		return fmt.Errorf("%w: delta=%d at offset %d", ErrMisalignedBranch, deltaBytes, branchAt)
	}
	deltaWords := deltaBytes / 4

	switch {
	case word>>26 == unconditionalBTop6:
		imm, err := signedFit(deltaWords, imm26Bits)
		if err != nil {
			return fmt.Errorf("%w: unconditional branch at %d to %d", err, branchAt, targetOffset)
		}
		patched := (word &^ (1<<imm26Bits - 1)) | imm
		a.Patch32(branchAt, patched)

	case word>>24 == bCondTop8:
		imm, err := signedFit(deltaWords, imm19Bits)
		if err != nil {
			return fmt.Errorf("%w: conditional branch at %d to %d", err, branchAt, targetOffset)
		}
		patched := (word &^ (uint32(1<<imm19Bits-1) << 5)) | (imm << 5)
		a.Patch32(branchAt, patched)

	default:
		return fmt.Errorf("%w: word=%#08x at offset %d", ErrUnknownBranchOpcode, word, branchAt)
	}
	return nil
}

// signedFit packs a signed word-delta into the low bits-wide field of a
// branch immediate, returning ErrBranchOutOfRange if it does not fit in a
// bits-wide two's complement value.
func signedFit(deltaWords int64, bits uint) (uint32, error) {
	lo := -(int64(1) << (bits - 1))
	hi := int64(1)<<(bits-1) - 1
	if deltaWords < lo || deltaWords > hi {
		return 0, ErrBranchOutOfRange
	}
	mask := uint32(1)<<bits - 1
	return uint32(deltaWords) & mask, nil
}
