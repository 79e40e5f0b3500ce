package arm64asm

// Reg names one of the eight architectural roles this JIT backend uses.
// There is no general register allocator (spec.md Non-goals): this is a
// fixed calling convention, not a free choice of register.
type Reg byte

const (
	// VMBase holds the *VM pointer (X0).
	VMBase Reg = 0
	// RegistersBase holds the base pointer of the VM's registers array (X1).
	RegistersBase Reg = 1
	// LocalsBase holds the base pointer of the VM's locals array (X2).
	LocalsBase Reg = 2
	// scratch slot 3 (X3) is intentionally unused, matching the teacher
	// convention of reserving one caller-saved register for the prologue.

	// GPR0 is scratch register A (X4).
	GPR0 Reg = 4
	// GPR1 is scratch register B (X5).
	GPR1 Reg = 5

	// LR is the link register (X30), holding the return address.
	LR Reg = 30
	// SP is the stack pointer (X31 in most encodings, SP in load/store forms).
	SP Reg = 31
	// XZR is the zero register, encoded identically to SP (X31) but
	// interpreted as the constant zero outside load/store addressing.
	XZR Reg = 31
)

// cond is an AArch64 condition code (bits [3:0] of B.cond; CSET, a CSINC
// alias, stores the inverted code in bits [15:12]).
type cond byte

const (
	condEQ cond = 0b0000
	condLT cond = 0b1011
)
