package arm64asm

// This file is the instruction encoder component: one routine per supported
// AArch64 form, each emitting exactly one 32-bit little-endian word by
// building its ARM ARM bit template with Pack/MustPack. Every encoding here
// is bit-for-bit the same template spec.md §4.2 documents (and the original
// Rust assembler.rs/Arm64Writer this module was distilled from emits), so
// hex-reference round-trip tests can check them directly.

// imm12Max is the largest value that fits the 12-bit unsigned immediate
// field used by LDR/STR (unsigned offset) and ADD/SUB (immediate).
const imm12Max = 1<<12 - 1

// EncodeMovReg encodes "MOV <Xd>, <Xm>" (64-bit), the ORR-shifted-register
// alias with Rn=XZR.
func EncodeMovReg(dst, src Reg) uint32 {
	return MustPack([]Field{
		{0b10101010000, 11},
		{uint64(src), 5},
		{0b00000011111, 11},
		{uint64(dst), 5},
	})
}

// EncodeMovz encodes "MOVZ <Xd>, #imm16" (hw=0, i.e. no left shift). Used for
// the low halfword of a 64-bit immediate load.
func EncodeMovz(dst Reg, imm16 uint16) uint32 {
	return MustPack([]Field{
		{0b11010010100, 11},
		{uint64(imm16), 16},
		{uint64(dst), 5},
	})
}

// EncodeMovk encodes "MOVK <Xd>, #imm16, LSL #(hw*16)" for hw in [1,3],
// inserting imm16 into the hw'th halfword without touching the others.
func EncodeMovk(dst Reg, imm16 uint16, hw uint8) uint32 {
	return MustPack([]Field{
		{0b111100101, 9},
		{uint64(hw), 2},
		{uint64(imm16), 16},
		{uint64(dst), 5},
	})
}

// EncodeStrImm encodes "STR <Xt>, [<Xn>, #(imm12*8)]" (64-bit, unsigned
// offset). imm12 is the raw index in 8-byte units, asserted below 2^12 by
// the caller: the hardware's unsigned-offset form implicitly scales it by 8,
// which is exactly the addressing this VM's 8-byte Value array needs.
func EncodeStrImm(base Reg, imm12 uint16, src Reg) uint32 {
	return MustPack([]Field{
		{0b1111100100, 10},
		{uint64(imm12), 12},
		{uint64(base), 5},
		{uint64(src), 5},
	})
}

// EncodeLdrImm encodes "LDR <Xt>, [<Xn>, #(imm12*8)]" (64-bit, unsigned
// offset). See EncodeStrImm for the scaling note.
func EncodeLdrImm(dst, base Reg, imm12 uint16) uint32 {
	return MustPack([]Field{
		{0b1111100101, 10},
		{uint64(imm12), 12},
		{uint64(base), 5},
		{uint64(dst), 5},
	})
}

// EncodeAddImm encodes "ADD <Xd>, <Xn>, #imm12" (no shift).
func EncodeAddImm(dst, src Reg, imm12 uint16) uint32 {
	return MustPack([]Field{
		{0b1001000100, 10},
		{uint64(imm12), 12},
		{uint64(src), 5},
		{uint64(dst), 5},
	})
}

// EncodeSubImm encodes "SUB <Xd>, <Xn>, #imm12" (no shift).
func EncodeSubImm(dst, src Reg, imm12 uint16) uint32 {
	return MustPack([]Field{
		{0b1101000100, 10},
		{uint64(imm12), 12},
		{uint64(src), 5},
		{uint64(dst), 5},
	})
}

// EncodeCmpReg encodes "CMP <Xn>, <Xm>" (SUBS XZR, Xn, Xm, shift amount 0).
// Flags are set as if computing Xn - Xm: the condition LT is true iff
// Xn < Xm signed.
func EncodeCmpReg(n, m Reg) uint32 {
	return MustPack([]Field{
		{0b11101011000, 11},
		{uint64(m), 5},
		{0, 6},
		{uint64(n), 5},
		{0b11111, 5},
	})
}

// EncodeCmpImm encodes "CMP <Xn>, #imm12" (SUBS XZR, Xn, #imm12).
func EncodeCmpImm(n Reg, imm12 uint16) uint32 {
	return MustPack([]Field{
		{0b1111000100, 10},
		{uint64(imm12), 12},
		{uint64(n), 5},
		{0b11111, 5},
	})
}

// EncodeCsetLT encodes "CSET <Xd>, LT": the CSINC alias with Rn=Rm=XZR and
// the inverted condition (GE) in the cond field, so Xd = 1 iff LT holds.
// This backend only ever emits LT, per spec.md §4.2.
func EncodeCsetLT(dst Reg) uint32 {
	return MustPack([]Field{
		{0b1001101010011111, 16},
		{uint64(condLT ^ 1), 4},
		{0b0111111, 7},
		{uint64(dst), 5},
	})
}

// EncodeB encodes an unconditional "B" with a placeholder 26-bit offset; the
// branch linker rewrites imm26 in place once the target's offset is known.
func EncodeB(imm26 uint32) uint32 {
	return MustPack([]Field{
		{0b000101, 6},
		{uint64(imm26), 26},
	})
}

// EncodeBEQ encodes "B.EQ" with a placeholder 19-bit offset; used only for
// the false-branch of JumpConditional per spec.md §4.3.
func EncodeBEQ(imm19 uint32) uint32 {
	return MustPack([]Field{
		{0b01010100, 8},
		{uint64(imm19), 19},
		{uint64(condEQ), 5},
	})
}

// EncodeBLR encodes "BLR <Xn>" (branch with link to register).
func EncodeBLR(target Reg) uint32 {
	return MustPack([]Field{
		{0b1101011000111111000000, 22},
		{uint64(target), 5},
		{0, 5},
	})
}

// EncodeRET encodes "RET" (branch to LR, X30).
func EncodeRET() uint32 {
	return MustPack([]Field{
		{0b1101011001011111000000, 22},
		{uint64(LR), 5},
		{0, 5},
	})
}

// EncodeBRK encodes "BRK #imm16".
func EncodeBRK(imm16 uint16) uint32 {
	return MustPack([]Field{
		{0b11010100001, 11},
		{uint64(imm16), 16},
		{0, 5},
	})
}

// EncodeNOP encodes "NOP".
func EncodeNOP() uint32 {
	return 0b11010101000000110010000000011111
}
