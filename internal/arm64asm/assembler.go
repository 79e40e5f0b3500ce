package arm64asm

import "fmt"

// maxArrayIndex bounds a VM register/local index so it fits the 12-bit
// imm12 field of the scaled LDR/STR (unsigned offset) forms this backend
// uses: the hardware multiplies imm12 by 8 for a 64-bit transfer, so the
// raw index is usable directly as imm12 only while it stays under 2^12.
const maxArrayIndex = 1<<12 - 1

// Assembler is the façade spec.md §4.3 describes: semantically-named
// operations (load/store a VM register, increment, less-than, push/pop,
// call-into-host, jump, jump-conditional) built on top of the raw
// instruction encoder, managing the scratch-register/stack calling
// convention so the lowering pass never touches a bit template directly.
type Assembler struct {
	buf CodeBuffer
}

// NewAssembler returns an empty assembler.
func NewAssembler() *Assembler { return &Assembler{} }

// Len returns the number of bytes emitted so far.
func (a *Assembler) Len() int { return a.buf.Len() }

// Bytes returns the assembled code so far. The slice aliases the
// assembler's internal buffer and must not be retained across further
// emits.
func (a *Assembler) Bytes() []byte { return a.buf.Bytes() }

// Patch32 rewrites the 32-bit word at offset. Used only by the branch
// linker.
func (a *Assembler) Patch32(offset int, word uint32) { a.buf.Patch32(offset, word) }

// Read32 reads the 32-bit word at offset. Used only by the branch linker to
// recover a placeholder branch's opcode family before rewriting it.
func (a *Assembler) Read32(offset int) uint32 { return a.buf.Read32(offset) }

func assertArrayIndex(idx uint32) {
	if idx > maxArrayIndex {
		panic(fmt.Sprintf("arm64asm: array index %d exceeds imm12 range (max %d)", idx, maxArrayIndex))
	}
}

// LoadImmediate64 loads a 64-bit constant into dst: a MOVZ for the low
// halfword followed by a MOVK per non-zero upper halfword (up to three).
func (a *Assembler) LoadImmediate64(dst Reg, imm uint64) {
	a.buf.Emit32(EncodeMovz(dst, uint16(imm)))
	for hw := uint8(1); hw < 4; hw++ {
		if half := uint16(imm >> (16 * uint(hw))); half != 0 {
			a.buf.Emit32(EncodeMovk(dst, half, hw))
		}
	}
}

// LoadVMRegister loads VM register idx into dst.
func (a *Assembler) LoadVMRegister(dst Reg, idx uint32) {
	assertArrayIndex(idx)
	a.buf.Emit32(EncodeLdrImm(dst, RegistersBase, uint16(idx)))
}

// StoreVMRegister stores src into VM register idx.
func (a *Assembler) StoreVMRegister(idx uint32, src Reg) {
	assertArrayIndex(idx)
	a.buf.Emit32(EncodeStrImm(RegistersBase, uint16(idx), src))
}

// LoadVMLocal loads VM local idx into dst.
func (a *Assembler) LoadVMLocal(dst Reg, idx uint32) {
	assertArrayIndex(idx)
	a.buf.Emit32(EncodeLdrImm(dst, LocalsBase, uint16(idx)))
}

// StoreVMLocal stores src into VM local idx.
func (a *Assembler) StoreVMLocal(idx uint32, src Reg) {
	assertArrayIndex(idx)
	a.buf.Emit32(EncodeStrImm(LocalsBase, uint16(idx), src))
}

// Increment computes dst = dst + 1 (64-bit, wraps modulo 2^64).
func (a *Assembler) Increment(dst Reg) {
	a.buf.Emit32(EncodeAddImm(dst, dst, 1))
}

// LessThan compares src and dst (CMP src, dst, i.e. Xn=src, Xm=dst) and sets
// dst to 1 if src < dst signed, else 0. The result overwrites dst.
func (a *Assembler) LessThan(dst, src Reg) {
	a.buf.Emit32(EncodeCmpReg(src, dst))
	a.buf.Emit32(EncodeCsetLT(dst))
}

// Jump emits a placeholder unconditional branch and returns the code-buffer
// length immediately after it (the offset the lowering pass should record
// into the target block's jumps-to-here set via BasicBlock.InsertJumpMarker).
func (a *Assembler) Jump() (postEmitOffset int) {
	a.buf.Emit32(EncodeB(0))
	return a.buf.Len()
}

// JumpConditional emits "CMP reg, #0" followed by a placeholder "B.EQ"
// targeting the false branch, and returns the post-emit offset for that
// placeholder. The caller must follow this with a Jump() call for the true
// branch, matching spec.md §4.3's jump_conditional: CMP reg,#0; B.EQ
// (false); B (true, unconditional).
func (a *Assembler) JumpConditional(reg Reg) (falsePostEmitOffset int) {
	a.buf.Emit32(EncodeCmpImm(reg, 0))
	a.buf.Emit32(EncodeBEQ(0))
	return a.buf.Len()
}

// Brk emits "BRK #0".
func (a *Assembler) Brk() { a.buf.Emit32(EncodeBRK(0)) }

// Ret emits "RET".
func (a *Assembler) Ret() { a.buf.Emit32(EncodeRET()) }

// Nop emits "NOP".
func (a *Assembler) Nop() { a.buf.Emit32(EncodeNOP()) }

// push saves src on the native stack in a 16-byte-aligned slot, per
// spec.md §4.3's conservative resolution of its imm12 open question: the
// slot is sized to preserve SP's 16-byte AArch64 ABI alignment and the
// store/load offset within it is 0, not the original's non-obvious +8.
func (a *Assembler) push(src Reg) {
	a.buf.Emit32(EncodeSubImm(SP, SP, 16))
	a.buf.Emit32(EncodeStrImm(SP, 0, src))
}

// pop restores the top-of-stack slot pushed by push. If dst is non-nil, the
// slot's value is loaded into *dst before SP is restored; otherwise the slot
// is discarded (SP is still adjusted).
func (a *Assembler) pop(dst *Reg) {
	if dst != nil {
		a.buf.Emit32(EncodeLdrImm(*dst, SP, 0))
	}
	a.buf.Emit32(EncodeAddImm(SP, SP, 16))
}

// CallIntoHost implements the call-into-host ABI of spec.md §4.3: push the
// caller-saved architectural registers, move arg0 into X0 (the first
// argument register) and fnAddr into a scratch register, BLR into the host
// function, capture its return value into dst,
// then restore every saved register in reverse order. arg0 is a
// compile-time constant (this backend's only host call, LoadRandom's
// max bound, never needs to pass a live register).
func (a *Assembler) CallIntoHost(dst Reg, fnAddr uint64, arg0 uint64) {
	a.push(VMBase)
	a.push(RegistersBase)
	a.push(LocalsBase)
	a.push(GPR0)
	a.push(GPR1)
	a.push(LR)

	// VMBase (X0) was just saved, so it is free to reuse as the first
	// argument register per the AArch64 calling convention.
	a.LoadImmediate64(VMBase, arg0)
	a.LoadImmediate64(GPR1, fnAddr)
	a.buf.Emit32(EncodeBLR(GPR1))
	a.buf.Emit32(EncodeMovReg(GPR0, VMBase))

	lr, gpr1, gpr0 := LR, GPR1, GPR0
	a.pop(&lr)
	a.pop(&gpr1)
	if dst != GPR0 {
		a.buf.Emit32(EncodeMovReg(dst, GPR0))
		a.pop(&gpr0)
	} else {
		a.pop(nil)
	}
	localsBase, registersBase, vmBase := LocalsBase, RegistersBase, VMBase
	a.pop(&localsBase)
	a.pop(&registersBase)
	a.pop(&vmBase)
}
