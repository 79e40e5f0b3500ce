package arm64asm

import "encoding/binary"

// CodeBuffer is the append-only byte buffer instructions are encoded into
// during assembly. It corresponds to the "assembled" lifetime phase of
// spec.md §3/§5: owned by the JIT, writable, not yet executable. Once
// lowering and linking finish, platform.MapExecutable copies its bytes into
// a page-aligned mapping and the buffer itself is discarded.
//
// This mirrors the shape of the teacher's internal/asm.CodeSegment/Buffer,
// simplified because this backend never needs to grow a live mmap mid-write
// (the whole program is lowered into a plain Go slice first, then mapped
// once) — growth here is an ordinary slice append.
type CodeBuffer struct {
	bytes []byte
}

// Len returns the buffer's current length in bytes. spec.md invariant:
// Len() is a multiple of 4 after every Emit32 call.
func (b *CodeBuffer) Len() int { return len(b.bytes) }

// Bytes returns the buffer's contents. The returned slice aliases the
// buffer's backing array and is invalidated by the next Emit32 call that
// triggers a reallocation.
func (b *CodeBuffer) Bytes() []byte { return b.bytes }

// Emit32 appends word as 4 little-endian bytes and returns the byte offset
// it was written at.
func (b *CodeBuffer) Emit32(word uint32) int {
	off := len(b.bytes)
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], word)
	b.bytes = append(b.bytes, tmp[:]...)
	return off
}

// Patch32 overwrites the 4 bytes at offset with word. Used exclusively by
// the branch linker to back-patch a previously-emitted placeholder branch;
// offset must be 4-byte aligned and within the buffer.
func (b *CodeBuffer) Patch32(offset int, word uint32) {
	binary.LittleEndian.PutUint32(b.bytes[offset:offset+4], word)
}

// Read32 returns the 32-bit word at offset, used by the linker to recover a
// placeholder branch's opcode bits before rewriting its immediate field.
func (b *CodeBuffer) Read32(offset int) uint32 {
	return binary.LittleEndian.Uint32(b.bytes[offset : offset+4])
}
