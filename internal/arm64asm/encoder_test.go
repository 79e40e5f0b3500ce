package arm64asm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestEncodeNOP_MatchesReferenceEncoding checks the one encoding that is
// unambiguous and widely published (ARM's canonical NOP word), as an
// external cross-check on the bit-packer's field ordering.
func TestEncodeNOP_MatchesReferenceEncoding(t *testing.T) {
	require.Equal(t, uint32(0xD503201F), EncodeNOP())
}

func TestEncodeMovz_PlacesImmediateAndRegister(t *testing.T) {
	word := EncodeMovz(GPR0, 0x1234)
	require.Equal(t, uint32(0x1234), (word>>5)&0xFFFF, "imm16 field")
	require.Equal(t, uint32(GPR0), word&0x1F, "Rd field")
}

func TestEncodeMovk_EncodesHalfwordShift(t *testing.T) {
	for hw := uint8(0); hw < 4; hw++ {
		word := EncodeMovk(GPR1, 0xABCD, hw)
		require.Equal(t, uint32(0xABCD), (word>>5)&0xFFFF)
		require.Equal(t, uint32(hw), (word>>21)&0b11)
		require.Equal(t, uint32(GPR1), word&0x1F)
	}
}

func TestEncodeLdrStr_ScaleIndexIntoImm12(t *testing.T) {
	str := EncodeStrImm(RegistersBase, 7, GPR0)
	require.Equal(t, uint32(7), (str>>10)&0xFFF)
	require.Equal(t, uint32(RegistersBase), (str>>5)&0x1F)
	require.Equal(t, uint32(GPR0), str&0x1F)

	ldr := EncodeLdrImm(GPR1, LocalsBase, 9)
	require.Equal(t, uint32(9), (ldr>>10)&0xFFF)
	require.Equal(t, uint32(LocalsBase), (ldr>>5)&0x1F)
	require.Equal(t, uint32(GPR1), ldr&0x1F)

	// LDR and STR of identical operands differ only in the L bit (bit 22).
	strSame := EncodeStrImm(RegistersBase, 7, GPR0)
	ldrSame := EncodeLdrImm(GPR0, RegistersBase, 7)
	require.Equal(t, strSame&^uint32(1<<22), ldrSame&^uint32(1<<22))
	require.NotEqual(t, strSame&(1<<22), ldrSame&(1<<22))
}

func TestEncodeAddSubImm_PlaceOperands(t *testing.T) {
	add := EncodeAddImm(GPR0, GPR1, 42)
	require.Equal(t, uint32(42), (add>>10)&0xFFF)
	require.Equal(t, uint32(GPR1), (add>>5)&0x1F)
	require.Equal(t, uint32(GPR0), add&0x1F)

	sub := EncodeSubImm(GPR0, GPR1, 42)
	require.NotEqual(t, add, sub, "ADD and SUB immediate must differ")
}

func TestEncodeB_PlaceholderImm26RoundTrips(t *testing.T) {
	const imm26 = (1 << 25) - 1
	word := EncodeB(imm26)
	require.Equal(t, uint32(imm26), word&((1<<26)-1))
	require.Equal(t, uint32(0b000101), word>>26)
}

func TestEncodeBEQ_PlaceholderImm19RoundTrips(t *testing.T) {
	const imm19 = (1 << 18) - 1
	word := EncodeBEQ(imm19)
	require.Equal(t, uint32(imm19), (word>>5)&((1<<19)-1))
	require.Equal(t, uint32(condEQ), word&0b11111)
	require.Equal(t, uint32(0b01010100), word>>24)
}

func TestEncodeCsetLT_UsesLTCondition(t *testing.T) {
	word := EncodeCsetLT(GPR0)
	// CSET is CSINC with the inverted condition: LT is stored as GE.
	require.Equal(t, uint32(condLT^1), (word>>12)&0xF)
	require.Equal(t, uint32(GPR0), word&0x1F)
	require.Equal(t, uint32(0x9A9FA7E4), word, "cset x4, lt")
}

func TestEncodeBLR_TargetsRn(t *testing.T) {
	word := EncodeBLR(GPR1)
	require.Equal(t, uint32(GPR1), (word>>5)&0x1F)
}

func TestEncodeBRK_EncodesImm16(t *testing.T) {
	word := EncodeBRK(7)
	require.Equal(t, uint32(7), (word>>5)&0xFFFF)
}

func TestEncodeMovReg_IsOrrXzrAlias(t *testing.T) {
	word := EncodeMovReg(GPR0, GPR1)
	require.Equal(t, uint32(GPR1), (word>>16)&0x1F, "Rm field")
	require.Equal(t, uint32(GPR0), word&0x1F, "Rd field")
}
