package vm

import "fmt"

// Op identifies the operation performed by an Instruction. The accumulator
// (register 0) is the implicit source/destination for every unary op.
type Op byte

const (
	OpLoadImmediate Op = iota
	OpLoad
	OpStore
	OpGetLocal
	OpSetLocal
	OpIncrement
	OpLessThan
	OpBreakpoint
	OpExit
	OpJump
	OpJumpConditional
	OpLoadRandom
	OpNop
)

func (o Op) String() string {
	switch o {
	case OpLoadImmediate:
		return "LOAD_IMM"
	case OpLoad:
		return "LOAD_REG"
	case OpStore:
		return "STORE_REG"
	case OpGetLocal:
		return "GET_LOCAL"
	case OpSetLocal:
		return "SET_LOCAL"
	case OpIncrement:
		return "INCR"
	case OpLessThan:
		return "LESS_THAN"
	case OpBreakpoint:
		return "BREAK"
	case OpExit:
		return "RET"
	case OpJump:
		return "JUMP"
	case OpJumpConditional:
		return "JUMP_EITHER"
	case OpLoadRandom:
		return "LOAD_RANDOM"
	case OpNop:
		return "NOP"
	default:
		return fmt.Sprintf("Op(%d)", byte(o))
	}
}

// BlockID identifies a BasicBlock by its position in Program.Blocks. This is
// the arena+index restatement of the original's Rc<RefCell<BasicBlock>>
// handles: block identity is stable and cheap to copy, and the linker
// resolves id -> offset through the program's block table after lowering.
type BlockID int

// Instruction is a tagged register-machine instruction. Only the fields
// relevant to Op are meaningful; this mirrors the teacher's operation-kind
// discriminated structs (internal/wazeroir) rather than a closed sum type,
// since Go has no tagged unions.
type Instruction struct {
	Op          Op
	Imm         Value    // OpLoadImmediate, OpLoadRandom (max)
	Reg         Register // OpLoad, OpStore, OpLessThan
	Local       Local    // OpGetLocal, OpSetLocal
	Target      BlockID  // OpJump
	TrueTarget  BlockID  // OpJumpConditional
	FalseTarget BlockID  // OpJumpConditional
}

func (in Instruction) String() string {
	switch in.Op {
	case OpLoadImmediate:
		return fmt.Sprintf("LOAD_IMM %d", uint64(in.Imm))
	case OpLoad:
		return fmt.Sprintf("LOAD_REG r%d", in.Reg)
	case OpStore:
		return fmt.Sprintf("STORE_REG r%d", in.Reg)
	case OpGetLocal:
		return fmt.Sprintf("GET_LOCAL .%d", in.Local)
	case OpSetLocal:
		return fmt.Sprintf("SET_LOCAL .%d", in.Local)
	case OpLessThan:
		return fmt.Sprintf("LESS_THAN r%d", in.Reg)
	case OpJump:
		return fmt.Sprintf("JUMP #%d", in.Target)
	case OpJumpConditional:
		return fmt.Sprintf("JUMP_EITHER #%d #%d", in.TrueTarget, in.FalseTarget)
	case OpLoadRandom:
		return fmt.Sprintf("LOAD_RANDOM %d", uint64(in.Imm))
	default:
		return in.Op.String()
	}
}

// BasicBlock is an ordered sequence of instructions, plus two fields
// populated during lowering: Offset (byte position in the code buffer, set
// exactly once) and JumpsToHere (byte offsets of unresolved branch
// instructions targeting this block, appended as they are encountered).
type BasicBlock struct {
	Instructions []Instruction
	Offset       int
	JumpsToHere  []int
}

// InsertJumpMarker records the byte offset of a just-emitted branch
// instruction that targets this block. postEmitOffset is the code buffer
// length immediately after the 4-byte placeholder branch was written, so the
// site offset is postEmitOffset-4.
func (b *BasicBlock) InsertJumpMarker(postEmitOffset int) {
	b.JumpsToHere = append(b.JumpsToHere, postEmitOffset-4)
}

func (b *BasicBlock) append(instr Instruction) {
	b.Instructions = append(b.Instructions, instr)
}

// Program is an ordered list of basic blocks; block 0 is the entry. Block
// identity is by position: BlockIDs are indices into Blocks.
type Program struct {
	Blocks []*BasicBlock
}

// NewProgram returns an empty program.
func NewProgram() *Program {
	return &Program{}
}

// MakeBlock appends a new, empty block and returns its id.
func (p *Program) MakeBlock() BlockID {
	p.Blocks = append(p.Blocks, &BasicBlock{})
	return BlockID(len(p.Blocks) - 1)
}

// Block returns the block for id. It panics on an out-of-range id, matching
// the invariant that every BlockID in a well-formed Program refers to a
// block that exists in Program.Blocks.
func (p *Program) Block(id BlockID) *BasicBlock {
	return p.Blocks[id]
}

// Append adds instr to the end of the block identified by id.
func (p *Program) Append(id BlockID, instr Instruction) {
	p.Block(id).append(instr)
}

// Len returns the number of blocks in the program.
func (p *Program) Len() int { return len(p.Blocks) }
