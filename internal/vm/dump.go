package vm

import (
	"fmt"
	"io"
)

// Dump writes a human-readable instruction listing for the block, mirroring
// the original Rust implementation's BasicBlock::dump eprintln output.
func (b *BasicBlock) Dump(w io.Writer) {
	for i, instr := range b.Instructions {
		fmt.Fprintf(w, "    [%d] %s\n", i, instr)
	}
}

// Dump writes every block's instruction listing to w, 1-indexed to match the
// original implementation's "Block {}:" headers.
func (p *Program) Dump(w io.Writer) {
	for i, b := range p.Blocks {
		fmt.Fprintf(w, "Block %d:\n", i+1)
		b.Dump(w)
	}
	fmt.Fprintln(w)
}
