// Package sampleprogram holds the counted-loop program every example in
// original_source's main.rs runs by default (sample_loop_program): a
// minimal, self-verifying workload used both as this module's zero-argument
// CLI demo and as a baseline fixture for compiler/interpreter tests.
package sampleprogram

import (
	"fmt"

	"github.com/cheekyjit/cheekyjit/internal/parser"
	"github.com/cheekyjit/cheekyjit/internal/vm"
)

// CounterRegister is the VM register the loop counts up in (r1).
const CounterRegister = 1

// ResultLocal is the VM local the final count is written to (.0) once the
// loop exits; callers can assert locals[0] == iters after running this
// program to check the whole pipeline behaved.
const ResultLocal = 0

// Loop returns a program that counts a register up from 0 to iters, then
// stores the result into local 0 and exits.
func Loop(iters uint64) (*vm.Program, error) {
	src := fmt.Sprintf(`
ENTRY:
    LOAD_IMM 0
    STORE_REG r1
    JUMP #LOOP0
LOOP0:
    LOAD_IMM %d
    LESS_THAN r1
    JUMP_EITHER #LOOP0_BODY #LOOP0_END
LOOP0_BODY:
    LOAD_REG r1
    INCR
    STORE_REG r1
    JUMP #LOOP0
LOOP0_END:
    LOAD_REG r1
    SET_LOCAL .0
    RET
`, iters)

	prog, err := parser.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("sampleprogram: %w", err)
	}
	return prog, nil
}
