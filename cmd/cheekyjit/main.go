// Command cheekyjit parses, compiles, and runs the register-machine text
// format spec.md §6 defines, either through the AArch64 JIT backend or
// (with --no-jit) the reference interpreter.
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/cheekyjit/cheekyjit/internal/compiler"
	"github.com/cheekyjit/cheekyjit/internal/interpreter"
	"github.com/cheekyjit/cheekyjit/internal/jit"
	"github.com/cheekyjit/cheekyjit/internal/parser"
	"github.com/cheekyjit/cheekyjit/internal/sampleprogram"
	"github.com/cheekyjit/cheekyjit/internal/version"
	"github.com/cheekyjit/cheekyjit/internal/vm"
)

// bytecodeOutPath is where the raw assembled code bytes are persisted on
// every compile, per spec.md §6: a diagnostic artifact for offline
// disassembly, not read back by this program itself.
const bytecodeOutPath = "bytecode.out"

// sampleLoopIters is how many times the built-in sample program's loop runs,
// matching original_source's own default. It only changes the immediate the
// loop compares against, not the size or branch offsets of the generated code.
const sampleLoopIters = 100_000_000

func main() {
	os.Exit(doMain(os.Stdout, os.Stderr, os.Args[1:]))
}

// doMain is separated from main for the purpose of unit testing.
func doMain(stdOut, stdErr io.Writer, args []string) int {
	flags := flag.NewFlagSet("cheekyjit", flag.ContinueOnError)
	flags.SetOutput(stdErr)

	var (
		noJIT     bool
		nop       bool
		inputPath string
		showVer   bool
	)
	flags.BoolVar(&noJIT, "no-jit", false, "Run the sample program through the reference interpreter instead of compiling it.")
	flags.BoolVar(&nop, "nop", false, "Compile and run a 3x NOP + RET stub, to sanity-check the mapping pipeline.")
	flags.StringVar(&inputPath, "i", "", "Path to a program text file to parse and compile.")
	flags.BoolVar(&showVer, "version", false, "Print the module version and exit.")

	if err := flags.Parse(args); err != nil {
		return 1
	}

	if showVer {
		fmt.Fprintln(stdOut, version.GetVersion())
		return 0
	}

	dryRun := os.Getenv("DRY_RUN") == "1"

	m := vm.New(8, 4)

	switch {
	case noJIT:
		return runInterpreted(stdOut, stdErr, m)
	case nop:
		return runNop(stdOut, stdErr, m, dryRun)
	case inputPath != "":
		return runFile(stdOut, stdErr, m, inputPath, dryRun)
	default:
		return runSampleCompiled(stdOut, stdErr, m, dryRun)
	}
}

func runInterpreted(stdOut, stdErr io.Writer, m *vm.VM) int {
	prog, err := sampleprogram.Loop(sampleLoopIters)
	if err != nil {
		return fail(stdErr, "failed to build sample program", err)
	}
	prog.Dump(stdErr)

	if err := interpreter.Run(prog, m); err != nil {
		return fail(stdErr, "failed to run program", err)
	}

	m.Dump(stdOut)
	if got := m.Locals[sampleprogram.ResultLocal]; uint64(got) != sampleLoopIters {
		return fail(stdErr, "sample program should set local[0] to the iteration count", fmt.Errorf("got %d", got))
	}
	return 0
}

func runNop(stdOut, stdErr io.Writer, m *vm.VM, dryRun bool) int {
	prog, err := parser.Parse("ENTRY:\n    NOP\n    NOP\n    NOP\n    RET\n")
	if err != nil {
		return fail(stdErr, "failed to build nop program", err)
	}
	prog.Dump(stdErr)
	return compileAndRun(stdOut, stdErr, m, prog, dryRun)
}

func runFile(stdOut, stdErr io.Writer, m *vm.VM, path string, dryRun bool) int {
	code, err := os.ReadFile(path)
	if err != nil {
		return fail(stdErr, fmt.Sprintf("failed to read %s", path), err)
	}
	prog, err := parser.Parse(string(code))
	if err != nil {
		return fail(stdErr, fmt.Sprintf("failed to compile %s", path), err)
	}
	prog.Dump(stdErr)
	return compileAndRun(stdOut, stdErr, m, prog, dryRun)
}

func runSampleCompiled(stdOut, stdErr io.Writer, m *vm.VM, dryRun bool) int {
	prog, err := sampleprogram.Loop(sampleLoopIters)
	if err != nil {
		return fail(stdErr, "failed to build sample program", err)
	}
	prog.Dump(stdErr)

	rc := compileAndRun(stdOut, stdErr, m, prog, dryRun)
	if rc != 0 || dryRun {
		return rc
	}
	if got := m.Locals[sampleprogram.ResultLocal]; uint64(got) != sampleLoopIters {
		return fail(stdErr, "sample program should set local[0] to the iteration count", fmt.Errorf("got %d", got))
	}
	return 0
}

// compileAndRun lowers and links prog, then either maps and runs it or, if
// dryRun is set, only reports the assembled size and each block's offset —
// letting this whole path be exercised without the executable-memory
// permissions a sandboxed or non-arm64 CI runner may not grant. On every
// compile, successful or dry-run, the raw code bytes are persisted per
// spec.md §6: bytecode.out in the working directory plus a hex dump to
// stderr.
func compileAndRun(stdOut, stdErr io.Writer, m *vm.VM, prog *vm.Program, dryRun bool) int {
	if dryRun {
		asm := compiler.Lower(prog, 0)
		if err := compiler.Link(asm, prog); err != nil {
			return fail(stdErr, "failed to link program", err)
		}
		if rc := persistBytecode(stdErr, asm.Bytes()); rc != 0 {
			return rc
		}
		fmt.Fprintf(stdOut, "DRY_RUN: assembled %d bytes across %d blocks\n", asm.Len(), prog.Len())
		for i, b := range prog.Blocks {
			fmt.Fprintf(stdOut, "  block %d: offset %d\n", i, b.Offset)
		}
		return 0
	}

	compiled, err := jit.Compile(prog)
	if err != nil {
		return fail(stdErr, "failed to compile program", err)
	}
	defer compiled.Close()

	if rc := persistBytecode(stdErr, compiled.Bytes()); rc != 0 {
		return rc
	}

	fmt.Fprintf(stdErr, "mapped %d bytes of executable code at %#x\n", compiled.Size(), compiled.BaseAddr())
	for i, b := range prog.Blocks {
		fmt.Fprintf(stdErr, "  block %d at %#x\n", i, compiled.BaseAddr()+uintptr(b.Offset))
	}

	compiled.Run(m)
	m.Dump(stdOut)
	return 0
}

// persistBytecode writes code to bytecodeOutPath and hex-dumps it to stdErr,
// the diagnostic artifacts spec.md §6 requires on every compile. Both are
// offline-disassembly aids only; nothing in this program reads them back.
func persistBytecode(stdErr io.Writer, code []byte) int {
	if err := os.WriteFile(bytecodeOutPath, code, 0o644); err != nil {
		return fail(stdErr, fmt.Sprintf("failed to write %s", bytecodeOutPath), err)
	}
	fmt.Fprintf(stdErr, "wrote %d bytes to %s\n%s", len(code), bytecodeOutPath, hex.Dump(code))
	return 0
}

func fail(stdErr io.Writer, msg string, err error) int {
	fmt.Fprintf(stdErr, "ERROR: %s\n    %v\n", msg, err)
	return 1
}
