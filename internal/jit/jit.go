// Package jit is the top-level driver spec.md §3 describes: lower a
// program, link its branches, map the result executable, and run it against
// a VM — the same three-stage lifecycle original_source's jit::Jit and
// jit::Executable split across two types, collapsed here into one since Go
// has no equivalent of Rust's ownership-transfer-as-documentation idiom.
package jit

import (
	"fmt"
	"unsafe"

	"github.com/cheekyjit/cheekyjit/internal/compiler"
	"github.com/cheekyjit/cheekyjit/internal/platform"
	"github.com/cheekyjit/cheekyjit/internal/vm"
	"github.com/cheekyjit/cheekyjit/internal/vmrand"
)

// Compiled is a JIT-compiled program mapped into executable memory, ready to
// run against any number of VM instances on the same thread.
type Compiled struct {
	mapping *platform.Mapping
	code    []byte
}

// Compile lowers prog to native code, links every branch, and maps the
// result executable. The caller must Close the result once done with it.
func Compile(prog *vm.Program) (*Compiled, error) {
	asm := compiler.Lower(prog, vmrand.Addr())
	if err := compiler.Link(asm, prog); err != nil {
		return nil, fmt.Errorf("jit: linking failed: %w", err)
	}
	code := append([]byte(nil), asm.Bytes()...)
	mapping, err := platform.MapExecutable(code)
	if err != nil {
		return nil, fmt.Errorf("jit: %w", err)
	}
	return &Compiled{mapping: mapping, code: code}, nil
}

// Size returns the number of code bytes that were mapped.
func (c *Compiled) Size() int { return len(c.code) }

// Bytes returns the assembled machine code that was mapped, for persisting
// the bytecode.out/hexdump diagnostic artifacts spec.md §6 requires on every
// compile. The slice is a private copy, safe to retain or write out freely.
func (c *Compiled) Bytes() []byte { return c.code }

// BaseAddr returns the mapping's base address, for diagnostic dumps (block
// address listings) only.
func (c *Compiled) BaseAddr() uintptr { return c.mapping.Addr() }

// Run calls the compiled code against m, following the fixed X0/X1/X2 ABI
// (VM*, registers*, locals*) every lowered program assumes. m.Registers and
// m.Locals must not be reallocated for the duration of the call: the
// compiled code holds raw pointers into their current backing arrays.
func (c *Compiled) Run(m *vm.VM) {
	var registersPtr, localsPtr uintptr
	if len(m.Registers) > 0 {
		registersPtr = uintptr(unsafe.Pointer(&m.Registers[0]))
	}
	if len(m.Locals) > 0 {
		localsPtr = uintptr(unsafe.Pointer(&m.Locals[0]))
	}
	c.mapping.Call(uintptr(unsafe.Pointer(m)), registersPtr, localsPtr)
}

// Close unmaps the compiled code. The Compiled must not be used afterward.
func (c *Compiled) Close() error { return c.mapping.Close() }
