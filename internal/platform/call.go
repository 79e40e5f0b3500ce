package platform

import "github.com/ebitengine/purego"

// Call invokes the mapped code with the fixed three-pointer ABI spec.md §3
// defines (VM*, registers*, locals* in X0/X1/X2), by address — this package
// never casts the mapping to a Go func value, since doing that without cgo
// needs exactly the kind of architecture-aware trampoline purego already
// provides for calling arbitrary C function pointers.
func (m *Mapping) Call(vmPtr, registersPtr, localsPtr uintptr) {
	purego.SyscallN(m.addr, vmPtr, registersPtr, localsPtr)
}
