// Package platform owns the one part of this module that cannot be
// expressed in portable Go: turning a freshly assembled byte slice into
// memory the CPU will actually fetch instructions from. It mirrors the
// per-OS file split the teacher uses for its own platform-dependent
// primitives, and the write-xor-execute lifecycle spec.md §4.6 and §5
// describe: an executable mapping is never simultaneously writable.
package platform

import "errors"

// ErrMappingFailed wraps any OS-level failure to allocate, write, or
// reprotect an executable mapping.
var ErrMappingFailed = errors.New("platform: failed to map executable memory")

// Mapping is a page-aligned block of memory holding assembled native code,
// currently mapped read+execute. Call invokes it directly; Close unmaps the
// memory and must not be called while Call is running on another goroutine.
type Mapping struct {
	addr uintptr
	raw  []byte
}

func pageSize() int { return 4096 }

func pageAlign(n int) int {
	ps := pageSize()
	return (n + ps - 1) / ps * ps
}

// Close unmaps the mapping. The mapping must not be used afterward.
func (m *Mapping) Close() error { return m.unmap() }

// Addr returns the mapping's base address, for diagnostic dumps only — never
// for arithmetic a caller depends on for correctness, since Go's GC does not
// move this memory but nothing else about its address is guaranteed stable
// API surface.
func (m *Mapping) Addr() uintptr { return m.addr }
