//go:build linux

package platform

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// MapExecutable copies code into a fresh page-aligned anonymous mapping and
// transitions it from writable to executable, never leaving it both at once.
//
// Linux's arm64 page-table code invalidates the instruction cache for a
// region the first time it transitions to PROT_EXEC, so this path does not
// additionally hand-encode DC/IC cache-maintenance instructions the way the
// Darwin path calls sys_icache_invalidate: an explicit ISB still runs after
// the mprotect to order the writing thread's view of the new permissions
// before the mapping is ever called.
func MapExecutable(code []byte) (*Mapping, error) {
	if len(code) == 0 {
		return nil, fmt.Errorf("%w: empty code", ErrMappingFailed)
	}
	size := pageAlign(len(code))
	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("%w: mmap: %v", ErrMappingFailed, err)
	}
	copy(data, code)
	if err := unix.Mprotect(data, unix.PROT_READ|unix.PROT_EXEC); err != nil {
		_ = unix.Munmap(data)
		return nil, fmt.Errorf("%w: mprotect: %v", ErrMappingFailed, err)
	}
	isb()
	return &Mapping{addr: uintptr(unsafe.Pointer(&data[0])), raw: data}, nil
}

func (m *Mapping) unmap() error {
	return unix.Munmap(m.raw)
}
