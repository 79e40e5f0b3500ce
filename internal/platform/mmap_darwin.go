//go:build darwin

package platform

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// mapJIT is macOS's MAP_JIT flag: required on Apple Silicon to obtain a
// mapping that may later toggle between writable and executable on the same
// thread via pthread_jit_write_protect_np, per original_source's
// executable.rs (which maps with MAP_ANON|MAP_PRIVATE|MAP_JIT and the same
// RWX protections used here).
const mapJIT = 0x0800

// MapExecutable allocates a MAP_JIT mapping, disables this thread's JIT
// write protection for the duration of the copy, then re-enables it and
// invalidates the instruction cache over the written range before any call
// into the mapping.
func MapExecutable(code []byte) (*Mapping, error) {
	if len(code) == 0 {
		return nil, fmt.Errorf("%w: empty code", ErrMappingFailed)
	}
	size := pageAlign(len(code))
	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE|unix.PROT_EXEC, unix.MAP_PRIVATE|unix.MAP_ANON|mapJIT)
	if err != nil {
		return nil, fmt.Errorf("%w: mmap: %v", ErrMappingFailed, err)
	}

	disableJITWriteProtect()
	copy(data, code)
	enableJITWriteProtect()

	addr := uintptr(unsafe.Pointer(&data[0]))
	sysICacheInvalidate(addr, uintptr(len(code)))

	return &Mapping{addr: addr, raw: data}, nil
}

func (m *Mapping) unmap() error {
	return unix.Munmap(m.raw)
}
