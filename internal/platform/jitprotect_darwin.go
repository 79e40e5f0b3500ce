//go:build darwin

package platform

import "github.com/ebitengine/purego"

// pthreadJitWriteProtectNp and sysICacheInvalidateFn are resolved once from
// libSystem: the same two libkern/pthread entry points original_source's
// executable.rs calls through cgo, reached here without cgo via purego's
// dlopen/dlsym binding.
var (
	pthreadJitWriteProtectNp func(int32)
	sysICacheInvalidateFn    func(start uintptr, length uintptr)
)

func init() {
	lib, err := purego.Dlopen("/usr/lib/libSystem.B.dylib", purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		panic("platform: cannot open libSystem.B.dylib: " + err.Error())
	}
	purego.RegisterLibFunc(&pthreadJitWriteProtectNp, lib, "pthread_jit_write_protect_np")
	purego.RegisterLibFunc(&sysICacheInvalidateFn, lib, "sys_icache_invalidate")
}

func disableJITWriteProtect() { pthreadJitWriteProtectNp(0) }
func enableJITWriteProtect()  { pthreadJitWriteProtectNp(1) }

func sysICacheInvalidate(start, length uintptr) { sysICacheInvalidateFn(start, length) }
