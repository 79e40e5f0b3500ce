package vmrand

import (
	"sync"

	"github.com/ebitengine/purego"
)

var (
	addrOnce sync.Once
	addr     uintptr
)

// Addr returns a C-callable function pointer for Next, suitable for a
// compiled program's call_into_host sequence to BLR into directly. The
// callback is registered once and reused for the life of the process: every
// compiled LOAD_RANDOM call branches to the same address.
func Addr() uintptr {
	addrOnce.Do(func() {
		addr = purego.NewCallback(Next)
	})
	return addr
}
