//go:build linux && arm64

package platform

// isb issues an Instruction Synchronization Barrier, implemented in
// isb_arm64.s since no Go-level primitive reaches this instruction.
func isb()
