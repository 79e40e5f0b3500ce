//go:build linux && !arm64

package platform

// isb is a no-op on architectures this backend never generates code for;
// MapExecutable is only ever exercised with arm64-encoded buffers, but
// keeping the package buildable off-target lets the rest of the module's
// tests run on any host.
func isb() {}
