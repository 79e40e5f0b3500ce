// Package version reports this module's own version, the way the teacher's
// internal/version resolves wazero's version: from the running binary's
// build info rather than a hand-maintained constant, so it never drifts
// from what was actually built.
package version

import "runtime/debug"

const devVersion = "dev"

// GetVersion returns the version of this module as recorded in the running
// binary's build info, or "dev" if that information isn't available (for
// example, under `go run`).
func GetVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return devVersion
	}
	for _, dep := range info.Deps {
		if dep.Path == info.Main.Path {
			return dep.Version
		}
	}
	if info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return devVersion
}
