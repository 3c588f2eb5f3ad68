// Package version reports the build version of footprint.
package version

import "runtime/debug"

// Set at build time with -ldflags "-X github.com/rshade/footprint/pkg/version.version=v1.2.3".
//
//nolint:gochecknoglobals // Overridden by the linker.
var (
	version = ""
	commit  = ""
)

// GetVersion returns the linker-provided version, falling back to the
// module version recorded in the binary, then "dev".
func GetVersion() string {
	if version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev"
}

// GetCommit returns the linker-provided commit, or the VCS revision
// recorded in the binary.
func GetCommit() string {
	if commit != "" {
		return commit
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" {
				return s.Value
			}
		}
	}
	return ""
}
