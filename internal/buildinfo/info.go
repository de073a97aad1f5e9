package buildinfo

import (
	"fmt"
	"runtime/debug"
)

// Set via -ldflags "-X github.com/abcbank/ledger/internal/buildinfo.Version=...".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String formats the build metadata for --version. Binaries installed with
// go install have no ldflags, so the module version is used instead.
func String() string {
	version := Version
	if version == "dev" {
		if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			version = bi.Main.Version
		}
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", version, Commit, Date)
}
