// Package version holds build information for the cif binary.
package version

import (
	"fmt"
	"runtime/debug"
)

const (
	develVersion    = "(devel)"
	settingRevision = "vcs.revision"
	settingTime     = "vcs.time"
	settingModified = "vcs.modified"
	shortHashLen    = 12
)

// Set by -ldflags "-X github.com/Sumatoshi-tech/cif/pkg/version.Version=...".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// InitBinaryVersion fills unset fields from the module build info that the
// Go toolchain embeds. Values injected through ldflags are kept.
func InitBinaryVersion() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	apply(info)
}

func apply(info *debug.BuildInfo) {
	if Version == "dev" && info.Main.Version != "" && info.Main.Version != develVersion {
		Version = info.Main.Version
	}

	modified := false

	for _, s := range info.Settings {
		switch s.Key {
		case settingRevision:
			if Commit == "none" {
				Commit = shorten(s.Value)
			}
		case settingTime:
			if Date == "unknown" {
				Date = s.Value
			}
		case settingModified:
			modified = s.Value == "true"
		}
	}

	if modified && Commit != "none" {
		Commit += "-dirty"
	}
}

func shorten(hash string) string {
	if len(hash) > shortHashLen {
		return hash[:shortHashLen]
	}

	return hash
}

// String formats the build information on one line.
func String() string {
	return fmt.Sprintf("cif %s (commit: %s, built: %s)", Version, Commit, Date)
}
