// Package version reports the build metadata of the running server binary.
// The liveness endpoint embeds it in its response.
package version

import "runtime"

// Stamped by the build via -ldflags "-X ...". Defaults identify a local
// development build.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Info is the JSON shape exposed on the ops surface.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
}

// Get snapshots the stamped values plus the Go runtime used to compile.
func Get() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
	}
}
