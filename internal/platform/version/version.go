// Package version exposes the build identity stamped into the binary with
// -ldflags; the HTTP layer reports it at /version.
package version

import "runtime"

// Stamped at build time, e.g.
//
//	go build -ldflags "-X .../internal/platform/version.Version=1.2.0"
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Info is the build identity served by the /version endpoint.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
}

// Get combines the stamped values with the Go runtime version.
func Get() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
	}
}
