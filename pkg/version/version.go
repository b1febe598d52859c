// Package version provides version information for droidctl.
package version

import (
	"fmt"
	"runtime"
)

// These variables are set via ldflags during build
//
//nolint:gochecknoglobals // These are intentionally global for ldflags injection
var (
	version = "dev"
	buildID = "dev"
)

// GetVersion returns the current version
func GetVersion() string {
	return version
}

// GetBuildID returns the current build ID
func GetBuildID() string {
	return buildID
}

// GetFullVersion returns version with build ID and host platform
func GetFullVersion() string {
	return fmt.Sprintf("droidctl %s (build: %s, %s/%s)", version, buildID, runtime.GOOS, runtime.GOARCH)
}

// UserAgent is sent with provisioning downloads.
func UserAgent() string {
	return "droidctl/" + version
}
