package api

import (
	"fmt"
	"runtime"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

// UserAgent returns the identification header sent on every request,
// e.g. "accomplish-cli/0.3.0 (linux; x86_64)".
func UserAgent() string {
	return fmt.Sprintf("accomplish-cli/%s (%s; %s)", Version, osName(), archName())
}

func osName() string {
	switch runtime.GOOS {
	case "linux", "windows":
		return runtime.GOOS
	case "darwin":
		return "macos"
	default:
		return "unknown"
	}
}

func archName() string {
	switch runtime.GOARCH {
	case "amd64":
		return "x86_64"
	case "arm64":
		return "aarch64"
	case "arm":
		return "arm"
	default:
		return "unknown"
	}
}
