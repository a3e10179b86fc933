package remote

import (
	"context"
	"strings"
)

// OS identifies the target operating system family.
type OS string

const (
	OSLinux   OS = "linux"
	OSWindows OS = "windows"
	OSUnknown OS = "unknown"
)

// hintedOS maps an inventory os hint onto a known OS. Anything unrecognized
// means the executor probes instead.
func hintedOS(hint string) OS {
	switch strings.ToLower(strings.TrimSpace(hint)) {
	case "linux":
		return OSLinux
	case "windows":
		return OSWindows
	default:
		return OSUnknown
	}
}

// detectOS probes the target: uname answers on Linux, the WMI caption on
// Windows. Anything else is unknown and callers fail the operation cleanly.
func detectOS(ctx context.Context, ex Executor) OS {
	out, _, err := ex.Run(ctx, "uname")
	if err == nil && strings.Contains(out, "Linux") {
		return OSLinux
	}

	out, _, err = ex.Run(ctx, `powershell "(Get-WmiObject Win32_OperatingSystem).Caption"`)
	if err == nil && strings.TrimSpace(out) != "" {
		return OSWindows
	}

	return OSUnknown
}
