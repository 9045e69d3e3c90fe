package tools

import (
	"fmt"
	"runtime"
)

// Platform identifies the operating system and architecture a download targets
type Platform struct {
	OS   string // Operating system (linux, darwin, windows)
	Arch string // Architecture (amd64, arm64, arm, ppc64le, s390x, 386)
}

// CurrentPlatform returns the platform hnvm is running on
func CurrentPlatform() Platform {
	return Platform{
		OS:   runtime.GOOS,
		Arch: runtime.GOARCH,
	}
}

var nodeArch = map[string]string{
	"amd64":   "x64",
	"arm64":   "arm64",
	"arm":     "armv7l",
	"ppc64le": "ppc64le",
	"s390x":   "s390x",
	"386":     "x86",
}

var nodeOS = map[string]string{
	"linux":   "linux",
	"darwin":  "darwin",
	"windows": "win",
	"aix":     "aix",
}

// NodePlatform returns the platform segment of Node.js archive names, e.g. "linux-x64"
func (p Platform) NodePlatform() (string, error) {
	osName, ok := nodeOS[p.OS]
	if !ok {
		return "", fmt.Errorf("unsupported operating system: %s", p.OS)
	}
	arch, ok := nodeArch[p.Arch]
	if !ok {
		return "", fmt.Errorf("unsupported architecture: %s", p.Arch)
	}
	return osName + "-" + arch, nil
}

// IsWindows returns true if the platform is Windows
func (p Platform) IsWindows() bool {
	return p.OS == "windows"
}

// ExecutableName appends the platform's executable suffix
func (p Platform) ExecutableName(name string) string {
	if p.IsWindows() {
		return name + ExtExe
	}
	return name
}

func (p Platform) String() string {
	return fmt.Sprintf("%s-%s", p.OS, p.Arch)
}
