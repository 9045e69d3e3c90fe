package tools

import (
	"fmt"
	"os"
	"path/filepath"
)

// Tool describes a tool hnvm can resolve, download and launch
type Tool interface {
	// Name returns the tool name (e.g., "node", "pnpm")
	Name() string

	// DisplayName returns a human friendly name
	DisplayName() string

	// Package returns the npm registry package whose versions and dist-tags resolve this tool
	Package() string

	// Binaries returns the executables this tool provides
	Binaries() []string

	// DownloadURL returns the archive URL of a version. No network access.
	DownloadURL(version, variant string, platform Platform) (string, error)

	// ChecksumURL returns the SHA-256 listing covering the archive, or "" when none is published
	ChecksumURL(version, variant string, platform Platform) string

	// Entrypoint locates a binary inside an installed version
	Entrypoint(installDir, binary string, platform Platform) (Entrypoint, error)
}

// Entrypoint is what must be executed to run a tool binary
type Entrypoint struct {
	// Path is a native executable, or a script when Script is set
	Path string
	// Script entrypoints are JavaScript files run by the resolved node binary
	Script bool
}

// BaseTool provides common functionality for all tools
type BaseTool struct {
	toolName    string
	displayName string
	binaries    []string
}

// NewBaseTool creates a new base tool instance
func NewBaseTool(toolName, displayName string, binaries ...string) *BaseTool {
	return &BaseTool{
		toolName:    toolName,
		displayName: displayName,
		binaries:    binaries,
	}
}

func (b *BaseTool) Name() string { return b.toolName }

func (b *BaseTool) DisplayName() string { return b.displayName }

func (b *BaseTool) Binaries() []string { return b.binaries }

// Provides reports whether binary belongs to this tool
func (b *BaseTool) Provides(binary string) bool {
	for _, name := range b.binaries {
		if name == binary {
			return true
		}
	}
	return false
}

// checkEntrypoint verifies the entrypoint exists inside the installation
func checkEntrypoint(tool, binary, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%s does not provide %s at %s: %w", tool, binary, path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s entrypoint %s is a directory", tool, path)
	}
	return nil
}

// BinDir returns the directory holding native executables of an installation
func BinDir(installDir string, platform Platform) string {
	if platform.IsWindows() {
		// Node distributes binaries at the root on Windows
		return installDir
	}
	return filepath.Join(installDir, "bin")
}
