package tools

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gnodet/hnvm/pkg/config"
)

// Compile-time interface validation
var _ Tool = (*PackageTool)(nil)

// PackageTool manages a package manager published to the npm registry (npm, pnpm).
// Its binaries are scripts run by the hermetic node.
type PackageTool struct {
	*BaseTool
	pkg         string
	registryURL string
}

// NewPackageTool creates a tool backed by an npm registry package
func NewPackageTool(name, displayName, pkg, registryURL string, binaries ...string) *PackageTool {
	if registryURL == "" {
		registryURL = NpmRegistryBase
	}
	return &PackageTool{
		BaseTool:    NewBaseTool(name, displayName, binaries...),
		pkg:         pkg,
		registryURL: strings.TrimSuffix(registryURL, "/"),
	}
}

// NewNpmTool creates the npm tool
func NewNpmTool(registryURL string) *PackageTool {
	return NewPackageTool(ToolNpm, "npm", "npm", registryURL, BinaryNpm, BinaryNpx)
}

// NewPnpmTool creates the pnpm tool
func NewPnpmTool(registryURL string) *PackageTool {
	return NewPackageTool(ToolPnpm, "pnpm", "pnpm", registryURL, BinaryPnpm, BinaryPnpx)
}

func (p *PackageTool) Package() string { return p.pkg }

// DownloadURL returns the registry tarball. Variants and platforms do not apply to JavaScript packages.
func (p *PackageTool) DownloadURL(version, variant string, platform Platform) (string, error) {
	if version == "" {
		return "", URLGenerationError(p.Name(), version, fmt.Errorf("empty version"))
	}
	return fmt.Sprintf("%s/%s/-/%s-%s%s", p.registryURL, p.pkg, p.pkg, version, ExtTgz), nil
}

func (p *PackageTool) ChecksumURL(version, variant string, platform Platform) string {
	return ""
}

// Entrypoint reads the package's bin field to find the script behind binary
func (p *PackageTool) Entrypoint(installDir, binary string, platform Platform) (Entrypoint, error) {
	if !p.Provides(binary) {
		return Entrypoint{}, fmt.Errorf("%s does not provide %s", p.DisplayName(), binary)
	}
	manifest, err := config.LoadManifest(filepath.Join(installDir, config.ManifestFileName))
	if err != nil {
		return Entrypoint{}, err
	}
	script, err := manifest.BinEntry(binary)
	if err != nil {
		return Entrypoint{}, err
	}
	ep := Entrypoint{Path: filepath.Join(installDir, script), Script: true}
	if err := checkEntrypoint(p.Name(), binary, ep.Path); err != nil {
		return Entrypoint{}, err
	}
	return ep, nil
}
