package tools

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Compile-time interface validation
var _ Tool = (*NodeTool)(nil)

// NodeTool manages Node.js
// Downloads from https://nodejs.org/dist/, or the unofficial builds for variants such as musl
type NodeTool struct {
	*BaseTool
	distURL        string
	variantDistURL string
	archiveType    string
}

// NewNodeTool creates a new Node tool instance
func NewNodeTool(distURL, variantDistURL, archiveType string) *NodeTool {
	if distURL == "" {
		distURL = NodeJSDistBase
	}
	if variantDistURL == "" {
		variantDistURL = NodeJSUnofficialBase
	}
	if archiveType == "" {
		archiveType = ArchiveTypeTarGz
	}
	return &NodeTool{
		BaseTool:       NewBaseTool(ToolNode, "NodeJS", BinaryNode, BinaryNpm, BinaryNpx),
		distURL:        strings.TrimSuffix(distURL, "/"),
		variantDistURL: strings.TrimSuffix(variantDistURL, "/"),
		archiveType:    archiveType,
	}
}

// Package is the registry package mirroring Node.js releases
func (n *NodeTool) Package() string { return "node" }

func (n *NodeTool) baseURL(variant string) string {
	if variant != "" {
		return n.variantDistURL
	}
	return n.distURL
}

// ArchiveName returns the distribution file name, e.g. node-v14.18.0-linux-x64.tar.gz
func (n *NodeTool) ArchiveName(version, variant string, platform Platform) (string, error) {
	nodePlatform, err := platform.NodePlatform()
	if err != nil {
		return "", err
	}
	if variant != "" {
		nodePlatform += "-" + variant
	}
	// Windows uses zip, others tar.gz or tar.xz
	ext := n.archiveType
	if platform.IsWindows() {
		ext = ArchiveTypeZip
	}
	return fmt.Sprintf("node-v%s-%s.%s", version, nodePlatform, ext), nil
}

func (n *NodeTool) DownloadURL(version, variant string, platform Platform) (string, error) {
	name, err := n.ArchiveName(version, variant, platform)
	if err != nil {
		return "", URLGenerationError(n.Name(), version, err)
	}
	return fmt.Sprintf("%s/v%s/%s", n.baseURL(variant), version, name), nil
}

func (n *NodeTool) ChecksumURL(version, variant string, platform Platform) string {
	return fmt.Sprintf("%s/v%s/%s", n.baseURL(variant), version, NodeChecksumsFileName)
}

// Entrypoint returns the node executable, or the npm/npx scripts bundled with Node.js
func (n *NodeTool) Entrypoint(installDir, binary string, platform Platform) (Entrypoint, error) {
	var ep Entrypoint
	switch binary {
	case BinaryNode:
		ep = Entrypoint{Path: filepath.Join(BinDir(installDir, platform), platform.ExecutableName(BinaryNode))}
	case BinaryNpm, BinaryNpx:
		modules := filepath.Join(installDir, "lib", "node_modules")
		if platform.IsWindows() {
			modules = filepath.Join(installDir, "node_modules")
		}
		ep = Entrypoint{Path: filepath.Join(modules, "npm", "bin", binary+"-cli.js"), Script: true}
	default:
		return Entrypoint{}, fmt.Errorf("%s does not provide %s", n.DisplayName(), binary)
	}
	if err := checkEntrypoint(n.Name(), binary, ep.Path); err != nil {
		return Entrypoint{}, err
	}
	return ep, nil
}

// URLGenerationError creates a standardized URL generation error
func URLGenerationError(tool, version string, err error) *ToolError {
	return NewToolError(tool, version, "URL generation", err)
}
