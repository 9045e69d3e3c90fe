package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yosuke-furukawa/json5/encoding/json5"
)

// ManifestFileName is the project manifest holding engine requirements
const ManifestFileName = "package.json"

// Manifest is the subset of package.json hnvm cares about
type Manifest struct {
	Path    string            `json:"-"`
	Name    string            `json:"name"`
	Version string            `json:"version"`
	Engines map[string]string `json:"engines"`
	Bin     interface{}       `json:"bin"`
}

// FindManifest returns the nearest package.json at or above startDir.
// It returns nil without error when no manifest exists up to the filesystem root.
func FindManifest(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		candidate := filepath.Join(dir, ManifestFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return LoadManifest(candidate)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			return nil, nil
		}
		dir = parent
	}
}

// LoadManifest parses a package.json. Comments and trailing commas are tolerated.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var m Manifest
	if err := json5.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	m.Path = path
	return &m, nil
}

// Engine returns the declared requirement for a tool, or "" when absent
func (m *Manifest) Engine(tool string) string {
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m.Engines[tool])
}

// BinEntry returns the script path declared for the named binary, relative to the package root.
// A string "bin" field maps to the package's own name.
func (m *Manifest) BinEntry(name string) (string, error) {
	switch bin := m.Bin.(type) {
	case string:
		if bin != "" && (name == m.Name || name == "") {
			return filepath.FromSlash(bin), nil
		}
	case map[string]interface{}:
		if entry, ok := bin[name].(string); ok && entry != "" {
			return filepath.FromSlash(entry), nil
		}
	}
	return "", fmt.Errorf("%s declares no %q binary (available: %s)", m.Path, name, strings.Join(m.BinNames(), ", "))
}

// BinNames lists the binaries a package declares
func (m *Manifest) BinNames() []string {
	var names []string
	switch bin := m.Bin.(type) {
	case string:
		if bin != "" {
			names = append(names, m.Name)
		}
	case map[string]interface{}:
		for name := range bin {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
