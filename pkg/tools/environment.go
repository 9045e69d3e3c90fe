package tools

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/gnodet/hnvm/pkg/util"
)

// EnvironmentManager edits a process environment while keeping the order of untouched variables
type EnvironmentManager struct {
	keys     []string
	envVars  map[string]string
	pathKey  string
	pathDirs []string
}

// NewEnvironmentManager creates a manager from KEY=VALUE entries, as returned by os.Environ
func NewEnvironmentManager(environ []string) *EnvironmentManager {
	em := &EnvironmentManager{
		envVars: make(map[string]string),
		pathKey: "PATH",
	}
	for _, entry := range environ {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || key == "" {
			continue
		}
		if isPathKey(key) {
			// Windows spells it Path; keep whatever the parent used
			em.pathKey = key
			if value != "" {
				em.pathDirs = strings.Split(value, string(os.PathListSeparator))
			}
			continue
		}
		if _, exists := em.envVars[key]; !exists {
			em.keys = append(em.keys, key)
		}
		em.envVars[key] = value
	}
	return em
}

func isPathKey(key string) bool {
	if runtime.GOOS == "windows" {
		return strings.EqualFold(key, "PATH")
	}
	return key == "PATH"
}

// SetEnv sets an environment variable (panics if key is PATH)
func (em *EnvironmentManager) SetEnv(key, value string) {
	if isPathKey(key) {
		panic("Cannot set PATH directly, use AddToPath() instead")
	}
	if _, exists := em.envVars[key]; !exists {
		em.keys = append(em.keys, key)
	}
	em.envVars[key] = value
	util.LogVerbose("Set environment variable %s=%s", key, value)
}

// GetEnv gets an environment variable
func (em *EnvironmentManager) GetEnv(key string) (string, bool) {
	if isPathKey(key) {
		return em.GetPath(), len(em.pathDirs) > 0
	}
	value, exists := em.envVars[key]
	return value, exists
}

// AddToPath prepends a directory to PATH, moving it to the front if already present
func (em *EnvironmentManager) AddToPath(dir string) {
	if dir == "" {
		return
	}
	dir = filepath.Clean(dir)

	dirs := []string{dir}
	for _, existing := range em.pathDirs {
		if existing != dir {
			dirs = append(dirs, existing)
		}
	}
	em.pathDirs = dirs
	util.LogVerbose("Added directory to PATH: %s", dir)
}

// GetPath returns the constructed PATH string
func (em *EnvironmentManager) GetPath() string {
	return strings.Join(em.pathDirs, string(os.PathListSeparator))
}

// ToSlice converts the environment to KEY=VALUE entries
func (em *EnvironmentManager) ToSlice() []string {
	result := make([]string, 0, len(em.keys)+1)
	for _, key := range em.keys {
		result = append(result, key+"="+em.envVars[key])
	}
	if len(em.pathDirs) > 0 {
		result = append(result, em.pathKey+"="+em.GetPath())
	}
	return result
}
