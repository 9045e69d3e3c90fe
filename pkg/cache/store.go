// Package cache stores installed tool versions under a content-addressed directory tree:
//
//	<root>/<tool>/<version>[_<variant>]/
//
// Entries are populated in a private staging directory and published with a single
// rename, so concurrent hnvm processes never observe a partially installed version.
package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gnodet/hnvm/pkg/util"
	"github.com/gnodet/hnvm/pkg/version"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

const (
	// MarkerFile is written last inside an entry; its presence means the entry is complete
	MarkerFile = ".hnvm-install.yaml"
	// StagingDir holds in-progress installs and entries moved aside
	StagingDir = ".staging"

	publishAttempts = 3
)

// Key identifies a cache entry
type Key struct {
	Tool    string
	Version string
	Variant string
}

// DirName is the entry directory name inside the tool directory. Semver never
// contains an underscore, so no variant key shares a directory with a plain one.
func (k Key) DirName() string {
	if k.Variant != "" {
		return k.Version + "_" + k.Variant
	}
	return k.Version
}

func (k Key) String() string {
	return k.Tool + "@" + k.DirName()
}

// Metadata is the content of the completion marker
type Metadata struct {
	Tool        string    `yaml:"tool"`
	Version     string    `yaml:"version"`
	Variant     string    `yaml:"variant,omitempty"`
	URL         string    `yaml:"url,omitempty"`
	InstalledAt time.Time `yaml:"installedAt"`
}

// Entry is a complete, installed cache entry
type Entry struct {
	Key      Key
	Dir      string
	Metadata Metadata
}

// Store is a cache rooted at a directory
type Store struct {
	fs   afero.Fs
	root string
	now  func() time.Time
}

// NewStore creates a store on the host filesystem
func NewStore(root string) *Store {
	return NewStoreWithFs(afero.NewOsFs(), root)
}

// NewStoreWithFs creates a store on an arbitrary filesystem
func NewStoreWithFs(fs afero.Fs, root string) *Store {
	return &Store{fs: fs, root: root, now: time.Now}
}

// Root returns the cache root directory
func (s *Store) Root() string {
	return s.root
}

// Path returns the directory an entry lives in, whether or not it is installed
func (s *Store) Path(key Key) string {
	return filepath.Join(s.root, key.Tool, key.DirName())
}

// Has reports whether a complete entry exists for key
func (s *Store) Has(key Key) bool {
	ok, err := afero.Exists(s.fs, filepath.Join(s.Path(key), MarkerFile))
	return err == nil && ok
}

// Get returns the complete entry for key
func (s *Store) Get(key Key) (*Entry, error) {
	meta, err := s.readMarker(s.Path(key))
	if err != nil {
		return nil, err
	}
	return &Entry{Key: key, Dir: s.Path(key), Metadata: *meta}, nil
}

// Install populates a new entry through populate and publishes it atomically.
// populate receives an empty staging directory. When another process published
// the same key first, the staged copy is discarded and the existing entry returned.
func (s *Store) Install(key Key, url string, populate func(stagingDir string) error) (*Entry, error) {
	if key.Tool == "" || key.Version == "" {
		return nil, fmt.Errorf("invalid cache key %q", key.String())
	}
	if s.Has(key) {
		return s.Get(key)
	}

	stagingRoot := filepath.Join(s.root, StagingDir)
	if err := s.fs.MkdirAll(stagingRoot, 0755); err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}
	staging, err := afero.TempDir(s.fs, stagingRoot, key.Tool+"-"+key.DirName()+"-")
	if err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}
	published := false
	defer func() {
		if !published {
			if err := s.fs.RemoveAll(staging); err != nil {
				util.LogVerbose("Failed to remove staging directory %s: %v", staging, err)
			}
		}
	}()

	if err := populate(staging); err != nil {
		return nil, err
	}

	meta := Metadata{
		Tool:        key.Tool,
		Version:     key.Version,
		Variant:     key.Variant,
		URL:         url,
		InstalledAt: s.now().UTC(),
	}
	if err := s.writeMarker(staging, meta); err != nil {
		return nil, err
	}

	final := s.Path(key)
	if err := s.fs.MkdirAll(filepath.Dir(final), 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", filepath.Dir(final), err)
	}

	for attempt := 0; attempt < publishAttempts; attempt++ {
		err := s.fs.Rename(staging, final)
		if err == nil {
			published = true
			util.LogVerbose("Installed %s into %s", key, final)
			return &Entry{Key: key, Dir: final, Metadata: meta}, nil
		}

		if s.Has(key) {
			// Lost the race against another process; its entry is equivalent.
			util.LogVerbose("%s was installed concurrently, discarding staged copy", key)
			return s.Get(key)
		}

		exists, statErr := afero.Exists(s.fs, final)
		if statErr != nil || !exists {
			return nil, fmt.Errorf("failed to publish %s: %w", key, err)
		}
		if err := s.moveAside(final); err != nil {
			return nil, err
		}
		if s.Has(key) {
			util.LogVerbose("%s was installed concurrently, discarding staged copy", key)
			return s.Get(key)
		}
	}
	return nil, fmt.Errorf("failed to publish %s after %d attempts", key, publishAttempts)
}

// moveAside renames an incomplete entry out of the way so the final path can be claimed.
// An entry completed by another process in the meantime is put back.
func (s *Store) moveAside(dir string) error {
	trash, err := afero.TempDir(s.fs, filepath.Join(s.root, StagingDir), "stale-")
	if err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}
	target := filepath.Join(trash, filepath.Base(dir))
	if err := s.fs.Rename(dir, target); err != nil {
		s.fs.RemoveAll(trash)
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to move incomplete entry %s aside: %w", dir, err)
	}
	if ok, _ := afero.Exists(s.fs, filepath.Join(target, MarkerFile)); ok {
		if err := s.fs.Rename(target, dir); err == nil {
			util.LogVerbose("Entry %s was completed concurrently, restored it", dir)
		}
	} else {
		util.LogVerbose("Moved incomplete entry %s to %s", dir, target)
	}
	if err := s.fs.RemoveAll(trash); err != nil {
		util.LogVerbose("Failed to remove %s: %v", trash, err)
	}
	return nil
}

// Installed returns the versions of tool installed without a variant, newest first
func (s *Store) Installed(tool string) ([]string, error) {
	entries, err := s.Entries(tool)
	if err != nil {
		return nil, err
	}
	var versions []string
	for _, e := range entries {
		if e.Key.Variant == "" {
			versions = append(versions, e.Key.Version)
		}
	}
	return version.SortDescending(versions), nil
}

// Entries returns every complete entry of tool, newest version first
func (s *Store) Entries(tool string) ([]Entry, error) {
	toolDir := filepath.Join(s.root, tool)
	infos, err := afero.ReadDir(s.fs, toolDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list %s: %w", toolDir, err)
	}

	var entries []Entry
	for _, info := range infos {
		if !info.IsDir() {
			continue
		}
		dir := filepath.Join(toolDir, info.Name())
		meta, err := s.readMarker(dir)
		if err != nil {
			util.LogVerbose("Ignoring incomplete entry %s: %v", dir, err)
			continue
		}
		entries = append(entries, Entry{
			Key:      Key{Tool: tool, Version: meta.Version, Variant: meta.Variant},
			Dir:      dir,
			Metadata: *meta,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if c := version.Compare(entries[i].Key.Version, entries[j].Key.Version); c != 0 {
			return c > 0
		}
		return entries[i].Key.Variant < entries[j].Key.Variant
	})
	return entries, nil
}

// Tools lists the tools that have a directory in the cache
func (s *Store) Tools() ([]string, error) {
	infos, err := afero.ReadDir(s.fs, s.root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var tools []string
	for _, info := range infos {
		if info.IsDir() && !strings.HasPrefix(info.Name(), ".") {
			tools = append(tools, info.Name())
		}
	}
	return tools, nil
}

func (s *Store) writeMarker(dir string, meta Metadata) error {
	data, err := yaml.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to encode install marker: %w", err)
	}
	if err := afero.WriteFile(s.fs, filepath.Join(dir, MarkerFile), data, 0644); err != nil {
		return fmt.Errorf("failed to write install marker: %w", err)
	}
	return nil
}

func (s *Store) readMarker(dir string) (*Metadata, error) {
	data, err := afero.ReadFile(s.fs, filepath.Join(dir, MarkerFile))
	if err != nil {
		return nil, err
	}
	var meta Metadata
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("corrupt install marker in %s: %w", dir, err)
	}
	if meta.Version == "" {
		return nil, fmt.Errorf("install marker in %s has no version", dir)
	}
	return &meta, nil
}
