package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withHome(t *testing.T, dir string) {
	t.Helper()
	original := homeDirFunc
	homeDirFunc = func() (string, error) { return dir, nil }
	t.Cleanup(func() { homeDirFunc = original })
}

func TestLoad_Defaults(t *testing.T) {
	home := t.TempDir()
	withHome(t, home)
	t.Setenv("HNVM_PATH", "")

	s, err := Load()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, DirName), s.Path)
	assert.Equal(t, DefaultNodeDistURL, s.NodeDistURL)
	assert.Equal(t, DefaultRegistryURL, s.RegistryURL)
	assert.Equal(t, DefaultDownloadTimeout, s.DownloadTimeout)
	assert.False(t, s.SkipURLValidation)
	assert.Empty(t, s.OutputDestination)
}

func TestLoad_Environment(t *testing.T) {
	root := t.TempDir()
	t.Setenv("HNVM_PATH", root)
	t.Setenv("HNVM_OUTPUT_DESTINATION", "/tmp/out")
	t.Setenv("HNVM_SKIP_URL_VALIDATION", "true")
	t.Setenv("HNVM_NODE_VARIANT", "musl")
	t.Setenv("HNVM_PNPM_VERSION", "6.0.0")
	t.Setenv("HNVM_DOWNLOAD_TIMEOUT", "45s")
	t.Setenv("HNVM_REGISTRY_URL", "http://localhost:4873/")

	s, err := Load()
	require.NoError(t, err)

	assert.Equal(t, root, s.Path)
	assert.Equal(t, "/tmp/out", s.OutputDestination)
	assert.True(t, s.SkipURLValidation)
	assert.Equal(t, "musl", s.Variant("node"))
	assert.Empty(t, s.Variant("pnpm"))
	assert.Equal(t, "6.0.0", s.VersionOverride("pnpm"))
	assert.Equal(t, 45*time.Second, s.DownloadTimeout)
	assert.Equal(t, "http://localhost:4873", s.RegistryURL)
}

func TestLoad_ConfigFile(t *testing.T) {
	root := t.TempDir()
	t.Setenv("HNVM_PATH", root)
	t.Setenv("HNVM_NODE_VARIANT", "")
	content := "node-variant: glibc-217\nskip-checksum: true\nregistry-timeout: 5s\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, ConfigFileName), []byte(content), 0644))

	s, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "glibc-217", s.Variant("node"))
	assert.True(t, s.SkipChecksum)
	assert.Equal(t, 5*time.Second, s.RegistryTimeout)
	assert.Equal(t, 5*time.Second, s.GetTimeout(KeyRegistryTimeout, time.Minute))
	assert.Equal(t, time.Minute, s.GetTimeout("unknown-timeout", time.Minute))
}

func TestLoad_URLReplacements(t *testing.T) {
	root := t.TempDir()
	t.Setenv("HNVM_PATH", root)
	content := `url-replacements:
  - match: nodejs.org
    replace: nodejs.Mirror.corp
  - match: "regex:^http://(.+)"
    replace: "https://$1"
`
	require.NoError(t, os.WriteFile(filepath.Join(root, ConfigFileName), []byte(content), 0644))

	s, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []URLReplacement{
		{Match: "nodejs.org", Replace: "nodejs.Mirror.corp"},
		{Match: "regex:^http://(.+)", Replace: "https://$1"},
	}, s.URLReplacements)
}

func TestSettings_YAML(t *testing.T) {
	t.Setenv("HNVM_PATH", t.TempDir())

	s, err := Load()
	require.NoError(t, err)

	out, err := s.YAML()
	require.NoError(t, err)
	assert.Contains(t, string(out), "path: "+s.Path)
	assert.Contains(t, string(out), "registry-url: "+DefaultRegistryURL)
}
