package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestFindManifest_WalksUp(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "package.json"), `{"name": "app", "engines": {"node": ">=14", "pnpm": "6.0.0"}}`)
	nested := filepath.Join(root, "packages", "web", "src")
	require.NoError(t, os.MkdirAll(nested, 0755))

	m, err := FindManifest(nested)
	require.NoError(t, err)
	require.NotNil(t, m)

	assert.Equal(t, filepath.Join(root, "package.json"), m.Path)
	assert.Equal(t, ">=14", m.Engine("node"))
	assert.Equal(t, "6.0.0", m.Engine("pnpm"))
	assert.Empty(t, m.Engine("npm"))
}

func TestFindManifest_None(t *testing.T) {
	m, err := FindManifest(t.TempDir())
	require.NoError(t, err)
	if m != nil {
		// a package.json above the temp dir belongs to the host, not to this test
		t.Skipf("found unrelated manifest at %s", m.Path)
	}
	assert.Empty(t, m.Engine("node"))
}

func TestLoadManifest_JSON5(t *testing.T) {
	path := filepath.Join(t.TempDir(), "package.json")
	writeFile(t, path, `{
  // pinned for CI
  name: "app",
  engines: {
    node: "16.13.0",
  },
}`)

	m, err := LoadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, "16.13.0", m.Engine("node"))
}

func TestLoadManifest_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "package.json")
	writeFile(t, path, `{"engines": `)

	_, err := LoadManifest(path)
	assert.Error(t, err)
}

func TestManifest_BinEntry(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		bin     string
		want    string
		wantErr bool
	}{
		{"map", `{"name":"pnpm","bin":{"pnpm":"bin/pnpm.cjs","pnpx":"bin/pnpx.cjs"}}`, "pnpx", "bin/pnpx.cjs", false},
		{"string", `{"name":"tool","bin":"cli.js"}`, "tool", "cli.js", false},
		{"missing", `{"name":"npm","bin":{"npm":"bin/npm-cli.js"}}`, "npx", "", true},
		{"absent", `{"name":"lib"}`, "lib", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "package.json")
			writeFile(t, path, tt.json)
			m, err := LoadManifest(path)
			require.NoError(t, err)

			got, err := m.BinEntry(tt.bin)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, filepath.FromSlash(tt.want), got)
		})
	}
}
