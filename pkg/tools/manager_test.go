package tools

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_Tools(t *testing.T) {
	m := NewManager(URLConfig{}, nil)

	assert.Equal(t, []string{"node", "npm", "pnpm"}, m.ToolNames())
	assert.Equal(t, []string{"node", "npm", "npx", "pnpm", "pnpx"}, m.Binaries())

	_, err := m.GetTool("yarn")
	assert.ErrorIs(t, err, ErrConfig)

	tests := map[string]string{
		"node": "node",
		"npm":  "npm",
		"npx":  "npm",
		"pnpm": "pnpm",
		"pnpx": "pnpm",
	}
	for binary, tool := range tests {
		got, err := m.ToolForBinary(binary)
		require.NoError(t, err)
		assert.Equal(t, tool, got.Name(), binary)
	}
	_, err = m.ToolForBinary("yarn")
	assert.ErrorIs(t, err, ErrConfig)
}

func TestManager_NodeArchiveType(t *testing.T) {
	t.Setenv("HNVM_NODE_ARCHIVE", "tar.xz")
	m := NewManager(URLConfig{}, nil)
	m.SetPlatform(linuxX64)

	node, err := m.GetTool(ToolNode)
	require.NoError(t, err)
	url, err := node.DownloadURL("16.13.0", "", m.Platform())
	require.NoError(t, err)
	assert.Equal(t, "https://nodejs.org/dist/v16.13.0/node-v16.13.0-linux-x64.tar.xz", url)
}

func TestDownloadConfigProvider(t *testing.T) {
	t.Setenv("HNVM_DOWNLOAD_TIMEOUT", "90s")
	t.Setenv("HNVM_MIN_FILE_SIZE", "10")
	t.Setenv("HNVM_VALIDATION_TIMEOUT", "not-a-duration")

	p := NewDownloadConfigProvider(nil)
	assert.Equal(t, 90*time.Second, p.GetDownloadTimeout())
	assert.Equal(t, int64(10), p.GetMinFileSize())
	assert.Equal(t, DefaultValidationTimeout, p.GetValidationTimeout())
	assert.Equal(t, ArchiveTypeTarGz, p.GetNodeArchiveType())
	assert.Equal(t, "HNVM_NODE_ARCHIVE", EnvVarForKey(KeyNodeArchive))
}

func TestPlatform(t *testing.T) {
	tests := []struct {
		platform Platform
		want     string
	}{
		{Platform{OS: "linux", Arch: "amd64"}, "linux-x64"},
		{Platform{OS: "linux", Arch: "arm"}, "linux-armv7l"},
		{Platform{OS: "darwin", Arch: "arm64"}, "darwin-arm64"},
		{Platform{OS: "windows", Arch: "386"}, "win-x86"},
	}
	for _, tt := range tests {
		got, err := tt.platform.NodePlatform()
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := Platform{OS: "linux", Arch: "mips"}.NodePlatform()
	assert.Error(t, err)

	assert.Equal(t, "node.exe", Platform{OS: "windows", Arch: "amd64"}.ExecutableName("node"))
	assert.Equal(t, "node", linuxX64.ExecutableName("node"))
	assert.Equal(t, "HNVM_NODE_VARIANT", VariantEnvVar("node"))
	assert.Equal(t, "HNVM_PNPM_VERSION", VersionOverrideEnvVar("pnpm"))
}
