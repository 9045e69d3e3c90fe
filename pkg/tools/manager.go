package tools

import (
	"fmt"
	"io"
	"net/http"
	"sort"
)

// URLConfig holds the remote locations tools are fetched from
type URLConfig struct {
	NodeDistURL        string
	NodeVariantDistURL string
	RegistryURL        string
}

// Manager knows every supported tool and hands out the network clients used to fetch them
type Manager struct {
	tools    map[string]Tool
	order    []string
	provider *DownloadConfigProvider
	client   *http.Client
	platform Platform
	replacer *URLReplacer
}

// NewManager creates a new tool manager
func NewManager(urls URLConfig, configProvider ConfigProvider) *Manager {
	provider := NewDownloadConfigProvider(configProvider)
	manager := &Manager{
		tools:    make(map[string]Tool),
		provider: provider,
		client:   newHTTPClient(provider),
		platform: CurrentPlatform(),
	}

	// Register built-in tools
	manager.RegisterTool(NewNodeTool(urls.NodeDistURL, urls.NodeVariantDistURL, provider.GetNodeArchiveType()))
	manager.RegisterTool(NewNpmTool(urls.RegistryURL))
	manager.RegisterTool(NewPnpmTool(urls.RegistryURL))

	return manager
}

// newHTTPClient creates an HTTP client with granular timeouts for better handling of slow servers
func newHTTPClient(provider *DownloadConfigProvider) *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			TLSHandshakeTimeout:   provider.GetTLSTimeout(),
			ResponseHeaderTimeout: provider.GetResponseTimeout(),
			IdleConnTimeout:       provider.GetIdleTimeout(),
		},
		// Use context timeouts instead of a global client timeout for better control
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= MaxRedirects {
				return fmt.Errorf("too many redirects")
			}
			return nil
		},
	}
}

// RegisterTool registers a tool with the manager
func (m *Manager) RegisterTool(tool Tool) {
	if _, exists := m.tools[tool.Name()]; !exists {
		m.order = append(m.order, tool.Name())
	}
	m.tools[tool.Name()] = tool
}

// GetTool returns a tool by name
func (m *Manager) GetTool(name string) (Tool, error) {
	tool, exists := m.tools[name]
	if !exists {
		return nil, &ConfigError{Msg: fmt.Sprintf("unknown tool: %s (supported: node, npm, pnpm)", name)}
	}
	return tool, nil
}

// ToolNames returns the registered tool names in registration order
func (m *Manager) ToolNames() []string {
	names := make([]string, len(m.order))
	copy(names, m.order)
	return names
}

// ToolForBinary returns the tool owning a binary name: npx belongs to npm, pnpx to pnpm
func (m *Manager) ToolForBinary(binary string) (Tool, error) {
	switch binary {
	case BinaryNode:
		return m.GetTool(ToolNode)
	case BinaryNpm, BinaryNpx:
		return m.GetTool(ToolNpm)
	case BinaryPnpm, BinaryPnpx:
		return m.GetTool(ToolPnpm)
	}
	return nil, &ConfigError{Msg: fmt.Sprintf("unknown binary: %s", binary)}
}

// Binaries returns every binary name hnvm can act as, sorted
func (m *Manager) Binaries() []string {
	seen := map[string]bool{}
	var binaries []string
	for _, tool := range m.tools {
		for _, b := range tool.Binaries() {
			if !seen[b] {
				seen[b] = true
				binaries = append(binaries, b)
			}
		}
	}
	sort.Strings(binaries)
	return binaries
}

// Platform returns the platform downloads target
func (m *Manager) Platform() Platform {
	return m.platform
}

// SetPlatform overrides the target platform
func (m *Manager) SetPlatform(p Platform) {
	m.platform = p
}

// SetURLReplacer installs the mirror rules applied by RewriteURL
func (m *Manager) SetURLReplacer(r *URLReplacer) {
	m.replacer = r
}

// RewriteURL applies the configured mirror rules to url
func (m *Manager) RewriteURL(url string) string {
	return m.replacer.Apply(url)
}

// Client returns the shared HTTP client
func (m *Manager) Client() *http.Client {
	return m.client
}

// Validator returns a URL validator using the shared client
func (m *Manager) Validator() *Validator {
	return NewValidator(m.client, m.provider.GetValidationTimeout())
}

// Downloader returns a downloader reporting progress to w when showProgress is set
func (m *Manager) Downloader(w io.Writer, showProgress bool) *Downloader {
	return &Downloader{
		client:       m.client,
		timeout:      m.provider.GetDownloadTimeout(),
		minSize:      m.provider.GetMinFileSize(),
		maxSize:      m.provider.GetMaxFileSize(),
		progress:     w,
		showProgress: showProgress,
	}
}

// ChecksumVerifier returns a verifier fetching checksum listings with the shared client
func (m *Manager) ChecksumVerifier() *ChecksumVerifier {
	return NewChecksumVerifier(m.client, m.provider.GetChecksumTimeout())
}
