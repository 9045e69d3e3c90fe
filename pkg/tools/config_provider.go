package tools

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ConfigProvider interface for providing configuration values
type ConfigProvider interface {
	GetTimeout(key string, defaultValue time.Duration) time.Duration
	GetInt(key string, defaultValue int) int
	GetString(key string, defaultValue string) string
	GetBool(key string, defaultValue bool) bool
}

// EnvironmentConfigProvider provides configuration from HNVM_* environment variables
type EnvironmentConfigProvider struct{}

// NewEnvironmentConfigProvider creates a new environment-based config provider
func NewEnvironmentConfigProvider() *EnvironmentConfigProvider {
	return &EnvironmentConfigProvider{}
}

// EnvVarForKey maps a configuration key to its environment variable, e.g. "download-timeout" to HNVM_DOWNLOAD_TIMEOUT
func EnvVarForKey(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(key))
}

// GetTimeout returns a timeout value from environment or default
func (p *EnvironmentConfigProvider) GetTimeout(key string, defaultValue time.Duration) time.Duration {
	if timeoutStr := os.Getenv(EnvVarForKey(key)); timeoutStr != "" {
		if timeout, err := time.ParseDuration(timeoutStr); err == nil && timeout > 0 {
			return timeout
		}
	}
	return defaultValue
}

// GetInt returns an integer value from environment or default
func (p *EnvironmentConfigProvider) GetInt(key string, defaultValue int) int {
	if value := os.Getenv(EnvVarForKey(key)); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// GetString returns a string value from environment or default
func (p *EnvironmentConfigProvider) GetString(key string, defaultValue string) string {
	if value := os.Getenv(EnvVarForKey(key)); value != "" {
		return value
	}
	return defaultValue
}

// GetBool returns a boolean value from environment or default
func (p *EnvironmentConfigProvider) GetBool(key string, defaultValue bool) bool {
	if value := os.Getenv(EnvVarForKey(key)); value != "" {
		return value == "true"
	}
	return defaultValue
}

// DownloadConfigProvider provides download-specific configuration
type DownloadConfigProvider struct {
	configProvider ConfigProvider
}

// NewDownloadConfigProvider creates a new download config provider
func NewDownloadConfigProvider(configProvider ConfigProvider) *DownloadConfigProvider {
	if configProvider == nil {
		configProvider = NewEnvironmentConfigProvider()
	}
	return &DownloadConfigProvider{
		configProvider: configProvider,
	}
}

// GetDownloadTimeout returns the download timeout
func (p *DownloadConfigProvider) GetDownloadTimeout() time.Duration {
	return p.configProvider.GetTimeout(KeyDownloadTimeout, DefaultDownloadTimeout)
}

// GetRegistryTimeout returns the registry timeout
func (p *DownloadConfigProvider) GetRegistryTimeout() time.Duration {
	return p.configProvider.GetTimeout(KeyRegistryTimeout, DefaultRegistryTimeout)
}

// GetValidationTimeout returns the timeout of the pre-download URL probe
func (p *DownloadConfigProvider) GetValidationTimeout() time.Duration {
	return p.configProvider.GetTimeout(KeyValidationTimeout, DefaultValidationTimeout)
}

// GetChecksumTimeout returns the checksum timeout
func (p *DownloadConfigProvider) GetChecksumTimeout() time.Duration {
	return p.configProvider.GetTimeout(KeyChecksumTimeout, DefaultChecksumTimeout)
}

// GetTLSTimeout returns the TLS timeout
func (p *DownloadConfigProvider) GetTLSTimeout() time.Duration {
	return p.configProvider.GetTimeout(KeyTLSTimeout, DefaultTLSTimeout)
}

// GetResponseTimeout returns the response timeout
func (p *DownloadConfigProvider) GetResponseTimeout() time.Duration {
	return p.configProvider.GetTimeout(KeyResponseTimeout, DefaultResponseTimeout)
}

// GetIdleTimeout returns the idle timeout
func (p *DownloadConfigProvider) GetIdleTimeout() time.Duration {
	return p.configProvider.GetTimeout(KeyIdleTimeout, DefaultIdleTimeout)
}

// GetMinFileSize returns the minimum file size
func (p *DownloadConfigProvider) GetMinFileSize() int64 {
	return int64(p.configProvider.GetInt(KeyMinFileSize, DefaultMinFileSize))
}

// GetMaxFileSize returns the maximum file size
func (p *DownloadConfigProvider) GetMaxFileSize() int64 {
	return int64(p.configProvider.GetInt(KeyMaxFileSize, DefaultMaxFileSize))
}

// GetNodeArchiveType returns the archive flavor to download Node.js as on unix (tar.gz or tar.xz)
func (p *DownloadConfigProvider) GetNodeArchiveType() string {
	if p.configProvider.GetString(KeyNodeArchive, ArchiveTypeTarGz) == ArchiveTypeTarXz {
		return ArchiveTypeTarXz
	}
	return ArchiveTypeTarGz
}
