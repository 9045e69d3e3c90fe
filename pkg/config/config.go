package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every configuration key when read from the environment
const EnvPrefix = "HNVM"

// ConfigFileName is the optional settings file inside the cache root
const ConfigFileName = "config.yaml"

// Configuration keys. Each key is also read from HNVM_<KEY> with dashes turned into underscores.
const (
	KeyPath               = "path"
	KeyOutputDestination  = "output-destination"
	KeySkipURLValidation  = "skip-url-validation"
	KeySkipChecksum       = "skip-checksum"
	KeyVerbose            = "verbose"
	KeyNodeDistURL        = "node-dist-url"
	KeyNodeVariantDistURL = "node-variant-dist-url"
	KeyRegistryURL        = "registry-url"
	KeyDownloadTimeout    = "download-timeout"
	KeyRegistryTimeout    = "registry-timeout"
	KeyValidationTimeout  = "validation-timeout"
	KeyURLReplacements    = "url-replacements"
)

// Defaults
const (
	DefaultNodeDistURL        = "https://nodejs.org/dist"
	DefaultNodeVariantDistURL = "https://unofficial-builds.nodejs.org/download/release"
	DefaultRegistryURL        = "https://registry.npmjs.org"
	DefaultDownloadTimeout    = 10 * time.Minute
	DefaultRegistryTimeout    = 2 * time.Minute
	DefaultValidationTimeout  = 30 * time.Second
)

// Settings holds the effective hnvm configuration
type Settings struct {
	Path               string           `yaml:"path"`
	OutputDestination  string           `yaml:"output-destination,omitempty"`
	SkipURLValidation  bool             `yaml:"skip-url-validation"`
	SkipChecksum       bool             `yaml:"skip-checksum"`
	Verbose            bool             `yaml:"verbose"`
	NodeDistURL        string           `yaml:"node-dist-url"`
	NodeVariantDistURL string           `yaml:"node-variant-dist-url"`
	RegistryURL        string           `yaml:"registry-url"`
	DownloadTimeout    time.Duration    `yaml:"download-timeout"`
	RegistryTimeout    time.Duration    `yaml:"registry-timeout"`
	ValidationTimeout  time.Duration    `yaml:"validation-timeout"`
	URLReplacements    []URLReplacement `yaml:"url-replacements,omitempty"`

	v *viper.Viper
}

// URLReplacement rewrites matching URLs, e.g. to route downloads through a corporate mirror
type URLReplacement struct {
	Match   string `yaml:"match" mapstructure:"match"`
	Replace string `yaml:"replace" mapstructure:"replace"`
}

// Load reads settings from the environment and the optional config file
func Load() (*Settings, error) {
	return LoadWith(viper.New())
}

// LoadWith reads settings using the given viper instance
func LoadWith(v *viper.Viper) (*Settings, error) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if defaultPath, err := DefaultPath(); err == nil {
		v.SetDefault(KeyPath, defaultPath)
	}
	v.SetDefault(KeyNodeDistURL, DefaultNodeDistURL)
	v.SetDefault(KeyNodeVariantDistURL, DefaultNodeVariantDistURL)
	v.SetDefault(KeyRegistryURL, DefaultRegistryURL)
	v.SetDefault(KeyDownloadTimeout, DefaultDownloadTimeout)
	v.SetDefault(KeyRegistryTimeout, DefaultRegistryTimeout)
	v.SetDefault(KeyValidationTimeout, DefaultValidationTimeout)

	root := v.GetString(KeyPath)
	if root == "" {
		return nil, fmt.Errorf("cannot determine cache root: set %s_PATH", EnvPrefix)
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("invalid cache root %q: %w", v.GetString(KeyPath), err)
	}

	configFile := filepath.Join(root, ConfigFileName)
	if _, err := os.Stat(configFile); err == nil {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", configFile, err)
		}
	}

	s := &Settings{
		Path:               root,
		OutputDestination:  v.GetString(KeyOutputDestination),
		SkipURLValidation:  v.GetBool(KeySkipURLValidation),
		SkipChecksum:       v.GetBool(KeySkipChecksum),
		Verbose:            v.GetBool(KeyVerbose),
		NodeDistURL:        strings.TrimSuffix(v.GetString(KeyNodeDistURL), "/"),
		NodeVariantDistURL: strings.TrimSuffix(v.GetString(KeyNodeVariantDistURL), "/"),
		RegistryURL:        strings.TrimSuffix(v.GetString(KeyRegistryURL), "/"),
		DownloadTimeout:    positive(v.GetDuration(KeyDownloadTimeout), DefaultDownloadTimeout),
		RegistryTimeout:    positive(v.GetDuration(KeyRegistryTimeout), DefaultRegistryTimeout),
		ValidationTimeout:  positive(v.GetDuration(KeyValidationTimeout), DefaultValidationTimeout),
		v:                  v,
	}
	if err := v.UnmarshalKey(KeyURLReplacements, &s.URLReplacements); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", KeyURLReplacements, err)
	}
	return s, nil
}

func positive(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}

// Variant returns the build variant requested for a tool (HNVM_<TOOL>_VARIANT)
func (s *Settings) Variant(tool string) string {
	return strings.TrimSpace(s.v.GetString(tool + "-variant"))
}

// VersionOverride returns the version requested for a tool through HNVM_<TOOL>_VERSION
func (s *Settings) VersionOverride(tool string) string {
	return strings.TrimSpace(s.v.GetString(tool + "-version"))
}

// GetTimeout returns a duration setting or the default
func (s *Settings) GetTimeout(key string, defaultValue time.Duration) time.Duration {
	if s.v.IsSet(key) {
		if d := s.v.GetDuration(key); d > 0 {
			return d
		}
	}
	return defaultValue
}

// GetInt returns an integer setting or the default
func (s *Settings) GetInt(key string, defaultValue int) int {
	if s.v.IsSet(key) {
		return s.v.GetInt(key)
	}
	return defaultValue
}

// GetString returns a string setting or the default
func (s *Settings) GetString(key string, defaultValue string) string {
	if value := s.v.GetString(key); value != "" {
		return value
	}
	return defaultValue
}

// GetBool returns a boolean setting or the default
func (s *Settings) GetBool(key string, defaultValue bool) bool {
	if s.v.IsSet(key) {
		return s.v.GetBool(key)
	}
	return defaultValue
}

// YAML renders the effective settings
func (s *Settings) YAML() ([]byte, error) {
	return yaml.Marshal(s)
}
