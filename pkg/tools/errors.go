package tools

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every typed error below matches exactly one of these with errors.Is.
var (
	ErrNoMatchingVersion        = errors.New("no matching version")
	ErrUnknownTagOrInvalidRange = errors.New("unknown dist-tag or invalid range")
	ErrValidation               = errors.New("URL validation failed")
	ErrFetch                    = errors.New("fetch failed")
	ErrLaunch                   = errors.New("launch failed")
	ErrConfig                   = errors.New("configuration error")
)

// ToolError represents a standardized error for tool operations
type ToolError struct {
	Tool    string // Tool name (e.g., "node", "pnpm")
	Version string // Tool version (e.g., "14.18.0")
	Op      string // Operation (e.g., "install", "resolve", "download")
	Err     error  // Underlying error
}

// Error implements the error interface
func (e *ToolError) Error() string {
	if e.Version != "" {
		return fmt.Sprintf("%s %s %s failed: %v", e.Tool, e.Version, e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %v", e.Tool, e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping
func (e *ToolError) Unwrap() error {
	return e.Err
}

// NewToolError creates a new ToolError
func NewToolError(tool, version, op string, err error) *ToolError {
	return &ToolError{
		Tool:    tool,
		Version: version,
		Op:      op,
		Err:     err,
	}
}

// InstallError creates a standardized installation error
func InstallError(tool, version string, err error) *ToolError {
	return NewToolError(tool, version, "install", err)
}

// DownloadError creates a standardized download error
func DownloadError(tool, version string, err error) *ToolError {
	return NewToolError(tool, version, "download", err)
}

// WrapError wraps an error with tool context if it's not already a ToolError
func WrapError(tool, version, operation string, err error) error {
	if err == nil {
		return nil
	}
	var toolErr *ToolError
	if errors.As(err, &toolErr) {
		return err
	}
	return NewToolError(tool, version, operation, err)
}

// ResolutionError is returned by the version matcher
type ResolutionError struct {
	Kind    error // ErrNoMatchingVersion or ErrUnknownTagOrInvalidRange
	Tool    string
	Package string
	Spec    string
}

func (e *ResolutionError) Error() string {
	if errors.Is(e.Kind, ErrUnknownTagOrInvalidRange) {
		return fmt.Sprintf("%q was not a valid semver range, nor was it a dist-tag of %s", e.Spec, e.Package)
	}
	return fmt.Sprintf("Failed to find a matching version for %q!", e.Spec)
}

func (e *ResolutionError) Unwrap() error { return e.Kind }

// ValidationError is returned when a download URL is not reachable before download
type ValidationError struct {
	Tool       string
	Version    string
	Variant    string
	URL        string
	StatusCode int
	Err        error
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "URL validation failed for %s %s", e.Tool, e.Version)
	fmt.Fprintf(&b, "\n  URL: %s", e.URL)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, "\n  HTTP status: %d", e.StatusCode)
	} else if e.Err != nil {
		fmt.Fprintf(&b, "\n  Cause: %v", e.Err)
	}
	b.WriteString("\n  The requested package/version may not exist")
	if e.Variant != "" {
		fmt.Fprintf(&b, "\n  %s='%s'", VariantEnvVar(e.Tool), e.Variant)
		fmt.Fprintf(&b, "\n  This variant may not be available for %s %s", e.Tool, e.Version)
	}
	return b.String()
}

func (e *ValidationError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrValidation, e.Err}
	}
	return []error{ErrValidation}
}

// FetchError is returned when an archive download fails
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("failed to download %s: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("failed to download %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrFetch, e.Err}
	}
	return []error{ErrFetch}
}

// LaunchError is returned when the resolved binary cannot be executed
type LaunchError struct {
	Binary string
	Reason string // "not found" or "not executable"
	Err    error
}

func (e *LaunchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot launch %s: %s: %v", e.Binary, e.Reason, e.Err)
	}
	return fmt.Sprintf("cannot launch %s: %s", e.Binary, e.Reason)
}

func (e *LaunchError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrLaunch, e.Err}
	}
	return []error{ErrLaunch}
}

// ConfigError reports malformed input such as a bad matcher request or manifest
type ConfigError struct {
	Msg string
	Err error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *ConfigError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrConfig, e.Err}
	}
	return []error{ErrConfig}
}

// Launch failure reasons
const (
	ReasonNotFound      = "not found"
	ReasonNotExecutable = "not executable"
)

// ExitCode maps an error to the process exit status hnvm terminates with
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var launchErr *LaunchError
	if errors.As(err, &launchErr) {
		if launchErr.Reason == ReasonNotExecutable {
			return 126
		}
		return 127
	}
	return 1
}
