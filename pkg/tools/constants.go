package tools

import "time"

// Download Configuration Constants
const (
	// File size limits - permissive, just enough to catch empty or absurd responses
	DefaultMinFileSize = 1024       // 1KB minimum file size
	DefaultMaxFileSize = 2147483648 // 2GB maximum file size

	// Timeout defaults
	DefaultDownloadTimeout   = 600 * time.Second // 10 minutes
	DefaultRegistryTimeout   = 120 * time.Second // 2 minutes
	DefaultValidationTimeout = 30 * time.Second
	DefaultChecksumTimeout   = 120 * time.Second // 2 minutes
	DefaultTLSTimeout        = 120 * time.Second // 2 minutes
	DefaultResponseTimeout   = 120 * time.Second // 2 minutes
	DefaultIdleTimeout       = 90 * time.Second  // 90 seconds

	MaxRedirects = 10
)

// Base URLs
const (
	NodeJSDistBase        = "https://nodejs.org/dist"
	NodeJSUnofficialBase  = "https://unofficial-builds.nodejs.org/download/release"
	NpmRegistryBase       = "https://registry.npmjs.org"
	NodeChecksumsFileName = "SHASUMS256.txt"
	UserAgent             = "hnvm/1.0 (https://github.com/gnodet/hnvm)"
)

// Configuration keys, also readable from the environment as HNVM_<KEY>
const (
	KeyDownloadTimeout   = "download-timeout"
	KeyRegistryTimeout   = "registry-timeout"
	KeyValidationTimeout = "validation-timeout"
	KeyChecksumTimeout   = "checksum-timeout"
	KeyTLSTimeout        = "tls-timeout"
	KeyResponseTimeout   = "response-timeout"
	KeyIdleTimeout       = "idle-timeout"
	KeyMinFileSize       = "min-file-size"
	KeyMaxFileSize       = "max-file-size"
	KeyNodeArchive       = "node-archive"
)

// Environment variable names hnvm reads directly
const (
	EnvPrefix            = "HNVM"
	EnvPath              = "HNVM_PATH"
	EnvOutputDestination = "HNVM_OUTPUT_DESTINATION"
	EnvVerbose           = "HNVM_VERBOSE"
)

// File Extensions
const (
	ExtExe   = ".exe"
	ExtZip   = ".zip"
	ExtTarGz = ".tar.gz"
	ExtTarXz = ".tar.xz"
	ExtTgz   = ".tgz"
)

// Archive Types
const (
	ArchiveTypeZip   = "zip"
	ArchiveTypeTarGz = "tar.gz"
	ArchiveTypeTarXz = "tar.xz"
)

// Tool Names
const (
	ToolNode = "node"
	ToolNpm  = "npm"
	ToolPnpm = "pnpm"
)

// Binary Names
const (
	BinaryNode = "node"
	BinaryNpm  = "npm"
	BinaryNpx  = "npx"
	BinaryPnpm = "pnpm"
	BinaryPnpx = "pnpx"
)
