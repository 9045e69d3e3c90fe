package tools

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"net/http"
	"os"
	"path"
	"strings"
	"time"
)

// ChecksumType represents the type of checksum algorithm
type ChecksumType string

// SHA256 is the algorithm of the Node.js SHASUMS256.txt listings
const SHA256 ChecksumType = "sha256"

// ChecksumInfo contains checksum information for a file
type ChecksumInfo struct {
	Type     ChecksumType `json:"type" yaml:"type"`
	Value    string       `json:"value" yaml:"value"`
	URL      string       `json:"url,omitempty" yaml:"url,omitempty"`
	Filename string       `json:"filename,omitempty" yaml:"filename,omitempty"`
}

// ChecksumVerifier handles checksum verification for downloaded files
type ChecksumVerifier struct {
	client  *http.Client
	timeout time.Duration
}

// NewChecksumVerifier creates a new checksum verifier
func NewChecksumVerifier(client *http.Client, timeout time.Duration) *ChecksumVerifier {
	if client == nil {
		client = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = DefaultChecksumTimeout
	}
	return &ChecksumVerifier{client: client, timeout: timeout}
}

// VerifyFile verifies a file against the provided checksum information
func (cv *ChecksumVerifier) VerifyFile(ctx context.Context, filePath string, checksum ChecksumInfo) error {
	if checksum.Value == "" && checksum.URL == "" {
		return fmt.Errorf("no checksum value or URL provided")
	}
	if checksum.Type == "" {
		checksum.Type = SHA256
	}

	expectedChecksum := checksum.Value
	if expectedChecksum == "" {
		var err error
		expectedChecksum, err = cv.fetchChecksumFromURL(ctx, checksum.URL, checksum.Filename)
		if err != nil {
			return fmt.Errorf("failed to fetch checksum from URL: %w", err)
		}
	}

	actualChecksum, err := calculateChecksum(filePath, checksum.Type)
	if err != nil {
		return fmt.Errorf("failed to calculate checksum: %w", err)
	}

	// Compare checksums (case-insensitive)
	if !strings.EqualFold(expectedChecksum, actualChecksum) {
		return fmt.Errorf("checksum mismatch: expected %s, got %s", expectedChecksum, actualChecksum)
	}
	logVerbose("Checksum of %s verified (%s)", checksum.Filename, checksum.Type)
	return nil
}

// FetchChecksum downloads a checksum listing and returns the entry for filename
func (cv *ChecksumVerifier) FetchChecksum(ctx context.Context, url, filename string) (string, error) {
	return cv.fetchChecksumFromURL(ctx, url, filename)
}

// calculateChecksum calculates the checksum of a file
func calculateChecksum(filePath string, checksumType ChecksumType) (string, error) {
	var hasher hash.Hash
	switch checksumType {
	case SHA256:
		hasher = sha256.New()
	default:
		return "", fmt.Errorf("unsupported checksum type: %s", checksumType)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(hasher, file); err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// fetchChecksumFromURL fetches checksum from a remote URL
func (cv *ChecksumVerifier) fetchChecksumFromURL(ctx context.Context, url, filename string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, cv.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := cv.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch checksum URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("checksum URL returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read checksum response: %w", err)
	}

	content := string(body)

	// If filename is specified, parse the checksum file format
	if filename != "" {
		return parseChecksumFile(content, filename)
	}

	// Otherwise, assume the entire content is the checksum
	return strings.TrimSpace(content), nil
}

// parseChecksumFile parses a checksum file and extracts the checksum for a specific filename
// Supports formats like: "checksum  filename" or "checksum *filename"
func parseChecksumFile(content, filename string) (string, error) {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Fields(line)
		if len(parts) < 2 {
			continue
		}

		// Remove leading asterisk if present (binary mode indicator)
		fileInLine := strings.TrimPrefix(parts[1], "*")
		if fileInLine == filename || path.Base(fileInLine) == filename {
			return parts[0], nil
		}
	}
	return "", fmt.Errorf("checksum not found for file %s", filename)
}
