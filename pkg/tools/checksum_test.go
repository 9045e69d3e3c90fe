package tools

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestChecksumVerifier_VerifyFile(t *testing.T) {
	// Create a temporary file with known content
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "node-v16.13.0-linux-x64.tar.gz")
	testContent := "Hello, hnvm checksum verification!"

	if err := os.WriteFile(testFile, []byte(testContent), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	sum := sha256.Sum256([]byte(testContent))
	expectedChecksum := hex.EncodeToString(sum[:])

	verifier := NewChecksumVerifier(nil, time.Second)

	tests := []struct {
		name        string
		checksum    ChecksumInfo
		expectError bool
	}{
		{
			name:     "valid checksum",
			checksum: ChecksumInfo{Type: SHA256, Value: expectedChecksum},
		},
		{
			name:     "upper case checksum",
			checksum: ChecksumInfo{Type: SHA256, Value: strings.ToUpper(expectedChecksum)},
		},
		{
			name:        "invalid checksum",
			checksum:    ChecksumInfo{Type: SHA256, Value: "invalid_checksum"},
			expectError: true,
		},
		{
			name:        "empty checksum",
			checksum:    ChecksumInfo{Type: SHA256},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := verifier.VerifyFile(context.Background(), testFile, tt.checksum)
			if tt.expectError && err == nil {
				t.Errorf("Expected error but got none")
			}
			if !tt.expectError && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

func TestCalculateChecksum(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "test.txt")
	testContent := "Test content for checksum calculation"

	if err := os.WriteFile(testFile, []byte(testContent), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	checksum, err := calculateChecksum(testFile, SHA256)
	if err != nil {
		t.Fatalf("Failed to calculate checksum: %v", err)
	}

	sum := sha256.Sum256([]byte(testContent))
	if expected := hex.EncodeToString(sum[:]); checksum != expected {
		t.Errorf("Checksum mismatch: expected %s, got %s", expected, checksum)
	}
}

func TestParseChecksumFile(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		filename    string
		expected    string
		expectError bool
	}{
		{
			name:     "standard format",
			content:  "abc123def456  node-v16.13.0-linux-x64.tar.gz\n789ghi012jkl  node-v16.13.0-win-x64.zip\n",
			filename: "node-v16.13.0-linux-x64.tar.gz",
			expected: "abc123def456",
		},
		{
			name:     "binary mode format",
			content:  "abc123def456 *test.zip\n789ghi012jkl *other.zip\n",
			filename: "test.zip",
			expected: "abc123def456",
		},
		{
			name:     "path entries match on base name",
			content:  "abc123def456  win-x64/node.exe\n",
			filename: "node.exe",
			expected: "abc123def456",
		},
		{
			name:        "file not found",
			content:     "abc123def456  test.zip\n789ghi012jkl  other.zip\n",
			filename:    "missing.zip",
			expectError: true,
		},
		{
			name:     "comments and blank lines",
			content:  "# generated\n\nabc123def456    test.zip\n",
			filename: "test.zip",
			expected: "abc123def456",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseChecksumFile(tt.content, tt.filename)

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error but got none")
				}
				return
			}

			if err != nil {
				t.Errorf("Unexpected error: %v", err)
				return
			}

			if result != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, result)
			}
		})
	}
}

func TestChecksumVerifier_FetchChecksum(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v16.13.0/SHASUMS256.txt" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("1111  node-v16.13.0-darwin-arm64.tar.gz\n2222  node-v16.13.0-linux-x64.tar.gz\n"))
	}))
	defer server.Close()

	verifier := NewChecksumVerifier(server.Client(), time.Second)

	value, err := verifier.FetchChecksum(context.Background(), server.URL+"/v16.13.0/SHASUMS256.txt", "node-v16.13.0-linux-x64.tar.gz")
	if err != nil {
		t.Fatalf("FetchChecksum() error = %v", err)
	}
	if value != "2222" {
		t.Errorf("FetchChecksum() = %s, want 2222", value)
	}

	if _, err := verifier.FetchChecksum(context.Background(), server.URL+"/v1.0.0/SHASUMS256.txt", "node.tar.gz"); err == nil {
		t.Errorf("Expected an error for a missing listing")
	}
}
