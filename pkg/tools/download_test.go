package tools

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestValidateFileFormat(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		header   []byte
		expected bool
	}{
		{
			name:     "tar.gz file",
			url:      "https://nodejs.org/dist/v16.13.0/node-v16.13.0-linux-x64.tar.gz",
			header:   []byte{0x1f, 0x8b, 0x08, 0x00},
			expected: true,
		},
		{
			name:     "npm tarball",
			url:      "https://registry.npmjs.org/pnpm/-/pnpm-7.0.0.tgz",
			header:   []byte{0x1f, 0x8b, 0x08, 0x00},
			expected: true,
		},
		{
			name:     "ZIP file",
			url:      "https://nodejs.org/dist/v16.13.0/node-v16.13.0-win-x64.zip",
			header:   []byte{0x50, 0x4b, 0x03, 0x04},
			expected: true,
		},
		{
			name:     "tar.xz file",
			url:      "https://nodejs.org/dist/v16.13.0/node-v16.13.0-linux-x64.tar.xz",
			header:   []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00, 0x00},
			expected: true,
		},
		{
			name:     "HTML error page",
			url:      "https://nodejs.org/dist/v16.13.0/node-v16.13.0-linux-x64.tar.gz",
			header:   []byte("<!DOCTYPE html><html><body>Not Found</body></html>"),
			expected: false,
		},
		{
			name:     "zip served for tar.gz",
			url:      "https://nodejs.org/dist/v16.13.0/node-v16.13.0-linux-x64.tar.gz",
			header:   []byte{0x50, 0x4b, 0x03, 0x04},
			expected: false,
		},
		{
			name:     "unknown extension, known format",
			url:      "https://example.com/download?id=1",
			header:   []byte{0x50, 0x4b, 0x03, 0x04},
			expected: true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			tmpFile := filepath.Join(t.TempDir(), "test-file")
			if err := os.WriteFile(tmpFile, test.header, 0644); err != nil {
				t.Fatalf("Failed to create test file: %v", err)
			}

			err := validateFileFormat(tmpFile, test.url)
			hasError := err != nil

			if test.expected && hasError {
				t.Errorf("validateFileFormat() failed for %s: %v", test.name, err)
			} else if !test.expected && !hasError {
				t.Errorf("validateFileFormat() should have failed for %s", test.name)
			}
		})
	}
}

func TestDescribeUnexpected(t *testing.T) {
	err := validateTarGz([]byte(`{"error":"not found"}`))
	if err == nil || !strings.Contains(err.Error(), "JSON content") {
		t.Errorf("expected a JSON content error, got %v", err)
	}
}

func TestDownloader_Fetch(t *testing.T) {
	payload := bytes.Repeat([]byte("x"), 4096)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/archive.tgz" {
			http.Error(w, "gone", http.StatusGone)
			return
		}
		if ua := r.Header.Get("User-Agent"); ua != UserAgent {
			t.Errorf("unexpected User-Agent %q", ua)
		}
		w.Write(payload)
	}))
	defer server.Close()

	d := NewDownloader(server.Client(), time.Second)

	var buf bytes.Buffer
	n, err := d.Fetch(context.Background(), server.URL+"/archive.tgz", &buf)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if n != int64(len(payload)) || !bytes.Equal(buf.Bytes(), payload) {
		t.Errorf("Fetch() wrote %d bytes, want %d", n, len(payload))
	}

	_, err = d.Fetch(context.Background(), server.URL+"/missing.tgz", &bytes.Buffer{})
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected a FetchError, got %v", err)
	}
	if fetchErr.StatusCode != http.StatusGone {
		t.Errorf("StatusCode = %d, want %d", fetchErr.StatusCode, http.StatusGone)
	}
	if !errors.Is(err, ErrFetch) {
		t.Errorf("expected errors.Is(err, ErrFetch)")
	}
}

func TestDownloader_AcceptsAny2xx(t *testing.T) {
	payload := bytes.Repeat([]byte("y"), 4096)
	for _, status := range []int{http.StatusOK, http.StatusNonAuthoritativeInfo, http.StatusPartialContent} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			w.Write(payload)
		}))

		var buf bytes.Buffer
		n, err := NewDownloader(server.Client(), time.Second).Fetch(context.Background(), server.URL+"/a.tgz", &buf)
		server.Close()
		if err != nil {
			t.Errorf("Fetch() with HTTP %d error = %v", status, err)
			continue
		}
		if n != int64(len(payload)) {
			t.Errorf("Fetch() with HTTP %d wrote %d bytes, want %d", status, n, len(payload))
		}
	}
}

func TestDownloader_FetchToFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.tar.gz":
			w.Write([]byte{0x1f, 0x8b, 0x08, 0x00, 0x00})
		default:
			w.Write([]byte("<html>maintenance</html>"))
		}
	}))
	defer server.Close()

	dir := t.TempDir()
	d := NewDownloader(server.Client(), time.Second)
	d.minSize = 0

	file, err := d.FetchToFile(context.Background(), server.URL+"/ok.tar.gz", dir)
	if err != nil {
		t.Fatalf("FetchToFile() error = %v", err)
	}
	if !strings.HasSuffix(file, "-ok.tar.gz") || filepath.Dir(file) != dir {
		t.Errorf("unexpected file name %s", file)
	}

	_, err = d.FetchToFile(context.Background(), server.URL+"/bad.tar.gz", dir)
	if err == nil || !strings.Contains(err.Error(), "HTML content") {
		t.Fatalf("expected an HTML content error, got %v", err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("failed downloads must be removed, found %d files", len(entries))
	}
}

func TestDownloader_TooSmall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("tiny"))
	}))
	defer server.Close()

	d := NewDownloader(server.Client(), time.Second)
	_, err := d.Fetch(context.Background(), server.URL+"/a.tgz", &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "too small") {
		t.Errorf("expected a size error, got %v", err)
	}
	if hint := DiagnoseDownloadError(server.URL, err); !strings.Contains(hint, "too small") {
		t.Errorf("unexpected hint %q", hint)
	}
}

func TestDiagnoseDownloadError(t *testing.T) {
	hint := DiagnoseDownloadError("https://x", &FetchError{URL: "https://x", StatusCode: 404})
	if !strings.Contains(hint, "404") {
		t.Errorf("unexpected hint %q", hint)
	}
	if hint := DiagnoseDownloadError("https://x", errors.New("boom")); hint != "" {
		t.Errorf("expected no hint, got %q", hint)
	}
}

func TestExtractFilenameFromURL(t *testing.T) {
	tests := map[string]string{
		"https://nodejs.org/dist/v16.13.0/node-v16.13.0-linux-x64.tar.gz": "node-v16.13.0-linux-x64.tar.gz",
		"https://registry.npmjs.org/pnpm/-/pnpm-7.0.0.tgz?token=abc":      "pnpm-7.0.0.tgz",
		"https://example.com/":                                            "download",
	}
	for input, want := range tests {
		if got := extractFilenameFromURL(input); got != want {
			t.Errorf("extractFilenameFromURL(%q) = %q, want %q", input, got, want)
		}
	}
}
