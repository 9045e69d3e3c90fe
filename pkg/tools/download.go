package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Downloader fetches archives. It never retries: a failed download is reported as is.
type Downloader struct {
	client       *http.Client
	timeout      time.Duration
	minSize      int64
	maxSize      int64
	progress     io.Writer
	showProgress bool
	description  string
}

// NewDownloader creates a downloader with default limits and no progress output
func NewDownloader(client *http.Client, timeout time.Duration) *Downloader {
	if client == nil {
		client = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = DefaultDownloadTimeout
	}
	return &Downloader{
		client:   client,
		timeout:  timeout,
		minSize:  DefaultMinFileSize,
		maxSize:  DefaultMaxFileSize,
		progress: io.Discard,
	}
}

// WithDescription sets the label shown next to the progress bar
func (d *Downloader) WithDescription(description string) *Downloader {
	c := *d
	c.description = description
	return &c
}

// Fetch streams url into dest and returns the number of bytes written
func (d *Downloader) Fetch(ctx context.Context, rawURL string, dest io.Writer) (int64, error) {
	// Create request with context timeout for the entire operation
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, &FetchError{URL: rawURL, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, &FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, &FetchError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	// Check content length if available
	if contentLength := resp.ContentLength; contentLength > 0 && d.maxSize > 0 && contentLength > d.maxSize {
		return 0, &FetchError{URL: rawURL, Err: fmt.Errorf("content too large: %d bytes (maximum %d)", contentLength, d.maxSize)}
	}

	writer := dest
	var bar *progressbar.ProgressBar
	if d.showProgress && d.progress != nil {
		bar = progressbar.NewOptions64(
			resp.ContentLength,
			progressbar.OptionSetWriter(d.progress),
			progressbar.OptionSetDescription(d.description),
			progressbar.OptionSetWidth(30),
			progressbar.OptionShowBytes(true),
			progressbar.OptionClearOnFinish(),
		)
		writer = io.MultiWriter(dest, bar)
	}

	written, err := io.Copy(writer, resp.Body)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("timeout after %v: %w", d.timeout, ctx.Err())
		}
		return written, &FetchError{URL: rawURL, Err: err}
	}

	// Validate downloaded size
	if d.minSize > 0 && written < d.minSize {
		return written, &FetchError{URL: rawURL, Err: fmt.Errorf("downloaded file too small: %d bytes (minimum %d)", written, d.minSize)}
	}
	if d.maxSize > 0 && written > d.maxSize {
		return written, &FetchError{URL: rawURL, Err: fmt.Errorf("downloaded file too large: %d bytes (maximum %d)", written, d.maxSize)}
	}
	return written, nil
}

// FetchToFile downloads url into a new file in dir and checks it looks like the expected archive.
// The caller owns the returned file and removes it when done.
func (d *Downloader) FetchToFile(ctx context.Context, rawURL, dir string) (string, error) {
	name := extractFilenameFromURL(rawURL)
	file, err := os.CreateTemp(dir, "download-*-"+name)
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}

	_, fetchErr := d.Fetch(ctx, rawURL, file)
	closeErr := file.Close()
	if fetchErr == nil && closeErr != nil {
		fetchErr = fmt.Errorf("failed to write %s: %w", file.Name(), closeErr)
	}
	if fetchErr == nil {
		if err := validateFileFormat(file.Name(), rawURL); err != nil {
			fetchErr = &FetchError{URL: rawURL, Err: fmt.Errorf("file validation failed: %w", err)}
		}
	}
	if fetchErr != nil {
		os.Remove(file.Name())
		return "", fetchErr
	}
	return file.Name(), nil
}

// validateFileFormat validates the downloaded file format based on magic bytes
func validateFileFormat(filePath, url string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open file for validation: %w", err)
	}
	defer file.Close()

	// Read first few bytes for magic number detection
	header := make([]byte, 512)
	n, err := io.ReadFull(file, header)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return fmt.Errorf("failed to read file header: %w", err)
	}
	header = header[:n]

	// Determine expected format from URL
	switch detectArchiveType(url) {
	case ArchiveTypeTarGz:
		return validateTarGz(header)
	case ArchiveTypeTarXz:
		return validateTarXz(header)
	case ArchiveTypeZip:
		return validateZip(header)
	}

	// If we can't determine format from URL, try to detect
	return validateAnyArchive(header)
}

// validateTarGz validates tar.gz format
func validateTarGz(header []byte) error {
	// Check for gzip magic bytes (1f 8b)
	if len(header) < 2 {
		return fmt.Errorf("file too short for gzip format")
	}
	if header[0] != 0x1f || header[1] != 0x8b {
		return describeUnexpected(header, fmt.Errorf("invalid gzip header: expected 1f 8b, got %02x %02x", header[0], header[1]))
	}
	return nil
}

// validateZip validates ZIP format
func validateZip(header []byte) error {
	// Check for ZIP magic bytes (50 4b)
	if len(header) < 4 {
		return fmt.Errorf("file too short for ZIP format")
	}
	if header[0] != 0x50 || header[1] != 0x4b {
		return describeUnexpected(header, fmt.Errorf("invalid ZIP header: expected 50 4b, got %02x %02x", header[0], header[1]))
	}
	return nil
}

// validateTarXz validates tar.xz format
func validateTarXz(header []byte) error {
	// Check for XZ magic bytes (fd 37 7a 58 5a 00)
	expected := []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}
	if len(header) < len(expected) {
		return fmt.Errorf("file too short for XZ format")
	}
	if !bytes.Equal(header[:len(expected)], expected) {
		return describeUnexpected(header, fmt.Errorf("invalid XZ header"))
	}
	return nil
}

// validateAnyArchive tries to detect any known archive format
func validateAnyArchive(header []byte) error {
	if len(header) < 4 {
		return fmt.Errorf("file too short to determine format")
	}
	if validateTarGz(header) == nil || validateZip(header) == nil || validateTarXz(header) == nil {
		return nil
	}
	return describeUnexpected(header, fmt.Errorf("unrecognized file format"))
}

// describeUnexpected replaces a magic-byte error with a clearer one when the body is an error page
func describeUnexpected(header []byte, err error) error {
	start := header[:min(len(header), 100)]
	if bytes.Contains(start, []byte("<html")) || bytes.Contains(start, []byte("<!DOCTYPE")) {
		return fmt.Errorf("received HTML content instead of binary archive (likely an error page)")
	}
	if bytes.HasPrefix(bytes.TrimSpace(header), []byte("{")) {
		return fmt.Errorf("received JSON content instead of binary archive (likely an API error)")
	}
	return err
}

// DiagnoseDownloadError provides a hint for a failed download
func DiagnoseDownloadError(url string, err error) string {
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) && fetchErr.StatusCode != 0 {
		switch {
		case fetchErr.StatusCode == http.StatusNotFound:
			return fmt.Sprintf("File not found (404) at %s. The requested version may not be available.", url)
		case fetchErr.StatusCode == http.StatusForbidden:
			return fmt.Sprintf("Access forbidden (403) to %s. You may need authentication or the file may be restricted.", url)
		case fetchErr.StatusCode >= 500:
			return fmt.Sprintf("Server error from %s. The server is experiencing issues. Try again later.", url)
		}
	}

	errStr := err.Error()
	switch {
	case strings.Contains(errStr, "connection refused"):
		return fmt.Sprintf("Connection refused to %s. The server may be down or the URL may be incorrect.", url)
	case strings.Contains(errStr, "timeout"), strings.Contains(errStr, "deadline exceeded"):
		return fmt.Sprintf("Download timeout from %s. This may be due to slow network or server issues. Try again later.", url)
	case strings.Contains(errStr, "no such host"):
		return fmt.Sprintf("DNS resolution failed for %s. Check your internet connection and the URL.", url)
	case strings.Contains(errStr, "HTML content"), strings.Contains(errStr, "JSON content"):
		return fmt.Sprintf("Received an error page instead of an archive from %s. Check the URL and try again.", url)
	case strings.Contains(errStr, "too small"):
		return fmt.Sprintf("Downloaded file from %s is too small. The download may have been incomplete.", url)
	}
	return ""
}

// extractFilenameFromURL extracts the file name from a URL, ignoring query parameters
func extractFilenameFromURL(rawURL string) string {
	p := rawURL
	if parsed, err := url.Parse(rawURL); err == nil {
		p = parsed.Path
	}
	name := path.Base(p)
	if name == "" || name == "." || name == "/" {
		return "download"
	}
	return name
}
