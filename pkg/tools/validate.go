package tools

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Target is a download about to happen
type Target struct {
	Tool    string
	Version string
	Variant string
	URL     string
}

// Validator checks that a download URL exists before anything is written to the cache
type Validator struct {
	client  *http.Client
	timeout time.Duration
}

// NewValidator creates a validator; a zero timeout uses DefaultValidationTimeout
func NewValidator(client *http.Client, timeout time.Duration) *Validator {
	if client == nil {
		client = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = DefaultValidationTimeout
	}
	return &Validator{client: client, timeout: timeout}
}

// Validate probes target.URL with a HEAD request. It prints nothing and returns nil on success.
func (v *Validator) Validate(ctx context.Context, target Target) error {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	status, err := v.probe(ctx, http.MethodHead, target.URL)
	if err == nil && (status == http.StatusMethodNotAllowed || status == http.StatusNotImplemented) {
		// Some mirrors refuse HEAD; fall back to a GET whose body is never read
		status, err = v.probe(ctx, http.MethodGet, target.URL)
	}
	if err != nil {
		return &ValidationError{
			Tool:    target.Tool,
			Version: target.Version,
			Variant: target.Variant,
			URL:     target.URL,
			Err:     err,
		}
	}
	if status < 200 || status > 299 {
		return &ValidationError{
			Tool:       target.Tool,
			Version:    target.Version,
			Variant:    target.Variant,
			URL:        target.URL,
			StatusCode: status,
		}
	}
	return nil
}

func (v *Validator) probe(ctx context.Context, method, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := v.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if method == http.MethodGet {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 512))
	}
	return resp.StatusCode, nil
}
