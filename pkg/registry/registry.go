// Package registry fetches package metadata (versions and dist-tags) from an npm registry.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gnodet/hnvm/pkg/resolve"
	"github.com/gnodet/hnvm/pkg/tools"
	"github.com/gnodet/hnvm/pkg/util"
)

// Client fetches package documents from an npm registry
type Client struct {
	httpClient *http.Client
	baseURL    string
	timeout    time.Duration
}

// NewClient creates a registry client
func NewClient(httpClient *http.Client, baseURL string, timeout time.Duration) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = tools.NpmRegistryBase
	}
	if timeout <= 0 {
		timeout = tools.DefaultRegistryTimeout
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		timeout:    timeout,
	}
}

// PackageURL returns the metadata URL of a package. The slash of scoped names is encoded.
func (c *Client) PackageURL(pkg string) string {
	return c.baseURL + "/" + url.PathEscape(pkg)
}

// PackageInfo fetches the metadata document of pkg
func (c *Client) PackageInfo(ctx context.Context, pkg string) (*resolve.PackageInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	target := c.PackageURL(pkg)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &tools.FetchError{URL: target, Err: err}
	}
	req.Header.Set("User-Agent", tools.UserAgent)
	// The abbreviated document carries versions and dist-tags, which is all resolution needs
	req.Header.Set("Accept", "application/vnd.npm.install-v1+json; q=1.0, application/json; q=0.8")

	util.LogVerbose("Fetching registry metadata %s", target)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &tools.FetchError{URL: target, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &tools.FetchError{URL: target, StatusCode: resp.StatusCode}
	}

	var info resolve.PackageInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, &tools.FetchError{URL: target, Err: fmt.Errorf("invalid registry response: %w", err)}
	}
	if info.Name == "" {
		info.Name = pkg
	}
	return &info, nil
}
