// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package registry

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pdiddy/docgen/internal/httputil"
)

const httpTimeout = 30 * time.Second

// maxTemplateBytes bounds a fetched template or manifest.
const maxTemplateBytes = 4 << 20

// HTTPRegistry serves templates published under a base URL. The manifest
// is fetched once, from <base>/templates.yaml, when the registry is
// created; template files are fetched on Open.
type HTTPRegistry struct {
	base     *url.URL
	client   *http.Client
	manifest *Manifest
}

// NewHTTP fetches the manifest under baseURL. A nil client uses a client
// with a 30 second timeout.
func NewHTTP(ctx context.Context, baseURL string, client *http.Client) (*HTTPRegistry, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("parsing registry URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("registry URL %s: scheme must be http or https", baseURL)
	}
	if client == nil {
		client = &http.Client{Timeout: httpTimeout}
	}

	r := &HTTPRegistry{base: u, client: client}
	data, status, err := r.fetch(ctx, ManifestFile)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: HTTP %d", r.url(ManifestFile), status)
	}
	m, err := ParseManifest(data)
	if err != nil {
		return nil, err
	}
	r.manifest = m
	return r, nil
}

// Resolve implements Registry.
func (r *HTTPRegistry) Resolve(name string) (Resource, error) {
	return r.manifest.resource(name, r.url)
}

// Open implements Registry. HTTP 404 means the template is missing.
func (r *HTTPRegistry) Open(ctx context.Context, res Resource) ([]byte, error) {
	data, status, err := r.fetch(ctx, res.File)
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusOK:
		return data, nil
	case http.StatusNotFound:
		return nil, &TemplateNotFoundError{Name: res.Name, Source: res.Source, Err: fmt.Errorf("HTTP %d", status)}
	}
	return nil, fmt.Errorf("fetching %s: HTTP %d", res.Source, status)
}

// Names implements Registry.
func (r *HTTPRegistry) Names() []string { return r.manifest.Names() }

func (r *HTTPRegistry) url(file string) string {
	return r.base.ResolveReference(&url.URL{Path: file}).String()
}

func (r *HTTPRegistry) fetch(ctx context.Context, file string) ([]byte, int, error) {
	target := r.url(file)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("building request for %s: %w", target, err)
	}
	req.Header.Set("Accept", "text/markdown, text/plain, application/yaml, */*")

	resp, err := httputil.DoWithRetry(ctx, r.client, req, 0)
	if err != nil {
		return nil, 0, fmt.Errorf("fetching %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, resp.StatusCode, nil
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxTemplateBytes+1))
	if err != nil {
		return nil, 0, fmt.Errorf("reading %s: %w", target, err)
	}
	if len(data) > maxTemplateBytes {
		return nil, 0, fmt.Errorf("fetching %s: larger than %d bytes", target, maxTemplateBytes)
	}
	return data, resp.StatusCode, nil
}
