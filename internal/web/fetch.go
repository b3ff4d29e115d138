// Package web fetches pages over HTTP and reduces their HTML to clean,
// line-normalized plain text suitable for chunking and indexing.
package web

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	// DefaultTimeout bounds a single page fetch.
	DefaultTimeout = 20 * time.Second

	defaultUserAgent = "urlresearch/1.0 (URL Research Tool)"
	acceptHeader     = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
)

// Fetcher retrieves raw HTML for URLs. It performs no retries; a batch
// caller decides whether a failed URL is worth a second attempt.
type Fetcher struct {
	client    *http.Client
	userAgent string
}

// NewFetcher creates a Fetcher. A nil client gets a default one with
// DefaultTimeout.
func NewFetcher(client *http.Client, userAgent string) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &Fetcher{client: client, userAgent: userAgent}
}

// Fetch performs an HTTP GET and returns the raw response body.
// Non-2xx statuses return *HTTPError; network failures return
// *TransportError.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("web: invalid URL %q: %w", rawURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("web: unsupported URL scheme %q in %s", parsed.Scheme, rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("web: creating request for %s: %w", rawURL, err)
	}

	// A polite identifying User-Agent makes sites like Wikipedia less
	// likely to block the request.
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", acceptHeader)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", &TransportError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &HTTPError{URL: rawURL, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &TransportError{URL: rawURL, Err: err}
	}

	return string(body), nil
}

// FetchText fetches a URL and returns its normalized plain text.
func (f *Fetcher) FetchText(ctx context.Context, rawURL string) (string, error) {
	html, err := f.Fetch(ctx, rawURL)
	if err != nil {
		return "", err
	}
	return Normalize(html)
}
