package tle

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is the CelesTrak GP query endpoint.
const DefaultBaseURL = "https://celestrak.org/NORAD/elements/gp.php"

// maxBodyBytes caps the response size. A single element set is ~170 bytes;
// anything near the cap is not element-set data.
const maxBodyBytes = 1 << 20

// Fetcher retrieves the current element set for a single catalog number.
// Every call performs a fresh retrieval; there is deliberately no caching.
type Fetcher struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewFetcher creates a Fetcher for the given catalog endpoint. An empty
// baseURL selects CelesTrak; a non-positive timeout defaults to 10s.
func NewFetcher(baseURL string, timeout time.Duration, logger *slog.Logger) *Fetcher {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Fetcher{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// BaseURL returns the configured catalog endpoint.
func (f *Fetcher) BaseURL() string {
	return f.baseURL
}

// FetchCatalog retrieves the raw element-set text for one catalog number.
//
// Classification: an upstream 404 or a catalog-miss body maps to ErrNotFound;
// any transport error, timeout, or other non-200 status maps to
// ErrUpstreamUnavailable.
func (f *Fetcher) FetchCatalog(ctx context.Context, noradID int) ([]byte, error) {
	url := fmt.Sprintf("%s?CATNR=%d&FORMAT=TLE", f.baseURL, noradID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	start := time.Now()
	resp, err := f.httpClient.Do(req)
	if err != nil {
		f.logger.Warn("element set fetch failed", "norad_id", noradID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: NORAD %d unknown upstream", ErrNotFound, noradID)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: upstream status %d", ErrUpstreamUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response body: %v", ErrUpstreamUnavailable, err)
	}

	// CelesTrak answers unknown catalog numbers with 200 and a miss marker.
	if isCatalogMiss(body) {
		return nil, fmt.Errorf("%w: NORAD %d unknown upstream", ErrNotFound, noradID)
	}

	f.logger.Debug("element set fetched",
		"norad_id", noradID,
		"bytes", len(body),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return body, nil
}

// isCatalogMiss reports whether the response body indicates the catalog
// number has no element set rather than actual element-set text.
func isCatalogMiss(body []byte) bool {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return true
	}
	return strings.Contains(strings.ToLower(trimmed), "no gp data found")
}
