package tle

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

var testLogger = slog.New(slog.NewJSONHandler(io.Discard, nil))

// TestFetchCatalogSuccess verifies a normal fetch returns the body and asks
// upstream for the right catalog number.
func TestFetchCatalogSuccess(t *testing.T) {
	body := issName + "\n" + issLine1 + "\n" + issLine2 + "\n"
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(body))
	}))
	defer server.Close()

	fetcher := NewFetcher(server.URL, 5*time.Second, testLogger)
	data, err := fetcher.FetchCatalog(context.Background(), 25544)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != body {
		t.Errorf("body mismatch: got %d bytes, want %d", len(data), len(body))
	}
	if gotQuery != "CATNR=25544&FORMAT=TLE" {
		t.Errorf("query = %q, want CATNR=25544&FORMAT=TLE", gotQuery)
	}
}

// TestFetchCatalogNotFound verifies both upstream miss shapes map to
// ErrNotFound: an HTTP 404 and the 200 "no GP data" body.
func TestFetchCatalogNotFound(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "http 404",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
		},
		{
			name: "catalog miss body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("No GP data found\n"))
			},
		},
		{
			name: "empty body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			fetcher := NewFetcher(server.URL, 5*time.Second, testLogger)
			_, err := fetcher.FetchCatalog(context.Background(), 99999999)
			if !errors.Is(err, ErrNotFound) {
				t.Errorf("error = %v, want ErrNotFound", err)
			}
		})
	}
}

// TestFetchCatalogUpstreamError verifies non-200 statuses map to
// ErrUpstreamUnavailable, distinct from ErrNotFound.
func TestFetchCatalogUpstreamError(t *testing.T) {
	for _, status := range []int{http.StatusInternalServerError, http.StatusBadGateway, http.StatusForbidden} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		fetcher := NewFetcher(server.URL, 5*time.Second, testLogger)
		_, err := fetcher.FetchCatalog(context.Background(), 25544)
		server.Close()

		if !errors.Is(err, ErrUpstreamUnavailable) {
			t.Errorf("status %d: error = %v, want ErrUpstreamUnavailable", status, err)
		}
		if errors.Is(err, ErrNotFound) {
			t.Errorf("status %d: error also matches ErrNotFound", status)
		}
	}
}

// TestFetchCatalogTimeout verifies a slow upstream maps to
// ErrUpstreamUnavailable.
func TestFetchCatalogTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer server.Close()

	fetcher := NewFetcher(server.URL, 50*time.Millisecond, testLogger)
	_, err := fetcher.FetchCatalog(context.Background(), 25544)
	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Errorf("error = %v, want ErrUpstreamUnavailable", err)
	}
}

// TestFetchCatalogUnreachable verifies a connection failure maps to
// ErrUpstreamUnavailable.
func TestFetchCatalogUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nothing listening anymore

	fetcher := NewFetcher(server.URL, time.Second, testLogger)
	_, err := fetcher.FetchCatalog(context.Background(), 25544)
	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Errorf("error = %v, want ErrUpstreamUnavailable", err)
	}
}

// TestFetchCatalogBodyLimit verifies oversized responses are truncated
// rather than read unbounded.
func TestFetchCatalogBodyLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		chunk := strings.Repeat("A", 64*1024)
		for i := 0; i < 32; i++ {
			if _, err := w.Write([]byte(chunk)); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	fetcher := NewFetcher(server.URL, 5*time.Second, testLogger)
	data, err := fetcher.FetchCatalog(context.Background(), 25544)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(data) > maxBodyBytes {
		t.Errorf("body length %d exceeds limit %d", len(data), maxBodyBytes)
	}
}
