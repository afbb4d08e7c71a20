package tle

import (
	"errors"
	"time"
)

// Failure classes surfaced by this package. Callers dispatch on these with
// errors.Is; the HTTP boundary maps them to status codes.
var (
	// ErrNotFound means the catalog service has no element set for the
	// requested catalog number.
	ErrNotFound = errors.New("catalog number not found")

	// ErrUpstreamUnavailable means the catalog service could not be reached
	// or answered with a transport-level failure. Distinct from ErrNotFound
	// so the caller can map it to a different status.
	ErrUpstreamUnavailable = errors.New("catalog service unavailable")

	// ErrMalformedElementSet means the fetched text does not conform to the
	// fixed-column two-line element format.
	ErrMalformedElementSet = errors.New("malformed element set")
)

// ElementSet is one satellite's two-line element set, immutable once parsed.
type ElementSet struct {
	NORADID  int
	Name     string
	Line1    string
	Line2    string
	Epoch    time.Time
	EpochRaw string // verbatim epoch field from line 1, YYDDD.DDDDDDDD
}
