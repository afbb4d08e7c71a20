// Package altitude derives a satellite's altitude-above-spherical-Earth time
// series from a freshly fetched element set. It owns the per-request pipeline:
// validate, fetch, parse, grid, propagate, assemble.
package altitude

import (
	"errors"
	"time"
)

// EarthRadiusKm is the spherical Earth radius used for every altitude in a
// request. Fixed for the whole computation, never recomputed mid-request.
const EarthRadiusKm = 6371.0

// SourceName identifies the catalog service in response metadata.
const SourceName = "celestrak"

// ErrInvalidParameters means the request failed validation before any
// pipeline stage ran.
var ErrInvalidParameters = errors.New("invalid parameters")

// Request is one altitude time-series query.
type Request struct {
	NORADID     int
	Start       time.Time
	End         time.Time
	StepSeconds int
}

// Point is one (instant, altitude) sample. Sequences of Points are ordered
// strictly increasing in time.
type Point struct {
	Time  time.Time
	AltKm float64
}

// Meta describes the element set and constants behind a Result.
type Meta struct {
	TLESource     string
	TLEEpoch      string // verbatim YYDDD.DDDDDDDD epoch field
	EarthRadiusKm float64
}

// Result is the complete answer to a Request, immutable once built. Exactly
// one element set backs all Points; len(Points) always equals the grid size.
type Result struct {
	NORADID     int
	Start       time.Time
	End         time.Time
	StepSeconds int
	Points      []Point
	Meta        Meta
}
