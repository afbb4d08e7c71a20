// Package timegrid expands a (start, end, step) request window into the
// ordered sequence of UTC sample instants, enforcing the point-count ceiling
// before any per-instant work happens downstream.
package timegrid

import (
	"errors"
	"fmt"
	"time"
)

// Step and size limits for a single request.
const (
	MinStepSeconds = 1
	MaxStepSeconds = 3600
	MaxPoints      = 20000
)

var (
	// ErrInvalidRange means end is before start.
	ErrInvalidRange = errors.New("invalid time range")

	// ErrInvalidStep means step_seconds is outside [MinStepSeconds, MaxStepSeconds].
	ErrInvalidStep = errors.New("invalid step")

	// ErrTooManyPoints means the window and step would produce more than
	// MaxPoints instants.
	ErrTooManyPoints = errors.New("too many points")
)

// Grid is a finite, strictly increasing sequence of sample instants:
// start, start+step, ..., up to the largest grid point ≤ end. It stores
// only the derivation, so it can be walked any number of times.
type Grid struct {
	Start time.Time
	Step  time.Duration
	Count int
}

// Build validates the window and returns its grid. The point count is
// computed arithmetically before any instant is materialized, so oversized
// requests are rejected in constant time.
func Build(start, end time.Time, stepSeconds int) (Grid, error) {
	if stepSeconds < MinStepSeconds || stepSeconds > MaxStepSeconds {
		return Grid{}, fmt.Errorf("%w: step_seconds %d outside [%d, %d]",
			ErrInvalidStep, stepSeconds, MinStepSeconds, MaxStepSeconds)
	}
	if end.Before(start) {
		return Grid{}, fmt.Errorf("%w: end %s before start %s",
			ErrInvalidRange, end.UTC().Format(time.RFC3339), start.UTC().Format(time.RFC3339))
	}

	step := time.Duration(stepSeconds) * time.Second
	count := int(end.Sub(start)/step) + 1
	if count > MaxPoints {
		return Grid{}, fmt.Errorf("%w: %d points computed, maximum is %d; increase step_seconds or narrow the window",
			ErrTooManyPoints, count, MaxPoints)
	}

	return Grid{Start: start.UTC(), Step: step, Count: count}, nil
}

// At returns the i-th instant, 0 ≤ i < Count.
func (g Grid) At(i int) time.Time {
	return g.Start.Add(time.Duration(i) * g.Step)
}

// Instants materializes the full sequence. Bounded by MaxPoints.
func (g Grid) Instants() []time.Time {
	out := make([]time.Time, g.Count)
	for i := range out {
		out[i] = g.At(i)
	}
	return out
}
