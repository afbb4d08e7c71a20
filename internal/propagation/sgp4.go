package propagation

import (
	"fmt"
	"math"
	"strings"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"
)

// SGP4 library choice: github.com/joshuaferrara/go-satellite
//
// Pure Go (no CGO), widest community adoption, explicit TEME output.
//
// Note: Propagate() takes Satellite by value so SGP4 error codes are not
// visible to the caller. Propagation failures are detected by checking the
// output for NaN/Inf and unreasonable position magnitudes.

// SGP4Propagator wraps the go-satellite model for a single element set.
// Safe for concurrent use: Propagate does not mutate the satellite record.
type SGP4Propagator struct {
	sat     satellite.Satellite
	noradID int
}

// NewSGP4Propagator initializes the SGP4 model from element-set lines.
//
// Pre-validates line format before handing off to the library, because
// go-satellite calls log.Fatal on malformed input (which would kill the
// process). Initialization failures are ErrPropagationFailed: by the time
// this runs the lines have already passed structural parsing, so a rejection
// here is a model-level anomaly, not caller input.
func NewSGP4Propagator(line1, line2 string, noradID int) (*SGP4Propagator, error) {
	if err := validateLines(line1, line2); err != nil {
		return nil, fmt.Errorf("%w: NORAD %d: %v", ErrPropagationFailed, noradID, err)
	}

	sat := satellite.TLEToSat(line1, line2, satellite.GravityWGS84)
	if sat.Error != 0 {
		return nil, fmt.Errorf("%w: sgp4 init for NORAD %d: code=%d %s", ErrPropagationFailed, noradID, sat.Error, sat.ErrorStr)
	}
	return &SGP4Propagator{sat: sat, noradID: noradID}, nil
}

func validateLines(line1, line2 string) error {
	line1 = strings.TrimSpace(line1)
	line2 = strings.TrimSpace(line2)

	if len(line1) != 69 {
		return fmt.Errorf("line1 length %d, expected 69", len(line1))
	}
	if len(line2) != 69 {
		return fmt.Errorf("line2 length %d, expected 69", len(line2))
	}
	if line1[0] != '1' {
		return fmt.Errorf("line1 must start with '1', got '%c'", line1[0])
	}
	if line2[0] != '2' {
		return fmt.Errorf("line2 must start with '2', got '%c'", line2[0])
	}
	return nil
}

// PositionAt computes the TEME position at the given instant (km).
func (p *SGP4Propagator) PositionAt(t time.Time) (Position, error) {
	t = t.UTC()
	pos, _ := satellite.Propagate(p.sat, t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())

	if math.IsNaN(pos.X) || math.IsNaN(pos.Y) || math.IsNaN(pos.Z) ||
		math.IsInf(pos.X, 0) || math.IsInf(pos.Y, 0) || math.IsInf(pos.Z, 0) {
		return Position{}, fmt.Errorf("%w: NORAD %d at %s: output is NaN/Inf",
			ErrPropagationFailed, p.noradID, t.Format(time.RFC3339))
	}

	// Sanity check: geocentric distance should be between ~6200km and ~50000km.
	mag := math.Sqrt(pos.X*pos.X + pos.Y*pos.Y + pos.Z*pos.Z)
	if mag < 6200.0 || mag > 50000.0 {
		return Position{}, fmt.Errorf("%w: NORAD %d at %s: unreasonable position magnitude %.1f km",
			ErrPropagationFailed, p.noradID, t.Format(time.RFC3339), mag)
	}

	return Position{X: pos.X, Y: pos.Y, Z: pos.Z}, nil
}
