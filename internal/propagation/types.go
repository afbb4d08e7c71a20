package propagation

import (
	"errors"
	"time"
)

// ErrPropagationFailed means the orbit model could not produce a usable
// position for an instant (numerical divergence, decayed-orbit singularity,
// or a model initialization failure).
var ErrPropagationFailed = errors.New("propagation failed")

// Position is a satellite position in an Earth-centered inertial frame
// (TEME), in kilometers. Valid only for the element set and instant that
// produced it.
type Position struct {
	X float64
	Y float64
	Z float64
}

// InstantPropagator produces a position for a single instant. Implementations
// must be deterministic and side-effect-free so instants can be evaluated
// concurrently and a request can be replayed byte-for-byte.
type InstantPropagator interface {
	PositionAt(t time.Time) (Position, error)
}
