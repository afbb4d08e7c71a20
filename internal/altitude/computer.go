package altitude

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/ryuabesei/Satellite-Altitude-App/internal/metrics"
	"github.com/ryuabesei/Satellite-Altitude-App/internal/propagation"
	"github.com/ryuabesei/Satellite-Altitude-App/internal/timegrid"
)

// Computer reduces propagated positions to altitude samples. Propagation
// across instants runs on a worker pool; output is always in grid order.
type Computer struct {
	pool   *propagation.Pool
	logger *slog.Logger
}

// NewComputer creates a Computer with the given propagation worker count.
func NewComputer(workers int, logger *slog.Logger) *Computer {
	return &Computer{
		pool:   propagation.NewPool(workers, logger),
		logger: logger,
	}
}

// Series propagates every grid instant and derives altitude_km = |r| − 6371.0
// for each. A single propagation failure aborts the whole series.
func (c *Computer) Series(ctx context.Context, prop propagation.InstantPropagator, grid timegrid.Grid) ([]Point, error) {
	start := time.Now()

	positions, err := c.pool.Positions(ctx, prop, grid.Instants())
	if err != nil {
		if errors.Is(err, propagation.ErrPropagationFailed) {
			metrics.RecordPropagationFailure()
		}
		return nil, err
	}

	points := make([]Point, grid.Count)
	for i, pos := range positions {
		r := math.Sqrt(pos.X*pos.X + pos.Y*pos.Y + pos.Z*pos.Z)
		points[i] = Point{
			Time:  grid.At(i),
			AltKm: round2(r - EarthRadiusKm),
		}
	}

	metrics.RecordPropagation(time.Since(start), grid.Count)
	return points, nil
}

// round2 keeps the wire-format precision of two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
