package altitude

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ryuabesei/Satellite-Altitude-App/internal/propagation"
	"github.com/ryuabesei/Satellite-Altitude-App/internal/timegrid"
	"github.com/ryuabesei/Satellite-Altitude-App/internal/tle"
)

// ElementSource retrieves raw element-set text for one catalog number.
type ElementSource interface {
	FetchCatalog(ctx context.Context, noradID int) ([]byte, error)
}

// SeriesComputer turns an element set's propagator and a grid into altitude
// samples.
type SeriesComputer interface {
	Series(ctx context.Context, prop propagation.InstantPropagator, grid timegrid.Grid) ([]Point, error)
}

// Service is the end-to-end request handler. Each request is a pure function
// of its inputs plus the catalog service's current data: no shared state, no
// caching, no retries. A stage failure surfaces immediately with its error
// class intact.
type Service struct {
	source   ElementSource
	computer SeriesComputer
	logger   *slog.Logger
}

// NewService wires the pipeline stages together.
func NewService(source ElementSource, computer SeriesComputer, logger *slog.Logger) *Service {
	return &Service{
		source:   source,
		computer: computer,
		logger:   logger,
	}
}

// Altitude runs the pipeline: validate (parameters and grid) → fetch →
// parse → propagate → assemble. All parameter validation completes before
// the catalog service is contacted. Cancellation is checked at stage
// boundaries; no partial result is ever returned.
func (s *Service) Altitude(ctx context.Context, req Request) (*Result, error) {
	if req.NORADID < 1 {
		return nil, fmt.Errorf("%w: catalog number must be >= 1, got %d", ErrInvalidParameters, req.NORADID)
	}
	grid, err := timegrid.Build(req.Start, req.End, req.StepSeconds)
	if err != nil {
		return nil, err
	}

	raw, err := s.source.FetchCatalog(ctx, req.NORADID)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sets, err := tle.Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	es := selectElementSet(sets)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prop, err := propagation.NewSGP4Propagator(es.Line1, es.Line2, es.NORADID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	points, err := s.computer.Series(ctx, prop, grid)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("altitude series computed",
		"norad_id", req.NORADID,
		"points", len(points),
		"epoch", es.EpochRaw,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &Result{
		NORADID:     req.NORADID,
		Start:       req.Start,
		End:         req.End,
		StepSeconds: req.StepSeconds,
		Points:      points,
		Meta: Meta{
			TLESource:     SourceName,
			TLEEpoch:      es.EpochRaw,
			EarthRadiusKm: EarthRadiusKm,
		},
	}, nil
}

// selectElementSet picks the entry to use when the catalog service returns
// more than one element set for a catalog number (e.g. multiple naming
// conventions): latest epoch wins, ties broken by first appearance in the
// response.
func selectElementSet(sets []tle.ElementSet) tle.ElementSet {
	best := sets[0]
	for _, es := range sets[1:] {
		if es.Epoch.After(best.Epoch) {
			best = es
		}
	}
	return best
}
