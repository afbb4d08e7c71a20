package propagation

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// positionJob is a unit of work: one sample instant and its output slot.
type positionJob struct {
	index   int
	instant time.Time
}

// positionResult is the output of propagating one instant.
type positionResult struct {
	index    int
	position Position
	err      error
}

// Pool evaluates one element set across many instants on a fixed number of
// goroutines. Each instant is independent, so execution order is arbitrary;
// results are written back by index so the caller always sees grid order.
type Pool struct {
	workers int
	logger  *slog.Logger
}

// NewPool creates a pool with the given number of workers (minimum 1).
func NewPool(workers int, logger *slog.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{workers: workers, logger: logger}
}

// Positions propagates every instant and returns the positions in input
// order. Any single failure aborts the batch and returns the error with no
// partial results; uniform response shape is preferred over partial success.
func (p *Pool) Positions(ctx context.Context, prop InstantPropagator, instants []time.Time) ([]Position, error) {
	if len(instants) == 0 {
		return nil, nil
	}

	workers := p.workers
	if workers > len(instants) {
		workers = len(instants)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan positionJob, workers*2)
	results := make(chan positionResult, workers*2)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				pos, err := prop.PositionAt(job.instant)
				select {
				case results <- positionResult{index: job.index, position: pos, err: err}:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i, instant := range instants {
			select {
			case jobs <- positionJob{index: i, instant: instant}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	positions := make([]Position, len(instants))
	var firstErr error
	received := 0

	for res := range results {
		if res.err != nil {
			if firstErr == nil {
				firstErr = res.err
				p.logger.Warn("instant propagation failed, aborting batch",
					"instant_index", res.index,
					"error", res.err,
				)
				cancel() // abort remaining work, no partial results
			}
			continue
		}
		positions[res.index] = res.position
		received++
	}

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if received != len(instants) {
		// Workers exited early on cancellation without a recorded cause.
		return nil, context.Canceled
	}

	return positions, nil
}
