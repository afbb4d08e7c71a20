package propagation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

var poolTestLogger = slog.New(slog.NewJSONHandler(io.Discard, nil))

// indexedPropagator returns a position derived from the instant's offset so
// output ordering can be checked, and counts every invocation.
type indexedPropagator struct {
	base  time.Time
	calls atomic.Int64
}

func (p *indexedPropagator) PositionAt(t time.Time) (Position, error) {
	p.calls.Add(1)
	seconds := t.Sub(p.base).Seconds()
	return Position{X: 7000 + seconds, Y: 0, Z: 0}, nil
}

// failingPropagator fails at one specific instant.
type failingPropagator struct {
	failAt time.Time
}

func (p *failingPropagator) PositionAt(t time.Time) (Position, error) {
	if t.Equal(p.failAt) {
		return Position{}, fmt.Errorf("%w: synthetic divergence", ErrPropagationFailed)
	}
	return Position{X: 7000, Y: 0, Z: 0}, nil
}

func testInstants(base time.Time, n int) []time.Time {
	out := make([]time.Time, n)
	for i := range out {
		out[i] = base.Add(time.Duration(i) * time.Minute)
	}
	return out
}

// TestPoolOrdering verifies output positions land in input order regardless
// of worker scheduling.
func TestPoolOrdering(t *testing.T) {
	base := time.Date(2024, 4, 10, 12, 0, 0, 0, time.UTC)
	instants := testInstants(base, 200)
	prop := &indexedPropagator{base: base}

	pool := NewPool(8, poolTestLogger)
	positions, err := pool.Positions(context.Background(), prop, instants)
	if err != nil {
		t.Fatalf("Positions failed: %v", err)
	}
	if len(positions) != len(instants) {
		t.Fatalf("got %d positions, want %d", len(positions), len(instants))
	}

	for i, pos := range positions {
		want := 7000 + float64(i*60)
		if pos.X != want {
			t.Fatalf("position %d: X = %v, want %v (out of order)", i, pos.X, want)
		}
	}

	if calls := prop.calls.Load(); calls != int64(len(instants)) {
		t.Errorf("propagator called %d times, want %d", calls, len(instants))
	}
}

// TestPoolSingleWorker verifies the degenerate pool still covers every instant.
func TestPoolSingleWorker(t *testing.T) {
	base := time.Date(2024, 4, 10, 12, 0, 0, 0, time.UTC)
	instants := testInstants(base, 10)
	prop := &indexedPropagator{base: base}

	pool := NewPool(1, poolTestLogger)
	positions, err := pool.Positions(context.Background(), prop, instants)
	if err != nil {
		t.Fatalf("Positions failed: %v", err)
	}
	if len(positions) != 10 {
		t.Fatalf("got %d positions, want 10", len(positions))
	}
}

// TestPoolEmptyInput verifies zero instants produce zero work.
func TestPoolEmptyInput(t *testing.T) {
	pool := NewPool(4, poolTestLogger)
	positions, err := pool.Positions(context.Background(), &indexedPropagator{}, nil)
	if err != nil {
		t.Fatalf("Positions failed: %v", err)
	}
	if positions != nil {
		t.Errorf("expected nil positions, got %d", len(positions))
	}
}

// TestPoolFailFast verifies a single failing instant aborts the batch with
// the propagation error and no partial results.
func TestPoolFailFast(t *testing.T) {
	base := time.Date(2024, 4, 10, 12, 0, 0, 0, time.UTC)
	instants := testInstants(base, 50)
	prop := &failingPropagator{failAt: instants[25]}

	pool := NewPool(4, poolTestLogger)
	positions, err := pool.Positions(context.Background(), prop, instants)
	if !errors.Is(err, ErrPropagationFailed) {
		t.Fatalf("error = %v, want ErrPropagationFailed", err)
	}
	if positions != nil {
		t.Errorf("expected no partial results, got %d positions", len(positions))
	}
}

// TestPoolCancellation verifies an already-cancelled context aborts without
// producing a result.
func TestPoolCancellation(t *testing.T) {
	base := time.Date(2024, 4, 10, 12, 0, 0, 0, time.UTC)
	instants := testInstants(base, 500)
	prop := &indexedPropagator{base: base}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pool := NewPool(2, poolTestLogger)
	positions, err := pool.Positions(ctx, prop, instants)
	if err == nil {
		t.Fatal("expected error from cancelled context")
	}
	if positions != nil {
		t.Errorf("expected no results after cancellation, got %d", len(positions))
	}
}
