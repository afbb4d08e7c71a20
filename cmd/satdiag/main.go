// Satdiag is a manual-verification tool: it fetches the current element set
// for one catalog number, computes a short altitude series, and prints the
// table to stdout.
//
// Usage: satdiag <norad_id> [window_minutes] [step_seconds]
package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/ryuabesei/Satellite-Altitude-App/internal/altitude"
	"github.com/ryuabesei/Satellite-Altitude-App/internal/tle"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: satdiag <norad_id> [window_minutes] [step_seconds]")
		os.Exit(2)
	}

	noradID, err := strconv.Atoi(os.Args[1])
	if err != nil || noradID < 1 {
		fmt.Fprintf(os.Stderr, "invalid NORAD ID %q\n", os.Args[1])
		os.Exit(2)
	}

	windowMinutes := 90
	if len(os.Args) > 2 {
		if n, err := strconv.Atoi(os.Args[2]); err == nil && n > 0 {
			windowMinutes = n
		}
	}
	stepSeconds := 60
	if len(os.Args) > 3 {
		if n, err := strconv.Atoi(os.Args[3]); err == nil {
			stepSeconds = n
		}
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fetcher := tle.NewFetcher("", 10*time.Second, logger)
	raw, err := fetcher.FetchCatalog(ctx, noradID)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ERROR fetching element set:", err)
		os.Exit(1)
	}

	sets, err := tle.Parse(bytes.NewReader(raw))
	if err != nil {
		fmt.Fprintln(os.Stderr, "ERROR parsing element set:", err)
		os.Exit(1)
	}
	es := sets[0]
	fmt.Printf("%s (NORAD %d), epoch %s\n", es.Name, es.NORADID, es.Epoch.Format(time.RFC3339))

	start := time.Now().UTC().Truncate(time.Second)
	end := start.Add(time.Duration(windowMinutes) * time.Minute)

	computer := altitude.NewComputer(4, logger)
	svc := altitude.NewService(fetchedSource{raw}, computer, logger)

	result, err := svc.Altitude(ctx, altitude.Request{
		NORADID:     noradID,
		Start:       start,
		End:         end,
		StepSeconds: stepSeconds,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "ERROR computing series:", err)
		os.Exit(1)
	}

	for _, p := range result.Points {
		fmt.Printf("%s  %9.2f km\n", p.Time.Format(time.RFC3339), p.AltKm)
	}
	fmt.Printf("\n%d points, element-set epoch %s\n", len(result.Points), result.Meta.TLEEpoch)
}

// fetchedSource replays already-fetched element-set text so the diagnostic
// only hits CelesTrak once.
type fetchedSource struct {
	raw []byte
}

func (s fetchedSource) FetchCatalog(ctx context.Context, noradID int) ([]byte, error) {
	return s.raw, nil
}
