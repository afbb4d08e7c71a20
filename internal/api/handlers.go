package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ryuabesei/Satellite-Altitude-App/internal/altitude"
	"github.com/ryuabesei/Satellite-Altitude-App/internal/propagation"
	"github.com/ryuabesei/Satellite-Altitude-App/internal/timegrid"
	"github.com/ryuabesei/Satellite-Altitude-App/internal/tle"
)

// timeLayout is the only accepted timestamp format: second-precision UTC
// with a literal Z. The wire contract is bit-exact, so no other ISO-8601
// variants are admitted.
const timeLayout = "2006-01-02T15:04:05Z"

const defaultStepSeconds = 60

// Wire envelope for a successful /altitude response.
type altitudeResponse struct {
	NORADID     int         `json:"norad_id"`
	Start       string      `json:"start"`
	End         string      `json:"end"`
	StepSeconds int         `json:"step_seconds"`
	Points      []pointJSON `json:"points"`
	Meta        metaJSON    `json:"meta"`
}

type pointJSON struct {
	T     string  `json:"t"`
	AltKm float64 `json:"alt_km"`
}

type metaJSON struct {
	TLESource     string  `json:"tle_source"`
	TLEEpoch      string  `json:"tle_epoch"`
	EarthRadiusKm float64 `json:"earth_radius_km"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// altitudeHandler decodes GET /altitude query parameters, runs the pipeline,
// and encodes the result or the mapped failure.
func altitudeHandler(svc *altitude.Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := decodeAltitudeRequest(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		result, err := svc.Altitude(r.Context(), req)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				// Client is gone; nothing useful to write.
				return
			}
			status := statusForError(err)
			msg := err.Error()
			if status == http.StatusInternalServerError {
				logger.Error("altitude request failed", "norad_id", req.NORADID, "error", err)
				msg = "internal error computing altitude series"
			}
			writeError(w, status, msg)
			return
		}

		writeJSON(w, http.StatusOK, encodeResult(result))
	}
}

func decodeAltitudeRequest(r *http.Request) (altitude.Request, error) {
	q := r.URL.Query()

	nStr := q.Get("n")
	if nStr == "" {
		return altitude.Request{}, errors.New("missing required parameter: n")
	}
	noradID, err := strconv.Atoi(nStr)
	if err != nil {
		return altitude.Request{}, fmt.Errorf("parameter n must be an integer, got %q", nStr)
	}

	start, err := parseTimestamp(q.Get("start"), "start")
	if err != nil {
		return altitude.Request{}, err
	}
	end, err := parseTimestamp(q.Get("end"), "end")
	if err != nil {
		return altitude.Request{}, err
	}

	stepSeconds := defaultStepSeconds
	if s := q.Get("step_seconds"); s != "" {
		stepSeconds, err = strconv.Atoi(s)
		if err != nil {
			return altitude.Request{}, fmt.Errorf("parameter step_seconds must be an integer, got %q", s)
		}
	}

	return altitude.Request{
		NORADID:     noradID,
		Start:       start,
		End:         end,
		StepSeconds: stepSeconds,
	}, nil
}

func parseTimestamp(value, name string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("missing required parameter: %s", name)
	}
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parameter %s must be an ISO-8601 UTC timestamp like 2024-01-01T00:00:00Z, got %q", name, value)
	}
	return t.UTC(), nil
}

// statusForError is the documented boundary mapping: client input errors →
// 400, unknown catalog number → 404, upstream failure → 502, data or numeric
// anomalies → 500.
func statusForError(err error) int {
	switch {
	case errors.Is(err, altitude.ErrInvalidParameters),
		errors.Is(err, timegrid.ErrInvalidRange),
		errors.Is(err, timegrid.ErrInvalidStep),
		errors.Is(err, timegrid.ErrTooManyPoints):
		return http.StatusBadRequest
	case errors.Is(err, tle.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, tle.ErrUpstreamUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, tle.ErrMalformedElementSet),
		errors.Is(err, propagation.ErrPropagationFailed):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func encodeResult(res *altitude.Result) altitudeResponse {
	points := make([]pointJSON, len(res.Points))
	for i, p := range res.Points {
		points[i] = pointJSON{
			T:     p.Time.UTC().Format(timeLayout),
			AltKm: p.AltKm,
		}
	}
	return altitudeResponse{
		NORADID:     res.NORADID,
		Start:       res.Start.UTC().Format(timeLayout),
		End:         res.End.UTC().Format(timeLayout),
		StepSeconds: res.StepSeconds,
		Points:      points,
		Meta: metaJSON{
			TLESource:     res.Meta.TLESource,
			TLEEpoch:      res.Meta.TLEEpoch,
			EarthRadiusKm: res.Meta.EarthRadiusKm,
		},
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
