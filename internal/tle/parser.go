package tle

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

const lineLength = 69

// Parse reads element-set text from r and returns the parsed entries.
//
// The input is a sequence of element sets, each an optional name line
// followed by the two fixed-column data lines. Unlike bulk-catalog parsers
// that skip bad entries, this one is strict: any entry that does not conform
// fails the whole parse with ErrMalformedElementSet, because a per-request
// fetch for one catalog number has no good entries to fall back on.
func Parse(r io.Reader) ([]ElementSet, error) {
	scanner := bufio.NewScanner(r)
	var lines []string
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading element set text: %w", err)
	}

	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrMalformedElementSet)
	}

	var sets []ElementSet
	for i := 0; i < len(lines); {
		name := ""
		if !strings.HasPrefix(lines[i], "1 ") {
			name = strings.TrimSpace(lines[i])
			i++
		}
		if i+1 >= len(lines) {
			return nil, fmt.Errorf("%w: truncated entry at line %d", ErrMalformedElementSet, i+1)
		}

		es, err := parseEntry(name, lines[i], lines[i+1])
		if err != nil {
			return nil, err
		}
		sets = append(sets, es)
		i += 2
	}

	return sets, nil
}

// parseEntry validates one two-line pair and derives the structured fields.
func parseEntry(name, line1, line2 string) (ElementSet, error) {
	if len(line1) != lineLength {
		return ElementSet{}, fmt.Errorf("%w: line 1 length %d, expected %d", ErrMalformedElementSet, len(line1), lineLength)
	}
	if len(line2) != lineLength {
		return ElementSet{}, fmt.Errorf("%w: line 2 length %d, expected %d", ErrMalformedElementSet, len(line2), lineLength)
	}
	if !strings.HasPrefix(line1, "1 ") {
		return ElementSet{}, fmt.Errorf("%w: line 1 must start with \"1 \"", ErrMalformedElementSet)
	}
	if !strings.HasPrefix(line2, "2 ") {
		return ElementSet{}, fmt.Errorf("%w: line 2 must start with \"2 \"", ErrMalformedElementSet)
	}

	// Catalog number: line 1 columns 3-7 (0-indexed 2..7).
	noradStr := strings.TrimSpace(line1[2:7])
	noradID, err := strconv.Atoi(noradStr)
	if err != nil {
		return ElementSet{}, fmt.Errorf("%w: invalid catalog number %q", ErrMalformedElementSet, noradStr)
	}

	// Catalog numbers on both lines must agree.
	norad2 := strings.TrimSpace(line2[2:7])
	if norad2 != noradStr {
		return ElementSet{}, fmt.Errorf("%w: catalog number mismatch between lines (%q vs %q)", ErrMalformedElementSet, noradStr, norad2)
	}

	// Epoch: line 1 columns 19-32 (0-indexed 18..32), YYDDD.DDDDDDDD.
	epochRaw := strings.TrimSpace(line1[18:32])
	epoch, err := parseEpoch(epochRaw)
	if err != nil {
		return ElementSet{}, fmt.Errorf("%w: %v", ErrMalformedElementSet, err)
	}

	return ElementSet{
		NORADID:  noradID,
		Name:     name,
		Line1:    line1,
		Line2:    line2,
		Epoch:    epoch,
		EpochRaw: epochRaw,
	}, nil
}

// parseEpoch converts an element-set epoch in YYDDD.DDDDDDDD format to
// time.Time. Year 00-56 → 2000s, 57-99 → 1900s.
func parseEpoch(s string) (time.Time, error) {
	if len(s) < 5 {
		return time.Time{}, fmt.Errorf("epoch field too short: %q", s)
	}

	year, err := strconv.Atoi(s[:2])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid epoch year %q", s[:2])
	}
	if year >= 57 {
		year += 1900
	} else {
		year += 2000
	}

	dayOfYear, err := strconv.ParseFloat(s[2:], 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid epoch day %q", s[2:])
	}
	if dayOfYear < 1 || dayOfYear >= 367 {
		return time.Time{}, fmt.Errorf("epoch day %v out of range", dayOfYear)
	}

	// Day-of-year is 1-based: day 1.0 is Jan 1 00:00 UTC.
	t := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	return t.Add(time.Duration((dayOfYear - 1) * float64(24*time.Hour))), nil
}
