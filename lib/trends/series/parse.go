package series

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	preambleLines = 5
	dateLayout    = "2006-01-02"
)

// Parsed is one window of a report.
type Parsed struct {
	Rows []Row
	// Granularity is what the file actually contained, it differs from
	// the requested one when Overridden is set.
	Granularity Granularity
	Overridden  bool
}

func detectGranularity(marker string, requested Granularity) Granularity {
	switch strings.TrimSpace(marker) {
	case "Day":
		return Daily
	case "Week":
		return Weekly
	}
	return requested
}

func parseDate(field string, gran Granularity) (time.Time, error) {
	field = strings.TrimSpace(field)
	if gran == Weekly {
		// weeks are written as "2006-01-01 - 2006-01-07"
		weekStart, _, found := strings.Cut(field, " - ")
		if !found {
			return time.Time{}, fmt.Errorf("week range %q", field)
		}
		field = weekStart
	}
	return time.Parse(dateLayout, field)
}

func splitLines(raw string) [][]string {
	lines := strings.Split(raw, "\n")
	out := make([][]string, len(lines))
	for i, line := range lines {
		out[i] = strings.Split(strings.TrimRight(line, "\r"), ",")
	}
	return out
}

// ParseWindow reads one raw csv export. `width` is the number of value
// columns every row must have (the batch size including the anchor), 0
// skips that check.
//
// The 5 line preamble is skipped, its last line names the granularity the
// file really has. Reading stops at the first line without a date, which
// is where the by-region section begins, or after the first row that falls
// in the window's boundary month.
func ParseWindow(raw string, window Window, width int, requested Granularity) (Parsed, error) {
	lines := splitLines(raw)
	if len(lines) < preambleLines {
		return Parsed{}, fmt.Errorf("%w: expected a %d line preamble, got %d lines", ErrMalformedReport, preambleLines, len(lines))
	}

	gran := detectGranularity(lines[preambleLines-1][0], requested)
	parsed := Parsed{
		Granularity: gran,
		Overridden:  gran != requested,
	}

	for i, fields := range lines[preambleLines:] {
		lineNo := i + preambleLines + 1
		if strings.TrimSpace(fields[0]) == "" {
			break
		}

		date, err := parseDate(fields[0], gran)
		if err != nil {
			return Parsed{}, fmt.Errorf("%w: line %d: bad date: %v", ErrMalformedReport, lineNo, err)
		}

		values := fields[1:]
		if width > 0 && len(values) != width {
			return Parsed{}, fmt.Errorf("%w: line %d: expected %d values, got %d", ErrMalformedReport, lineNo, width, len(values))
		}
		row := Row{Date: date, Values: make([]float64, len(values))}
		for j, v := range values {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return Parsed{}, fmt.Errorf("%w: line %d: bad value: %v", ErrMalformedReport, lineNo, err)
			}
			row.Values[j] = float64(n)
		}
		parsed.Rows = append(parsed.Rows, row)

		if sameMonth(date, window.Boundary) {
			break
		}
	}

	if len(parsed.Rows) == 0 {
		return Parsed{}, fmt.Errorf("%w: no rows", ErrMalformedReport)
	}
	return parsed, nil
}
