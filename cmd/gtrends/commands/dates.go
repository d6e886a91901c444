package commands

import (
	"fmt"
	"time"
)

// parseDate accepts either a month (2006-01) or a day (2006-01-02).
func parseDate(value string) (time.Time, error) {
	for _, layout := range []string{"2006-01", time.DateOnly} {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%q is neither YYYY-MM nor YYYY-MM-DD", value)
}

// dateRange parses the start and end flags, an empty end means the first
// day of the current month.
func dateRange(start, end string) (time.Time, time.Time, error) {
	startDate, err := parseDate(start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("start: %w", err)
	}
	if end == "" {
		now := time.Now().UTC()
		return startDate, time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC), nil
	}
	endDate, err := parseDate(end)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("end: %w", err)
	}
	return startDate, endDate, nil
}
