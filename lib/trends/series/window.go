package series

import (
	"time"
)

// Window is one export request. Consecutive windows overlap by one month so
// the last row of a window shares its date with the first row of the next.
type Window struct {
	// Start is the first day of the first month.
	Start time.Time
	// Boundary is the first day of the month the next window starts in,
	// rows are kept up to and including the first one in this month.
	Boundary time.Time
	Span     string
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func sameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

// MonthsBetween counts whole months from start to end, days are ignored.
func MonthsBetween(start, end time.Time) int {
	return (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month())
}

func windowShape(gran Granularity) (countMonth int, span string) {
	if gran == Weekly {
		return 5, "6m"
	}
	return 1, "2m"
}

// PlanWindows lists the windows needed to cover [start, end) at the given
// granularity. Daily windows advance one month at a time and span two,
// weekly windows advance five and span six.
func PlanWindows(start, end time.Time, gran Granularity) []Window {
	countMonth, span := windowShape(gran)

	months := MonthsBetween(start, end)
	if months <= 0 {
		return nil
	}
	count := (months + countMonth - 1) / countMonth

	windows := make([]Window, count)
	first := firstOfMonth(start)
	for i := range windows {
		windowStart := first.AddDate(0, i*countMonth, 0)
		windows[i] = Window{
			Start:    windowStart,
			Boundary: windowStart.AddDate(0, countMonth, 0),
			Span:     span,
		}
	}
	return windows
}
