package series

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func day(year int, m time.Month, d int) time.Time {
	return time.Date(year, m, d, 0, 0, 0, 0, time.UTC)
}

func rawReport(marker string, rows ...string) string {
	lines := []string{
		"Web Search interest: a, b",
		"Worldwide; 2006",
		"",
		"Interest over time",
		marker + ",a,b",
	}
	lines = append(lines, rows...)
	lines = append(lines, "", "Top regions for a", "Region,a", "Spain,100")
	return strings.Join(lines, "\r\n")
}

var januaryWindow = Window{
	Start:    month(2006, time.January),
	Boundary: month(2006, time.February),
	Span:     "2m",
}

func TestParseWindowDaily(t *testing.T) {
	raw := rawReport("Day",
		"2006-01-30,10,20",
		"2006-01-31,11,21",
		"2006-02-01,12,22",
		"2006-02-02,13,23",
	)

	parsed, err := ParseWindow(raw, januaryWindow, 2, Daily)
	require.NoError(t, err)
	require.False(t, parsed.Overridden)
	require.Equal(t, Daily, parsed.Granularity)
	require.Equal(t, []Row{
		{Date: day(2006, time.January, 30), Values: []float64{10, 20}},
		{Date: day(2006, time.January, 31), Values: []float64{11, 21}},
		{Date: day(2006, time.February, 1), Values: []float64{12, 22}},
	}, parsed.Rows)
}

func TestParseWindowStopsAtRegions(t *testing.T) {
	raw := rawReport("Day",
		"2006-01-01,1,2",
		"2006-01-02,3,4",
	)

	parsed, err := ParseWindow(raw, januaryWindow, 2, Daily)
	require.NoError(t, err)
	require.Len(t, parsed.Rows, 2)
}

func TestParseWindowWeekly(t *testing.T) {
	window := Window{
		Start:    month(2006, time.January),
		Boundary: month(2006, time.June),
		Span:     "6m",
	}
	raw := rawReport("Week",
		"2006-01-01 - 2006-01-07,40,50",
		"2006-01-08 - 2006-01-14,41,51",
	)

	parsed, err := ParseWindow(raw, window, 2, Weekly)
	require.NoError(t, err)
	require.False(t, parsed.Overridden)
	require.Equal(t, day(2006, time.January, 8), parsed.Rows[1].Date)
}

func TestParseWindowGranularityOverride(t *testing.T) {
	raw := rawReport("Week", "2006-01-01 - 2006-01-07,40,50")

	parsed, err := ParseWindow(raw, januaryWindow, 2, Daily)
	require.NoError(t, err)
	require.True(t, parsed.Overridden)
	require.Equal(t, Weekly, parsed.Granularity)
	require.Equal(t, day(2006, time.January, 1), parsed.Rows[0].Date)
}

func TestParseWindowMalformed(t *testing.T) {
	testCases := []struct {
		name string
		raw  string
	}{
		{name: "short preamble", raw: "Web Search interest: a\nWorldwide"},
		{name: "no rows", raw: rawReport("Day")},
		{name: "bad value", raw: rawReport("Day", "2006-01-01,1,x")},
		{name: "bad date", raw: rawReport("Day", "01/01/2006,1,2")},
		{name: "wrong width", raw: rawReport("Day", "2006-01-01,1,2,3")},
		{name: "weekly without range", raw: rawReport("Week", "2006-01-01,1,2")},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			_, err := ParseWindow(test.raw, januaryWindow, 2, Daily)
			require.ErrorIs(t, err, ErrMalformedReport)
		})
	}
}
