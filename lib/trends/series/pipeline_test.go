package series

import (
	"math/big"
	"sort"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

// windowOf builds consecutive daily rows starting at `start`, one row per
// entry of `values`.
func windowOf(start time.Time, values ...[]float64) []Row {
	rows := make([]Row, len(values))
	for i, v := range values {
		rows[i] = Row{Date: start.AddDate(0, 0, i), Values: v}
	}
	return rows
}

// flatten drops the first row of every window after the first, which
// shares its date with the last row of the window before it.
func flatten(report Report) []Row {
	var out []Row
	for w, window := range report {
		if w == 0 {
			out = append(out, window...)
			continue
		}
		out = append(out, window[1:]...)
	}
	return out
}

func TestRescale(t *testing.T) {
	ref := Report{windowOf(day(2006, 1, 1), []float64{10, 50}, []float64{12, 60})}
	other := Report{windowOf(day(2006, 1, 1), []float64{4, 25}, []float64{5, 30})}

	factors := Rescale([]Report{ref, other}, DefaultRescaleOptions())
	require.Equal(t, []float64{1, 2}, factors)
	require.Equal(t, []float64{8, 50}, other[0][0].Values)
	require.Equal(t, []float64{10, 60}, other[0][1].Values)
	require.Equal(t, []float64{10, 50}, ref[0][0].Values)
}

func TestRescaleBelowThreshold(t *testing.T) {
	ref := Report{windowOf(day(2006, 1, 1), []float64{10, 50}, []float64{12, 60})}
	other := Report{windowOf(day(2006, 1, 1), []float64{4, 52}, []float64{5, 57})}

	factors := Rescale([]Report{ref, other}, DefaultRescaleOptions())
	require.Equal(t, []float64{1, 1}, factors)
	require.Equal(t, []float64{4, 52}, other[0][0].Values)
	require.Equal(t, []float64{5, 57}, other[0][1].Values)
}

func TestRescaleScansLaterWindows(t *testing.T) {
	ref := Report{
		windowOf(day(2006, 1, 1), []float64{1, 10}, []float64{1, 10}),
		windowOf(day(2006, 1, 2), []float64{1, 10}, []float64{1, 40}),
	}
	other := Report{
		windowOf(day(2006, 1, 1), []float64{1, 10}, []float64{1, 10}),
		windowOf(day(2006, 1, 2), []float64{1, 10}, []float64{1, 20}),
	}

	factors := Rescale([]Report{ref, other}, DefaultRescaleOptions())
	require.Equal(t, 2.0, factors[1])
	require.Equal(t, []float64{2, 20}, other[0][0].Values)
}

func TestRescaleBelowFloor(t *testing.T) {
	ref := Report{windowOf(day(2006, 1, 1), []float64{1, 0})}
	other := Report{windowOf(day(2006, 1, 1), []float64{1, 10000})}

	factors := Rescale([]Report{ref, other}, DefaultRescaleOptions())
	require.Equal(t, 1.0, factors[1])
	require.Equal(t, []float64{1, 10000}, other[0][0].Values)
}

func TestMerge(t *testing.T) {
	a := Report{windowOf(day(2006, 1, 1), []float64{1, 2}, []float64{3, 4})}
	b := Report{windowOf(day(2006, 1, 1), []float64{5}, []float64{6})}

	merged, err := Merge([]Report{a, b})
	require.NoError(t, err)
	require.Equal(t, []float64{1, 2, 5}, merged[0][0].Values)
	require.Equal(t, []float64{3, 4, 6}, merged[0][1].Values)
	// inputs are not aliased
	require.Equal(t, []float64{1, 2}, a[0][0].Values)
}

func TestMergeMisaligned(t *testing.T) {
	a := Report{windowOf(day(2006, 1, 1), []float64{1}, []float64{3})}
	b := Report{windowOf(day(2006, 1, 1), []float64{5})}

	_, err := Merge([]Report{a, b})
	require.ErrorIs(t, err, ErrMisaligned)

	_, err = Merge([]Report{a, append(b, b[0])})
	require.ErrorIs(t, err, ErrMisaligned)
}

func TestPercentChange(t *testing.T) {
	report := Report{
		windowOf(day(2006, 1, 1), []float64{2, 0}, []float64{4, 5}),
		windowOf(day(2006, 1, 2), []float64{8, 5}, []float64{2, 0}),
	}

	ratios := PercentChange(report)
	require.Len(t, ratios, 3)

	expected := [][]*big.Rat{
		{big.NewRat(1, 1), big.NewRat(1, 1)},
		{big.NewRat(2, 1), big.NewRat(5, 1)},
		{big.NewRat(1, 4), big.NewRat(1, 5)},
	}
	for i, row := range ratios {
		for k, r := range row.Ratios {
			require.Zero(t, expected[i][k].Cmp(r), "row %d column %d: %s", i, k, r)
		}
	}
	require.Equal(t, day(2006, 1, 3), ratios[2].Date)
}

func TestReconstructIdempotent(t *testing.T) {
	report := Report{
		windowOf(day(2006, 1, 1), []float64{3, 70}, []float64{7, 64}, []float64{11, 33}),
		windowOf(day(2006, 1, 3), []float64{11, 33}, []float64{13, 92}, []float64{17, 1}),
		windowOf(day(2006, 1, 5), []float64{17, 1}, []float64{0.1, 100}),
	}

	rows := Reconstruct(PercentChange(report), report[0][0].Values)
	diff := cmp.Diff(flatten(report), rows, cmpopts.EquateApprox(0, 1e-9))
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestReconstructStitchesWindows(t *testing.T) {
	// the second window was exported on a different scale, its rows are
	// chained onto the level the first window ended on
	report := Report{
		windowOf(day(2006, 1, 1), []float64{10}, []float64{20}),
		windowOf(day(2006, 1, 2), []float64{50}, []float64{100}),
	}

	rows := Reconstruct(PercentChange(report), report[0][0].Values)
	require.Equal(t, []Row{
		{Date: day(2006, 1, 1), Values: []float64{10}},
		{Date: day(2006, 1, 2), Values: []float64{20}},
		{Date: day(2006, 1, 3), Values: []float64{40}},
	}, rows)
}

func TestNormalize(t *testing.T) {
	rows := []Row{
		{Date: day(2006, 1, 1), Values: []float64{3, 1}},
		{Date: day(2006, 1, 2), Values: []float64{7.5, 2}},
		{Date: day(2006, 1, 3), Values: []float64{0.3, 9}},
	}

	normalized := Normalize(rows)
	require.Equal(t, []float64{33.333, 11.111}, normalized[0].Values)
	require.Equal(t, []float64{83.333, 22.222}, normalized[1].Values)
	require.Equal(t, []float64{3.333, 100}, normalized[2].Values)

	var before, after []float64
	for i := range rows {
		before = append(before, rows[i].Values...)
		after = append(after, normalized[i].Values...)
	}
	order := func(values []float64) []int {
		idx := make([]int, len(values))
		for i := range idx {
			idx[i] = i
		}
		sort.SliceStable(idx, func(a, b int) bool { return values[idx[a]] < values[idx[b]] })
		return idx
	}
	require.Equal(t, order(before), order(after))
}

func TestNormalizeAllZero(t *testing.T) {
	rows := []Row{{Date: day(2006, 1, 1), Values: []float64{0, 0}}}
	require.Equal(t, []float64{0, 0}, Normalize(rows)[0].Values)
}

func TestTrim(t *testing.T) {
	rows := []Row{
		{Date: day(2006, 1, 31)},
		{Date: day(2006, 2, 1)},
		{Date: day(2006, 2, 28)},
		{Date: day(2006, 3, 1)},
		{Date: day(2006, 3, 2)},
	}

	trimmed := Trim(rows, day(2006, 3, 15))
	require.Len(t, trimmed, 3)
	for _, row := range trimmed {
		require.True(t, row.Date.Before(month(2006, 3)))
	}
	require.Empty(t, Trim(rows, day(2006, 1, 20)))
}

func TestStripAnchorsAndSum(t *testing.T) {
	batches := PackTerms([]string{"a", "b", "c", "d", "e"})
	rows := []Row{{Date: day(2006, 1, 1), Values: []float64{1, 2, 3, 4, 1, 5, 1}}}

	stripped := StripAnchors(rows, batches)
	require.Equal(t, []float64{1, 2, 3, 4, 5}, stripped[0].Values)
	require.Equal(t, []float64{15}, Sum(stripped)[0].Values)

	require.Equal(t, []string{"date", "a b c d e"}, Header([]string{"a", "b", "c", "d", "e"}, true))
}

func TestFiveTermScenario(t *testing.T) {
	terms := []string{"a", "b", "c", "d", "e"}
	batches := PackTerms(terms)
	require.Len(t, batches, 2)

	first := Report{
		windowOf(day(2006, 1, 30),
			[]float64{10, 20, 30, 40, 10},
			[]float64{12, 25, 28, 41, 12},
			[]float64{14, 22, 35, 44, 14},
		),
		windowOf(day(2006, 2, 1),
			[]float64{70, 55, 88, 100, 70},
			[]float64{60, 50, 90, 95, 60},
		),
	}
	second := Report{
		windowOf(day(2006, 1, 30),
			[]float64{80, 5},
			[]float64{85, 6},
			[]float64{90, 7},
		),
		windowOf(day(2006, 2, 1),
			[]float64{100, 35},
			[]float64{97, 30},
		),
	}

	reports := []Report{first, second}
	Rescale(reports, DefaultRescaleOptions())
	merged, err := Merge(reports)
	require.NoError(t, err)

	rows := Reconstruct(PercentChange(merged), merged[0][0].Values)
	rows = Normalize(StripAnchors(rows, batches))
	table := WithHeader(rows, terms, false)

	require.Equal(t, []string{"date", "a", "b", "c", "d", "e"}, table.Header)
	require.Len(t, table.Rows, 4)

	maxValue := 0.0
	for _, row := range table.Rows {
		require.Len(t, row.Values, 5)
		for _, v := range row.Values {
			require.GreaterOrEqual(t, v, 0.0)
			require.LessOrEqual(t, v, 100.0)
			maxValue = max(maxValue, v)
		}
	}
	require.Equal(t, 100.0, maxValue)
}

func TestAllZeroScenario(t *testing.T) {
	report := Report{windowOf(day(2006, 1, 1), []float64{0}, []float64{0}, []float64{0})}

	rows := Reconstruct(PercentChange(report), report[0][0].Values)
	for _, row := range Normalize(rows) {
		require.Equal(t, []float64{0}, row.Values)
	}

	constant := Report{windowOf(day(2006, 1, 1), []float64{7}, []float64{7}, []float64{7})}
	rows = Reconstruct(PercentChange(constant), constant[0][0].Values)
	for _, row := range Normalize(rows) {
		require.Equal(t, []float64{100}, row.Values)
	}
}
