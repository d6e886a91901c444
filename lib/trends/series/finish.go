package series

import (
	"math"
	"strings"
	"time"
)

// StripAnchors drops the anchor column every batch carries at its end,
// leaving one column per requested term.
func StripAnchors(rows []Row, batches [][]string) []Row {
	var keep []int
	offset := 0
	for _, batch := range batches {
		for i := 0; i < len(batch)-1; i++ {
			keep = append(keep, offset+i)
		}
		offset += len(batch)
	}

	out := make([]Row, len(rows))
	for i, row := range rows {
		values := make([]float64, 0, len(keep))
		for _, k := range keep {
			if k < len(row.Values) {
				values = append(values, row.Values[k])
			}
		}
		out[i] = Row{Date: row.Date, Values: values}
	}
	return out
}

// Sum collapses every term column into a single column.
func Sum(rows []Row) []Row {
	out := make([]Row, len(rows))
	for i, row := range rows {
		total := 0.0
		for _, v := range row.Values {
			total += v
		}
		out[i] = Row{Date: row.Date, Values: []float64{total}}
	}
	return out
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// Normalize rescales every value into [0, 100] against the largest value of
// any column, rounded to 3 decimals. When every value is 0 the output is
// all zeros.
func Normalize(rows []Row) []Row {
	maxValue := 0.0
	for _, row := range rows {
		for _, v := range row.Values {
			maxValue = max(maxValue, v)
		}
	}

	out := make([]Row, len(rows))
	for i, row := range rows {
		values := make([]float64, len(row.Values))
		if maxValue > 0 {
			for k, v := range row.Values {
				values[k] = round3(v * 100 / maxValue)
			}
		}
		out[i] = Row{Date: row.Date, Values: values}
	}
	return out
}

func monthIndex(t time.Time) int {
	return t.Year()*12 + int(t.Month()) - 1
}

// Trim keeps only the rows dated before the month of `end`.
func Trim(rows []Row, end time.Time) []Row {
	limit := monthIndex(end)
	var out []Row
	for _, row := range rows {
		if monthIndex(row.Date) >= limit {
			break
		}
		out = append(out, row)
	}
	return out
}

// Header is "date" then one column per term, or a single column naming
// every term when the terms were summed.
func Header(terms []string, summed bool) []string {
	header := []string{"date"}
	if summed {
		return append(header, strings.Join(terms, " "))
	}
	return append(header, terms...)
}

func WithHeader(rows []Row, terms []string, summed bool) Table {
	return Table{
		Header: Header(terms, summed),
		Rows:   rows,
	}
}
