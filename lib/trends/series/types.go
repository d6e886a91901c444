// Package series turns the overlapping csv windows downloaded for several
// term batches into one continuous, normalized time series.
package series

import (
	"errors"
	"fmt"
	"math/big"
	"time"
)

type Granularity string

const (
	Daily  Granularity = "d"
	Weekly Granularity = "w"
)

func ParseGranularity(s string) (Granularity, error) {
	switch Granularity(s) {
	case Daily, Weekly:
		return Granularity(s), nil
	}
	return "", fmt.Errorf("granularity must be 'd' or 'w', not %q", s)
}

var (
	// ErrMalformedReport means a downloaded window could not be interpreted,
	// nothing of it should be used.
	ErrMalformedReport = errors.New("malformed report")
	// ErrMisaligned means two batches did not cover the same dates.
	ErrMisaligned = errors.New("reports are not aligned")
)

// Row is one day or week. During processing the anchor term is always the
// last value.
type Row struct {
	Date   time.Time
	Values []float64
}

func (r Row) clone() Row {
	values := make([]float64, len(r.Values))
	copy(values, r.Values)
	return Row{Date: r.Date, Values: values}
}

// Report holds the rows of every window downloaded for one batch, in
// window order.
type Report [][]Row

// RatioRow is the exact change of every column relative to the previous row.
type RatioRow struct {
	Date   time.Time
	Ratios []*big.Rat
}

// Table is the finished series with its header, the first header column is
// always "date".
type Table struct {
	Header []string
	Rows   []Row
}
