package series

import (
	"math/big"
)

// exactRat is the exact rational value of v, with zero replaced by one so
// it can be divided by.
func exactRat(v float64) *big.Rat {
	return new(big.Rat).SetFloat64(nonZero(v))
}

// PercentChange converts levels into exact ratios against the previous row.
//
// The first row of the first window gets an all-ones ratio. Within each
// window, every row from the second on is divided by the row before it. The
// first row of a later window is only used as the divisor of that window's
// second row, since its date was already covered by the previous window.
// Ratios stay exact because they are multiplied together hundreds of times
// during reconstruction.
func PercentChange(report Report) []RatioRow {
	if len(report) == 0 || len(report[0]) == 0 {
		return nil
	}

	first := report[0][0]
	ones := make([]*big.Rat, len(first.Values))
	for i := range ones {
		ones[i] = big.NewRat(1, 1)
	}
	out := []RatioRow{{Date: first.Date, Ratios: ones}}

	for _, window := range report {
		for j := 1; j < len(window); j++ {
			prev := window[j-1]
			cur := window[j]

			ratios := make([]*big.Rat, len(cur.Values))
			for k, v := range cur.Values {
				ratios[k] = new(big.Rat).Quo(exactRat(v), exactRat(prev.Values[k]))
			}
			out = append(out, RatioRow{Date: cur.Date, Ratios: ratios})
		}
	}
	return out
}
