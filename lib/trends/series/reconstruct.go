package series

import (
	"math/big"
)

// Reconstruct turns ratios back into levels starting from `initial`, the
// values of the first row before any zero substitution. Levels are carried
// as exact rationals and only converted to float64 when emitted.
func Reconstruct(ratios []RatioRow, initial []float64) []Row {
	if len(ratios) == 0 {
		return nil
	}

	levels := make([]*big.Rat, len(initial))
	for i, v := range initial {
		levels[i] = new(big.Rat).SetFloat64(v)
	}

	first := make([]float64, len(initial))
	copy(first, initial)
	out := make([]Row, 0, len(ratios))
	out = append(out, Row{Date: ratios[0].Date, Values: first})

	for _, ratio := range ratios[1:] {
		row := Row{Date: ratio.Date, Values: make([]float64, len(levels))}
		for k, level := range levels {
			level.Mul(level, ratio.Ratios[k])
			row.Values[k], _ = level.Float64()
		}
		out = append(out, row)
	}
	return out
}
