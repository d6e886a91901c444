package series

import (
	"math"
)

type RescaleOptions struct {
	// Threshold is how far apart two batches' anchor values must be, in
	// raw report units, before the batch is rescaled.
	Threshold float64 `json:"threshold"`
	// Floor is the smallest factor worth applying.
	Floor float64 `json:"floor"`
}

func DefaultRescaleOptions() RescaleOptions {
	return RescaleOptions{
		Threshold: 3,
		Floor:     0.0003,
	}
}

func anchor(r Row) float64 {
	return r.Values[len(r.Values)-1]
}

func nonZero(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}

// scaleFactor finds the first aligned row where the anchors of `ref` and
// `other` disagree by more than the threshold, ok is false when they never do.
func scaleFactor(ref, other Report, threshold float64) (factor float64, ok bool) {
	for w := 0; w < min(len(ref), len(other)); w++ {
		for r := 0; r < min(len(ref[w]), len(other[w])); r++ {
			if len(ref[w][r].Values) == 0 || len(other[w][r].Values) == 0 {
				continue
			}
			base := anchor(ref[w][r])
			current := anchor(other[w][r])
			if math.Abs(current-base) > threshold {
				return nonZero(base) / nonZero(current), true
			}
		}
	}
	return 0, false
}

// Rescale brings every report onto the scale of reports[0] using the anchor
// column they all share. Reports are modified in place. The returned slice
// holds the factor applied to each report, 1 where nothing changed.
func Rescale(reports []Report, opts RescaleOptions) []float64 {
	factors := make([]float64, len(reports))
	for i := range factors {
		factors[i] = 1
	}
	if len(reports) < 2 {
		return factors
	}

	for i := 1; i < len(reports); i++ {
		factor, ok := scaleFactor(reports[0], reports[i], opts.Threshold)
		if !ok || math.Abs(factor) <= opts.Floor {
			continue
		}
		for _, window := range reports[i] {
			for _, row := range window {
				for k := range row.Values {
					row.Values[k] *= factor
				}
			}
		}
		factors[i] = factor
	}
	return factors
}
