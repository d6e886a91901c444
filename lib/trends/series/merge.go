package series

import (
	"fmt"
)

// Merge joins same-dated rows of every batch into one row, values are
// concatenated in batch order with each batch's anchor left in place.
func Merge(reports []Report) (Report, error) {
	if len(reports) == 0 {
		return nil, nil
	}

	base := reports[0]
	merged := make(Report, len(base))
	for w, window := range base {
		merged[w] = make([]Row, len(window))
		for r, row := range window {
			merged[w][r] = row.clone()
		}
	}

	for i, report := range reports[1:] {
		if len(report) != len(merged) {
			return nil, fmt.Errorf("%w: batch %d has %d windows, expected %d", ErrMisaligned, i+1, len(report), len(merged))
		}
		for w, window := range report {
			if len(window) != len(merged[w]) {
				return nil, fmt.Errorf("%w: batch %d window %d has %d rows, expected %d", ErrMisaligned, i+1, w, len(window), len(merged[w]))
			}
			for r, row := range window {
				merged[w][r].Values = append(merged[w][r].Values, row.Values...)
			}
		}
	}
	return merged, nil
}
