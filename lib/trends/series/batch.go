package series

const batchSize = 4

// PackTerms splits terms into groups of at most 4 and appends the first
// term to every group so all batches share a common scale reference. The
// first group may hold the anchor twice, downstream code always treats the
// last column of a batch as the anchor.
func PackTerms(terms []string) [][]string {
	if len(terms) == 0 {
		return nil
	}

	anchor := terms[0]
	var batches [][]string
	for start := 0; start < len(terms); start += batchSize {
		end := min(start+batchSize, len(terms))
		batch := make([]string, 0, end-start+1)
		batch = append(batch, terms[start:end]...)
		batch = append(batch, anchor)
		batches = append(batches, batch)
	}
	return batches
}
