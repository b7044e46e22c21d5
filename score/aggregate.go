package score

// AggregateDimensions groups dimension rows by dimension id and computes
// the arithmetic mean of score and of max score per group. Zero-score
// rows count toward the mean; dataset/dimension combinations with no row
// at all contribute nothing, so a dataset that never reported a
// dimension does not pull its average toward zero. Dimensions present in
// no row are absent from the result. Means keep full float64 precision;
// no rounding is applied.
func AggregateDimensions(rows []DimensionRow) map[string]DimensionAggregate {
	if len(rows) == 0 {
		return map[string]DimensionAggregate{}
	}

	sums := make(map[string]float64)
	maxSums := make(map[string]float64)
	counts := make(map[string]int)

	for _, row := range rows {
		sums[row.ID] += float64(row.Score)
		maxSums[row.ID] += float64(row.MaxScore)
		counts[row.ID]++
	}

	result := make(map[string]DimensionAggregate, len(counts))
	for id, n := range counts {
		result[id] = DimensionAggregate{
			ID:       id,
			Score:    sums[id] / float64(n),
			MaxScore: maxSums[id] / float64(n),
		}
	}
	return result
}
