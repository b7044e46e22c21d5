package score

import "testing"

func TestAggregateDimensionsMean(t *testing.T) {
	rows := []DimensionRow{
		{DatasetURI: "a", ID: "accessibility", Score: 3, MaxScore: 10},
		{DatasetURI: "b", ID: "accessibility", Score: 5, MaxScore: 10},
		{DatasetURI: "a", ID: "findability", Score: 2, MaxScore: 4},
	}

	agg := AggregateDimensions(rows)
	if len(agg) != 2 {
		t.Fatalf("expected 2 dimensions, got %d", len(agg))
	}

	acc := agg["accessibility"]
	if acc.ID != "accessibility" || acc.Score != 4.0 || acc.MaxScore != 10.0 {
		t.Errorf("accessibility = %+v, want mean 4/10", acc)
	}
	fin := agg["findability"]
	if fin.Score != 2.0 || fin.MaxScore != 4.0 {
		t.Errorf("findability = %+v, want mean 2/4", fin)
	}
}

func TestAggregateAbsentDatasetsExcluded(t *testing.T) {
	// Dataset b contributes no accessibility row. The mean divides by the
	// number of datasets that actually report the dimension, so a single
	// 3/10 row yields 3.0/10.0, not 1.5/5.0.
	rows := []DimensionRow{
		{DatasetURI: "a", ID: "accessibility", Score: 3, MaxScore: 10},
	}

	agg := AggregateDimensions(rows)
	acc, ok := agg["accessibility"]
	if !ok {
		t.Fatal("accessibility missing from aggregate")
	}
	if acc.Score != 3.0 || acc.MaxScore != 10.0 {
		t.Errorf("accessibility = %v/%v, want 3/10", acc.Score, acc.MaxScore)
	}
}

func TestAggregateZeroScoreRowsCount(t *testing.T) {
	// An explicit zero row is a reported value and pulls the mean down,
	// unlike an absent row.
	rows := []DimensionRow{
		{DatasetURI: "a", ID: "accessibility", Score: 4, MaxScore: 10},
		{DatasetURI: "b", ID: "accessibility", Score: 0, MaxScore: 10},
	}

	agg := AggregateDimensions(rows)
	if got := agg["accessibility"].Score; got != 2.0 {
		t.Errorf("score = %v, want 2.0", got)
	}
}

func TestAggregateFractionalMeans(t *testing.T) {
	rows := []DimensionRow{
		{DatasetURI: "a", ID: "reusability", Score: 1, MaxScore: 3},
		{DatasetURI: "b", ID: "reusability", Score: 2, MaxScore: 4},
	}

	agg := AggregateDimensions(rows)
	r := agg["reusability"]
	if r.Score != 1.5 || r.MaxScore != 3.5 {
		t.Errorf("reusability = %v/%v, want 1.5/3.5", r.Score, r.MaxScore)
	}
}

func TestAggregateEmptyInput(t *testing.T) {
	agg := AggregateDimensions(nil)
	if agg == nil {
		t.Fatal("aggregate must not be nil")
	}
	if len(agg) != 0 {
		t.Errorf("expected empty aggregate, got %d entries", len(agg))
	}
}
