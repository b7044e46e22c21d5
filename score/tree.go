// Package score implements the dataset quality score tree and the fixed
// traversal that lifts it out of a DCAT/DQV assessment graph.
//
// A tree is built once per extraction from an immutable triple snapshot,
// serialized, and discarded; nothing in this package mutates a tree after
// construction. Aggregate totals (dimension, node) are derived sums and
// are recomputed whenever a tree crosses a trust boundary.
package score

// Metric is the scored result of one quality check within a dimension.
// An unscored metric records that the check applied but no measurement
// value was present; it always carries a zero score and keeps the
// metric's defined ceiling in MaxScore.
type Metric struct {
	Metric   string `json:"metric"`
	Score    int    `json:"score"`
	IsScored bool   `json:"is_scored"`
	MaxScore int    `json:"max_score"`
}

// Dimension groups the metric scores of one quality dimension.
// Score and MaxScore are derived sums over Metrics.
type Dimension struct {
	ID       string   `json:"id"`
	Metrics  []Metric `json:"metrics"`
	Score    int      `json:"score"`
	MaxScore int      `json:"max_score"`
}

// Node is one aggregation level of the tree: the dataset itself or a
// single distribution. Score and MaxScore are derived sums over
// Dimensions.
type Node struct {
	Name       string      `json:"name"`
	Dimensions []Dimension `json:"dimensions"`
	Score      int         `json:"score"`
	MaxScore   int         `json:"max_score"`
}

// Tree is the complete extraction result for one dataset: the
// dataset-level node plus one node per distribution, in traversal order.
type Tree struct {
	DatasetID     string `json:"dataset_id"`
	Dataset       Node   `json:"dataset"`
	Distributions []Node `json:"distributions"`
}

// DimensionRow is the flattened per-(dataset, dimension) persistence row
// consumed by cross-dataset aggregation. Rows are produced from the
// dataset-level node only.
type DimensionRow struct {
	DatasetURI string `json:"dataset_uri"`
	ID         string `json:"id"`
	Score      int    `json:"score"`
	MaxScore   int    `json:"max_score"`
}

// DimensionAggregate is the cross-dataset mean for one dimension. It is
// a query result, never persisted.
type DimensionAggregate struct {
	ID       string  `json:"id"`
	Score    float64 `json:"score"`
	MaxScore float64 `json:"max_score"`
}

func (d *Dimension) recalc() {
	total, max := 0, 0
	for _, m := range d.Metrics {
		total += m.Score
		max += m.MaxScore
	}
	d.Score, d.MaxScore = total, max
}

func (n *Node) recalc() {
	total, max := 0, 0
	for i := range n.Dimensions {
		n.Dimensions[i].recalc()
		total += n.Dimensions[i].Score
		max += n.Dimensions[i].MaxScore
	}
	n.Score, n.MaxScore = total, max
}

// Normalize re-derives every aggregate total bottom-up and verifies the
// tree's structural invariants. It must be called on any tree received
// over the wire before the tree is trusted; derived totals supplied by a
// caller are discarded, never believed.
func (t *Tree) Normalize() error {
	if t.DatasetID == "" {
		return NewMalformedGraph("empty dataset identifier")
	}
	if err := t.Dataset.normalize(); err != nil {
		return err
	}
	if t.Distributions == nil {
		t.Distributions = []Node{}
	}
	for i := range t.Distributions {
		if err := t.Distributions[i].normalize(); err != nil {
			return err
		}
	}
	return nil
}

func (n *Node) normalize() error {
	seen := make(map[string]struct{}, len(n.Dimensions))
	for i := range n.Dimensions {
		d := &n.Dimensions[i]
		if d.ID == "" {
			return NewMalformedGraph("dimension with empty id under %q", n.Name)
		}
		if _, dup := seen[d.ID]; dup {
			return NewMalformedGraph("duplicate dimension %q under %q", d.ID, n.Name)
		}
		seen[d.ID] = struct{}{}

		for _, m := range d.Metrics {
			if m.Metric == "" {
				return NewMalformedGraph("metric with empty id in dimension %q", d.ID)
			}
			if m.Score < 0 || m.MaxScore < 0 {
				return NewMalformedGraph("negative score on metric %q", m.Metric)
			}
			if !m.IsScored && m.Score != 0 {
				return NewMalformedGraph("unscored metric %q carries score %d", m.Metric, m.Score)
			}
		}
	}
	n.recalc()
	return nil
}

// DimensionRows flattens the dataset-level dimensions into persistence
// rows keyed by (dataset URI, dimension id).
func (t *Tree) DimensionRows() []DimensionRow {
	rows := make([]DimensionRow, 0, len(t.Dataset.Dimensions))
	for _, d := range t.Dataset.Dimensions {
		rows = append(rows, DimensionRow{
			DatasetURI: t.DatasetID,
			ID:         d.ID,
			Score:      d.Score,
			MaxScore:   d.MaxScore,
		})
	}
	return rows
}
