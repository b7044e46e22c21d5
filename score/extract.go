package score

import (
	"strconv"
	"strings"

	"github.com/c360studio/semscore/graph"
	"github.com/c360studio/semscore/vocabulary/dcat"
	"github.com/c360studio/semscore/vocabulary/dqv"
	"github.com/c360studio/semscore/vocabulary/mqa"
)

// Extract walks an assessment graph from the given dataset node and
// produces its score tree. The walk is all-or-nothing: any structural
// violation returns a MalformedGraphError and no partial tree.
//
// Shape: the dataset node declares dcat:Dataset membership; dimensions
// hang off the dataset (and each distribution) via dqv:inDimension;
// measurements hang off dimensions via dqv:hasQualityMeasurement; each
// measurement names its metric via dqv:isMeasurementOf and carries its
// value in mqa:score, falling back to mqa:trueScore. The metric node
// itself declares the ceiling via mqa:maxScore. Triples outside this
// shape are ignored.
func Extract(idx *graph.Index, datasetURI string) (*Tree, error) {
	if datasetURI == "" {
		return nil, NewMalformedGraph("empty dataset identifier")
	}
	if !idx.HasSubject(datasetURI) {
		return nil, NewMalformedGraph("dataset %s has no triples", datasetURI)
	}
	if !idx.HasType(datasetURI, dcat.ClassDataset) {
		return nil, NewMalformedGraph("%s is not declared a dcat:Dataset", datasetURI)
	}

	dataset, err := extractNode(idx, datasetURI)
	if err != nil {
		return nil, err
	}

	distURIs := idx.Objects(datasetURI, dcat.PropDistribution)
	distributions := make([]Node, 0, len(distURIs))
	for _, distURI := range distURIs {
		node, err := extractNode(idx, distURI)
		if err != nil {
			return nil, err
		}
		distributions = append(distributions, *node)
	}

	return &Tree{
		DatasetID:     datasetURI,
		Dataset:       *dataset,
		Distributions: distributions,
	}, nil
}

// extractNode builds one aggregation node from the dimension edges
// attached directly to nodeURI. A node with no dimensions is legal and
// yields an all-zero node.
func extractNode(idx *graph.Index, nodeURI string) (*Node, error) {
	dimURIs := idx.Objects(nodeURI, dqv.PropInDimension)
	node := &Node{
		Name:       nodeURI,
		Dimensions: make([]Dimension, 0, len(dimURIs)),
	}

	seen := make(map[string]struct{}, len(dimURIs))
	for _, dimURI := range dimURIs {
		if dimURI == "" {
			return nil, NewMalformedGraph("empty dimension identifier under %s", nodeURI)
		}
		if _, dup := seen[dimURI]; dup {
			return nil, NewMalformedGraph("duplicate dimension %s under %s", dimURI, nodeURI)
		}
		seen[dimURI] = struct{}{}

		dim, err := extractDimension(idx, dimURI)
		if err != nil {
			return nil, err
		}
		node.Dimensions = append(node.Dimensions, *dim)
	}

	node.recalc()
	return node, nil
}

// extractDimension builds one dimension from its measurement nodes. A
// dimension declared without any measurement yields zero metrics, not an
// error.
func extractDimension(idx *graph.Index, dimURI string) (*Dimension, error) {
	measURIs := idx.Objects(dimURI, dqv.PropHasQualityMeasurement)
	dim := &Dimension{
		ID:      dimURI,
		Metrics: make([]Metric, 0, len(measURIs)),
	}

	for _, measURI := range measURIs {
		metric, err := extractMetric(idx, measURI)
		if err != nil {
			return nil, err
		}
		dim.Metrics = append(dim.Metrics, *metric)
	}

	dim.recalc()
	return dim, nil
}

// extractMetric reads one measurement node. A measurement without a
// score value is recorded unscored with the metric's ceiling; a metric
// whose ceiling cannot be resolved is a structural failure.
func extractMetric(idx *graph.Index, measURI string) (*Metric, error) {
	metricID, ok := idx.Object(measURI, dqv.PropIsMeasurementOf)
	if !ok || metricID == "" {
		return nil, NewMalformedGraph("measurement %s names no metric", measURI)
	}

	maxRaw, ok := idx.Object(metricID, mqa.PropMaxScore)
	if !ok {
		return nil, NewMalformedGraph("metric %s declares no maximum score", metricID)
	}
	maxScore, err := parseScore(maxRaw)
	if err != nil {
		return nil, NewMalformedGraph("metric %s maximum score: %v", metricID, err)
	}

	raw, scored := idx.Object(measURI, mqa.PropScore)
	if !scored {
		raw, scored = idx.Object(measURI, mqa.PropTrueScore)
	}
	if !scored {
		return &Metric{Metric: metricID, IsScored: false, Score: 0, MaxScore: maxScore}, nil
	}

	value, err := parseScore(raw)
	if err != nil {
		return nil, NewMalformedGraph("measurement %s score: %v", measURI, err)
	}

	return &Metric{Metric: metricID, IsScored: true, Score: value, MaxScore: maxScore}, nil
}

// parseScore resolves a numeric literal as a non-negative integer score.
func parseScore(raw string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, err
	}
	if value < 0 {
		return 0, strconv.ErrRange
	}
	return value, nil
}
