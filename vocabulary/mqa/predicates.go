package mqa

import "github.com/c360studio/semstreams/vocabulary"

// Metric scoring predicates.
const (
	// MetricScore is the achieved score of a measurement.
	MetricScore = "quality.metric.score"

	// MetricTrueScore is the fallback achieved score of a measurement.
	MetricTrueScore = "quality.metric.true_score"

	// MetricMaxScore is the defined ceiling of a metric.
	MetricMaxScore = "quality.metric.max_score"
)

func init() {
	vocabulary.Register(MetricScore,
		vocabulary.WithDescription("Achieved score of a quality measurement"),
		vocabulary.WithDataType("integer"),
		vocabulary.WithIRI(PropScore))

	vocabulary.Register(MetricTrueScore,
		vocabulary.WithDescription("Fallback achieved score when the primary score is absent"),
		vocabulary.WithDataType("integer"),
		vocabulary.WithIRI(PropTrueScore))

	vocabulary.Register(MetricMaxScore,
		vocabulary.WithDescription("Defined ceiling of a quality metric"),
		vocabulary.WithDataType("integer"),
		vocabulary.WithIRI(PropMaxScore))
}
