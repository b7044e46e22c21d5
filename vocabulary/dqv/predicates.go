package dqv

import "github.com/c360studio/semstreams/vocabulary"

// Measurement predicates for quality dimension structure.
const (
	// MeasurementInDimension attaches a quality dimension to a dataset
	// or distribution entity.
	MeasurementInDimension = "quality.measurement.in_dimension"

	// MeasurementHasMeasurement links a dimension to a measurement node.
	MeasurementHasMeasurement = "quality.measurement.has_measurement"

	// MeasurementOfMetric links a measurement to the metric it observes.
	MeasurementOfMetric = "quality.measurement.of_metric"
)

func init() {
	vocabulary.Register(MeasurementInDimension,
		vocabulary.WithDescription("Attaches a quality dimension to a dataset or distribution"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(PropInDimension))

	vocabulary.Register(MeasurementHasMeasurement,
		vocabulary.WithDescription("Links a quality dimension to a measurement node"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(PropHasQualityMeasurement))

	vocabulary.Register(MeasurementOfMetric,
		vocabulary.WithDescription("Links a measurement to the metric it observes"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(PropIsMeasurementOf))
}
