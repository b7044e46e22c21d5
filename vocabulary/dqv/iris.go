// Package dqv provides IRI constants and predicate registrations for the
// W3C Data Quality Vocabulary (DQV) terms used in quality assessments.
package dqv

// Namespace is the base IRI prefix for DQV vocabulary terms.
const Namespace = "http://www.w3.org/ns/dqv#"

// Class IRIs for quality entities.
const (
	// ClassDimension marks a node as a dqv:Dimension (a named quality
	// aspect such as accessibility or interoperability).
	ClassDimension = Namespace + "Dimension"

	// ClassQualityMeasurement marks a node as a dqv:QualityMeasurement
	// (one observed value for one metric).
	ClassQualityMeasurement = Namespace + "QualityMeasurement"

	// ClassMetric marks a node as a dqv:Metric (a single measurable
	// quality check within a dimension).
	ClassMetric = Namespace + "Metric"
)

// Property IRIs for the quality graph shape.
const (
	// PropInDimension attaches a quality dimension to a dataset or
	// distribution node.
	PropInDimension = Namespace + "inDimension"

	// PropHasQualityMeasurement links a dimension node to one of its
	// measurement nodes.
	PropHasQualityMeasurement = Namespace + "hasQualityMeasurement"

	// PropIsMeasurementOf links a measurement node to the metric it
	// observes.
	PropIsMeasurementOf = Namespace + "isMeasurementOf"
)
