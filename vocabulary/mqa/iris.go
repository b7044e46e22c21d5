// Package mqa provides IRI constants and predicate registrations for the
// dcatno-mqa scoring vocabulary used in quality assessments.
package mqa

// Namespace is the base IRI prefix for the dcatno-mqa vocabulary terms.
const Namespace = "https://data.norge.no/vocabulary/dcatno-mqa#"

// Property IRIs for metric scoring.
const (
	// PropScore carries the achieved score of a quality measurement.
	// This is the primary score predicate.
	PropScore = Namespace + "score"

	// PropTrueScore carries the achieved score when PropScore is absent.
	// Fallback only; PropScore wins when both are present.
	PropTrueScore = Namespace + "trueScore"

	// PropMaxScore carries a metric's defined ceiling. It is attached to
	// the metric node, not the measurement, so the ceiling is present
	// even for measurements that recorded no value.
	PropMaxScore = Namespace + "maxScore"
)
