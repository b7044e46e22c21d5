package dqv

import (
	"testing"

	"github.com/c360studio/semstreams/vocabulary"
)

func TestPredicatesRegistered(t *testing.T) {
	predicates := []string{
		MeasurementInDimension,
		MeasurementHasMeasurement,
		MeasurementOfMetric,
	}

	for _, pred := range predicates {
		t.Run(pred, func(t *testing.T) {
			meta := vocabulary.GetPredicateMetadata(pred)
			if meta.Description == "" {
				t.Errorf("predicate %s not registered or missing description", pred)
			}
		})
	}
}

func TestIRIConstants(t *testing.T) {
	if PropInDimension != "http://www.w3.org/ns/dqv#inDimension" {
		t.Errorf("unexpected PropInDimension IRI: %s", PropInDimension)
	}
	if PropHasQualityMeasurement != "http://www.w3.org/ns/dqv#hasQualityMeasurement" {
		t.Errorf("unexpected PropHasQualityMeasurement IRI: %s", PropHasQualityMeasurement)
	}
	if PropIsMeasurementOf != "http://www.w3.org/ns/dqv#isMeasurementOf" {
		t.Errorf("unexpected PropIsMeasurementOf IRI: %s", PropIsMeasurementOf)
	}
}
