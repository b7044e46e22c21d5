package mqa

import (
	"testing"

	"github.com/c360studio/semstreams/vocabulary"
)

func TestPredicatesRegistered(t *testing.T) {
	predicates := []string{
		MetricScore,
		MetricTrueScore,
		MetricMaxScore,
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
	if PropScore != "https://data.norge.no/vocabulary/dcatno-mqa#score" {
		t.Errorf("unexpected PropScore IRI: %s", PropScore)
	}
	if PropTrueScore != "https://data.norge.no/vocabulary/dcatno-mqa#trueScore" {
		t.Errorf("unexpected PropTrueScore IRI: %s", PropTrueScore)
	}
	if PropMaxScore != "https://data.norge.no/vocabulary/dcatno-mqa#maxScore" {
		t.Errorf("unexpected PropMaxScore IRI: %s", PropMaxScore)
	}
}
