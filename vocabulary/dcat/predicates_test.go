package dcat

import (
	"testing"

	"github.com/c360studio/semstreams/vocabulary"
)

func TestPredicatesRegistered(t *testing.T) {
	predicates := []string{
		DatasetType,
		DatasetDistribution,
		DatasetURI,
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
	if ClassDataset != "http://www.w3.org/ns/dcat#Dataset" {
		t.Errorf("unexpected ClassDataset IRI: %s", ClassDataset)
	}
	if PropDistribution != "http://www.w3.org/ns/dcat#distribution" {
		t.Errorf("unexpected PropDistribution IRI: %s", PropDistribution)
	}
	if RDFType != "http://www.w3.org/1999/02/22-rdf-syntax-ns#type" {
		t.Errorf("unexpected RDFType IRI: %s", RDFType)
	}
}
