package dcat

import "github.com/c360studio/semstreams/vocabulary"

// Catalog predicates for dataset assessment entities.
const (
	// DatasetType declares a node's DCAT class membership.
	// Values: "dataset", "distribution"
	DatasetType = "quality.dataset.type"

	// DatasetDistribution links a dataset to a distribution node.
	// Domain: dataset entity, Range: distribution entity
	DatasetDistribution = "quality.dataset.distribution"

	// DatasetURI is the canonical URI of the assessed dataset.
	DatasetURI = "quality.dataset.uri"
)

func init() {
	vocabulary.Register(DatasetType,
		vocabulary.WithDescription("DCAT class membership: dataset or distribution"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(RDFType))

	vocabulary.Register(DatasetDistribution,
		vocabulary.WithDescription("Links a dataset to one of its distributions"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(PropDistribution))

	vocabulary.Register(DatasetURI,
		vocabulary.WithDescription("Canonical URI of the assessed dataset"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(Namespace+"dataset"))
}
