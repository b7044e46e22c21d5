// Package dcat provides IRI constants and predicate registrations for the
// W3C Data Catalog vocabulary (DCAT) terms used in quality assessments.
package dcat

// Namespace is the base IRI prefix for DCAT vocabulary terms.
const Namespace = "http://www.w3.org/ns/dcat#"

// RDFType is the rdf:type predicate IRI used for class-membership checks.
const RDFType = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"

// Class IRIs for catalog entities.
const (
	// ClassDataset marks a node as a dcat:Dataset. A quality assessment
	// graph must declare its target node with this class.
	ClassDataset = Namespace + "Dataset"

	// ClassDistribution marks a node as a dcat:Distribution. Declaration
	// is optional in assessment graphs; distributions are discovered via
	// PropDistribution edges, not by type.
	ClassDistribution = Namespace + "Distribution"
)

// Property IRIs for catalog structure.
const (
	// PropDistribution links a dataset node to one of its distributions.
	PropDistribution = Namespace + "distribution"
)
