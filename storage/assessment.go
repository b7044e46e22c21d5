// Package storage provides persistent storage for dataset quality assessments.
package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/c360studio/semscore/score"
)

// Assessment is a stored quality assessment for a single dataset. The
// Turtle and JSON-LD fields hold the full assessment graph as opaque
// documents; JSONScore holds the serialized score tree.
type Assessment struct {
	ID               string `json:"id"`
	DatasetURI       string `json:"dataset_uri"`
	TurtleAssessment string `json:"turtle_assessment"`
	JSONLDAssessment string `json:"jsonld_assessment"`
	JSONScore        string `json:"json_score"`
}

// AssessmentStore persists assessments and their dataset-level dimension
// scores. Implementations must replace dimension rows atomically with the
// assessment on save, so readers never observe rows from two different
// assessments of the same dataset.
type AssessmentStore interface {
	// SaveAssessment stores the assessment and replaces all dimension rows
	// for its dataset URI in a single atomic operation.
	SaveAssessment(ctx context.Context, a Assessment, rows []score.DimensionRow) error

	// Assessment returns the full stored assessment by its ID.
	// Returns ErrNotFound if no assessment with that ID exists.
	Assessment(ctx context.Context, id string) (Assessment, error)

	// ScoreJSON returns the stored score document for an assessment ID.
	ScoreJSON(ctx context.Context, id string) (string, error)

	// TurtleGraph returns the stored Turtle rendering for an assessment ID.
	TurtleGraph(ctx context.Context, id string) (string, error)

	// JSONLDGraph returns the stored JSON-LD rendering for an assessment ID.
	JSONLDGraph(ctx context.Context, id string) (string, error)

	// DimensionRows returns the dimension rows recorded for a dataset URI,
	// one row per dimension. Returns an empty slice for unknown datasets.
	DimensionRows(ctx context.Context, datasetURI string) ([]score.DimensionRow, error)

	// AggregateDimensions averages dimension scores across the given dataset
	// URIs, keyed by dimension ID. An empty input yields an empty map.
	AggregateDimensions(ctx context.Context, datasetURIs []string) (map[string]score.DimensionAggregate, error)

	// Ping verifies the backing store is reachable.
	Ping(ctx context.Context) error
}

// NewAssessmentID generates a new unique assessment identifier.
func NewAssessmentID() string {
	return uuid.New().String()
}
