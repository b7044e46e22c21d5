package storage

import (
	"context"
	"sync"

	"github.com/c360studio/semscore/score"
)

// MemoryStore is an in-memory AssessmentStore used by tests and local runs
// without a database. It is safe for concurrent use.
type MemoryStore struct {
	mu          sync.RWMutex
	assessments map[string]Assessment
	dimensions  map[string][]score.DimensionRow
}

var _ AssessmentStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		assessments: make(map[string]Assessment),
		dimensions:  make(map[string][]score.DimensionRow),
	}
}

// SaveAssessment stores the assessment and replaces the dimension rows for
// its dataset URI under a single lock acquisition.
func (s *MemoryStore) SaveAssessment(_ context.Context, a Assessment, rows []score.DimensionRow) error {
	replacement := make([]score.DimensionRow, len(rows))
	for i, row := range rows {
		row.DatasetURI = a.DatasetURI
		replacement[i] = row
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.assessments[a.ID] = a
	s.dimensions[a.DatasetURI] = replacement
	return nil
}

// Assessment returns the full stored assessment by its ID.
func (s *MemoryStore) Assessment(_ context.Context, id string) (Assessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.assessments[id]
	if !ok {
		return Assessment{}, ErrNotFound
	}
	return a, nil
}

// ScoreJSON returns the stored score document for an assessment ID.
func (s *MemoryStore) ScoreJSON(ctx context.Context, id string) (string, error) {
	a, err := s.Assessment(ctx, id)
	if err != nil {
		return "", err
	}
	return a.JSONScore, nil
}

// TurtleGraph returns the stored Turtle rendering for an assessment ID.
func (s *MemoryStore) TurtleGraph(ctx context.Context, id string) (string, error) {
	a, err := s.Assessment(ctx, id)
	if err != nil {
		return "", err
	}
	return a.TurtleAssessment, nil
}

// JSONLDGraph returns the stored JSON-LD rendering for an assessment ID.
func (s *MemoryStore) JSONLDGraph(ctx context.Context, id string) (string, error) {
	a, err := s.Assessment(ctx, id)
	if err != nil {
		return "", err
	}
	return a.JSONLDAssessment, nil
}

// DimensionRows returns a copy of the dimension rows for a dataset URI.
func (s *MemoryStore) DimensionRows(_ context.Context, datasetURI string) ([]score.DimensionRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := s.dimensions[datasetURI]
	result := make([]score.DimensionRow, len(rows))
	copy(result, rows)
	return result, nil
}

// AggregateDimensions averages dimension scores across the given datasets.
func (s *MemoryStore) AggregateDimensions(_ context.Context, datasetURIs []string) (map[string]score.DimensionAggregate, error) {
	if len(datasetURIs) == 0 {
		return map[string]score.DimensionAggregate{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows []score.DimensionRow
	for _, uri := range datasetURIs {
		rows = append(rows, s.dimensions[uri]...)
	}
	return score.AggregateDimensions(rows), nil
}

// Ping always succeeds for the in-memory store.
func (s *MemoryStore) Ping(_ context.Context) error {
	return nil
}
