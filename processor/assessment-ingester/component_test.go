package assessmentingester

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/c360studio/semstreams/component"
	"github.com/c360studio/semstreams/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/c360studio/semscore/score"
	"github.com/c360studio/semscore/storage"
	"github.com/c360studio/semscore/vocabulary/dcat"
	"github.com/c360studio/semscore/vocabulary/dqv"
	"github.com/c360studio/semscore/vocabulary/mqa"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const testDataset = "https://data.example.com/datasets/budget-2024"

// assessmentTriples builds a minimal well-formed assessment graph: one
// dataset with one accessibility dimension holding a single measurement
// scored 3 of 5.
func assessmentTriples() []message.Triple {
	const (
		dim  = "https://example.com/dimensions/accessibility"
		meas = "https://example.com/measurements/m1"
	)
	metric := mqa.Namespace + "downloadUrlAvailability"
	return []message.Triple{
		{Subject: testDataset, Predicate: dcat.RDFType, Object: dcat.ClassDataset},
		{Subject: testDataset, Predicate: dqv.PropInDimension, Object: dim},
		{Subject: dim, Predicate: dqv.PropHasQualityMeasurement, Object: meas},
		{Subject: meas, Predicate: dqv.PropIsMeasurementOf, Object: metric},
		{Subject: meas, Predicate: mqa.PropScore, Object: 3},
		{Subject: metric, Predicate: mqa.PropMaxScore, Object: 5},
	}
}

func newTestComponent(t *testing.T) (*Component, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	return &Component{
		name:   "assessment-ingester",
		config: DefaultConfig(),
		logger: slog.Default(),
		store:  store,
	}, store
}

func TestNewComponent(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		comp, err := NewComponent(json.RawMessage(`{}`), component.Dependencies{Logger: slog.Default()})
		require.NoError(t, err)

		c, ok := comp.(*Component)
		require.True(t, ok, "expected *Component, got %T", comp)
		assert.Equal(t, "QUALITY", c.config.StreamName)
		assert.Equal(t, "assessment-ingester", c.config.ConsumerName)
		assert.Equal(t, "quality.assessment.received", c.config.SubjectFilter)
		assert.Equal(t, "quality.score.calculated", c.config.ScoreSubject)
		assert.Equal(t, 30*time.Second, c.config.GetAckWait())
		require.NotNil(t, c.config.Ports)
	})

	t.Run("keeps explicit values", func(t *testing.T) {
		raw := json.RawMessage(`{"stream_name": "CUSTOM", "ack_wait": "90s"}`)
		comp, err := NewComponent(raw, component.Dependencies{Logger: slog.Default()})
		require.NoError(t, err)

		c := comp.(*Component)
		assert.Equal(t, "CUSTOM", c.config.StreamName)
		assert.Equal(t, 90*time.Second, c.config.GetAckWait())
	})

	t.Run("rejects invalid JSON", func(t *testing.T) {
		_, err := NewComponent(json.RawMessage(`{invalid`), component.Dependencies{Logger: slog.Default()})
		require.Error(t, err)
	})
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults are valid", func(*Config) {}, ""},
		{"missing stream", func(c *Config) { c.StreamName = "" }, "stream_name"},
		{"missing consumer", func(c *Config) { c.ConsumerName = "" }, "consumer_name"},
		{"missing subject filter", func(c *Config) { c.SubjectFilter = "" }, "subject_filter"},
		{"missing score subject", func(c *Config) { c.ScoreSubject = "" }, "score_subject"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfigGetAckWait(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 30*time.Second, cfg.GetAckWait())

	cfg.AckWait = "2m"
	assert.Equal(t, 2*time.Minute, cfg.GetAckWait())

	cfg.AckWait = "not-a-duration"
	assert.Equal(t, 30*time.Second, cfg.GetAckWait(), "unparsable duration should fall back to default")
}

func TestDecodeAssessment(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		in := AssessmentReceivedPayload{
			AssessmentID: "b1f8f6f0-7c2a-4bfb-9a20-1f6f07aa1111",
			DatasetURI:   testDataset,
			TripleData:   assessmentTriples(),
			ReceivedAt:   time.Now().UTC(),
		}
		baseMsg := message.NewBaseMessage(AssessmentReceivedType, &in, "test")
		data, err := json.Marshal(baseMsg)
		require.NoError(t, err)

		payload, err := decodeAssessment(data)
		require.NoError(t, err)
		assert.Equal(t, in.AssessmentID, payload.AssessmentID)
		assert.Equal(t, testDataset, payload.DatasetURI)
		assert.Len(t, payload.TripleData, len(in.TripleData))
	})

	t.Run("mints missing assessment id", func(t *testing.T) {
		in := AssessmentReceivedPayload{
			DatasetURI: testDataset,
			TripleData: assessmentTriples(),
		}
		baseMsg := message.NewBaseMessage(AssessmentReceivedType, &in, "test")
		data, err := json.Marshal(baseMsg)
		require.NoError(t, err)

		payload, err := decodeAssessment(data)
		require.NoError(t, err)
		assert.NotEmpty(t, payload.AssessmentID)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := decodeAssessment([]byte("not json"))
		require.Error(t, err)
	})

	t.Run("rejects payload without dataset", func(t *testing.T) {
		in := AssessmentReceivedPayload{TripleData: assessmentTriples()}
		baseMsg := message.NewBaseMessage(AssessmentReceivedType, &in, "test")
		data, err := json.Marshal(baseMsg)
		require.NoError(t, err)

		_, err = decodeAssessment(data)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "dataset URI")
	})
}

func TestProcessAssessmentStoresResult(t *testing.T) {
	c, store := newTestComponent(t)
	ctx := context.Background()

	payload := &AssessmentReceivedPayload{
		AssessmentID: storage.NewAssessmentID(),
		DatasetURI:   testDataset,
		TripleData:   assessmentTriples(),
	}

	tree, err := c.processAssessment(ctx, payload)
	require.NoError(t, err)
	assert.Equal(t, 3, tree.Dataset.Score)
	assert.Equal(t, 5, tree.Dataset.MaxScore)

	saved, err := store.Assessment(ctx, payload.AssessmentID)
	require.NoError(t, err)
	assert.Equal(t, testDataset, saved.DatasetURI)

	// Score blob round-trips to the extracted tree
	var storedTree score.Tree
	require.NoError(t, json.Unmarshal([]byte(saved.JSONScore), &storedTree))
	assert.Equal(t, tree.Dataset.Score, storedTree.Dataset.Score)

	// Blobs were rendered from the triples
	assert.Contains(t, saved.TurtleAssessment, testDataset)
	assert.Contains(t, saved.TurtleAssessment, "@prefix")
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(saved.JSONLDAssessment), &doc))
	assert.Contains(t, doc, "@graph")

	rows, err := store.DimensionRows(ctx, testDataset)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 3, rows[0].Score)
	assert.Equal(t, 5, rows[0].MaxScore)
}

func TestProcessAssessmentKeepsProvidedBlobs(t *testing.T) {
	c, store := newTestComponent(t)
	ctx := context.Background()

	payload := &AssessmentReceivedPayload{
		AssessmentID: storage.NewAssessmentID(),
		DatasetURI:   testDataset,
		TripleData:   assessmentTriples(),
		Turtle:       "# producer turtle",
		JSONLD:       `{"@graph": []}`,
	}

	_, err := c.processAssessment(ctx, payload)
	require.NoError(t, err)

	saved, err := store.Assessment(ctx, payload.AssessmentID)
	require.NoError(t, err)
	assert.Equal(t, "# producer turtle", saved.TurtleAssessment)
	assert.Equal(t, `{"@graph": []}`, saved.JSONLDAssessment)
}

func TestProcessAssessmentMalformedGraph(t *testing.T) {
	c, store := newTestComponent(t)
	ctx := context.Background()

	payload := &AssessmentReceivedPayload{
		AssessmentID: storage.NewAssessmentID(),
		DatasetURI:   testDataset,
		// Dataset never declared as dcat:Dataset
		TripleData: []message.Triple{
			{Subject: testDataset, Predicate: dqv.PropInDimension, Object: "https://example.com/dimensions/accessibility"},
		},
	}

	_, err := c.processAssessment(ctx, payload)
	require.Error(t, err)
	assert.True(t, score.IsMalformedGraph(err), "expected malformed graph error, got %v", err)

	_, err = store.Assessment(ctx, payload.AssessmentID)
	assert.ErrorIs(t, err, storage.ErrNotFound, "malformed input must not be persisted")
}

// failingStore simulates a storage outage on writes.
type failingStore struct {
	*storage.MemoryStore
}

func (f *failingStore) SaveAssessment(context.Context, storage.Assessment, []score.DimensionRow) error {
	return errors.New("connection refused")
}

func TestProcessAssessmentStorageFailure(t *testing.T) {
	c, _ := newTestComponent(t)
	c.store = &failingStore{MemoryStore: storage.NewMemoryStore()}

	payload := &AssessmentReceivedPayload{
		AssessmentID: storage.NewAssessmentID(),
		DatasetURI:   testDataset,
		TripleData:   assessmentTriples(),
	}

	_, err := c.processAssessment(context.Background(), payload)
	require.Error(t, err)
	assert.False(t, score.IsMalformedGraph(err), "storage failures must stay retryable")
	assert.True(t, strings.Contains(err.Error(), "save assessment"))
}

func TestMetaAndPorts(t *testing.T) {
	comp, err := NewComponent(json.RawMessage(`{}`), component.Dependencies{Logger: slog.Default()})
	require.NoError(t, err)
	c := comp.(*Component)

	meta := c.Meta()
	assert.Equal(t, "assessment-ingester", meta.Name)
	assert.Equal(t, "processor", meta.Type)

	inputs := c.InputPorts()
	require.Len(t, inputs, 1)
	assert.Equal(t, "quality.assessment.received", inputs[0].Config.(component.NATSPort).Subject)

	outputs := c.OutputPorts()
	require.Len(t, outputs, 1)
	assert.Equal(t, "quality.score.calculated", outputs[0].Config.(component.NATSPort).Subject)

	health := c.Health()
	assert.False(t, health.Healthy)
	assert.Equal(t, "stopped", health.Status)
}

func TestPayloadValidate(t *testing.T) {
	t.Run("assessment received", func(t *testing.T) {
		valid := AssessmentReceivedPayload{DatasetURI: testDataset, TripleData: assessmentTriples()}
		assert.NoError(t, valid.Validate())

		missingURI := AssessmentReceivedPayload{TripleData: assessmentTriples()}
		assert.Error(t, missingURI.Validate())

		noTriples := AssessmentReceivedPayload{DatasetURI: testDataset}
		assert.Error(t, noTriples.Validate())
	})

	t.Run("score calculated", func(t *testing.T) {
		valid := ScoreCalculatedPayload{AssessmentID: "a", DatasetURI: testDataset}
		assert.NoError(t, valid.Validate())

		assert.Error(t, (&ScoreCalculatedPayload{DatasetURI: testDataset}).Validate())
		assert.Error(t, (&ScoreCalculatedPayload{AssessmentID: "a"}).Validate())
	})
}
