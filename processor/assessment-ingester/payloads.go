package assessmentingester

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/c360studio/semstreams/component"
	"github.com/c360studio/semstreams/message"
)

func init() {
	if err := component.RegisterPayload(&component.PayloadRegistration{
		Domain:      "quality",
		Category:    "assessment-received",
		Version:     "v1",
		Description: "Dataset quality assessment graph awaiting scoring",
		Factory:     func() any { return &AssessmentReceivedPayload{} },
	}); err != nil {
		panic("failed to register AssessmentReceivedPayload: " + err.Error())
	}

	if err := component.RegisterPayload(&component.PayloadRegistration{
		Domain:      "quality",
		Category:    "score-calculated",
		Version:     "v1",
		Description: "Score totals calculated for a dataset assessment",
		Factory:     func() any { return &ScoreCalculatedPayload{} },
	}); err != nil {
		panic("failed to register ScoreCalculatedPayload: " + err.Error())
	}
}

// AssessmentReceivedType is the message type for incoming assessment graphs.
var AssessmentReceivedType = message.Type{Domain: "quality", Category: "assessment-received", Version: "v1"}

// ScoreCalculatedType is the message type for calculated score events.
var ScoreCalculatedType = message.Type{Domain: "quality", Category: "score-calculated", Version: "v1"}

// AssessmentReceivedPayload implements message.Payload and graph.Graphable
// for dataset quality assessment graphs. Triples carry the DQV measurement
// graph; Turtle and JSONLD are optional pre-serialized renderings stored
// verbatim when present.
type AssessmentReceivedPayload struct {
	AssessmentID string           `json:"id"`
	DatasetURI   string           `json:"dataset_uri"`
	TripleData   []message.Triple `json:"triples"`
	Turtle       string           `json:"turtle,omitempty"`
	JSONLD       string           `json:"jsonld,omitempty"`
	ReceivedAt   time.Time        `json:"received_at"`
}

// EntityID returns the dataset URI for the Graphable interface.
func (p *AssessmentReceivedPayload) EntityID() string { return p.DatasetURI }

// Triples returns the assessment triples for the Graphable interface.
func (p *AssessmentReceivedPayload) Triples() []message.Triple { return p.TripleData }

// Schema returns the message type for the Payload interface.
func (p *AssessmentReceivedPayload) Schema() message.Type { return AssessmentReceivedType }

// Validate validates the payload for the Payload interface. A missing
// assessment ID is tolerated (the ingester mints one); a missing dataset URI
// is not, since scores and dimension rows hang off it.
func (p *AssessmentReceivedPayload) Validate() error {
	if p.DatasetURI == "" {
		return errors.New("dataset URI is required")
	}
	if len(p.TripleData) == 0 {
		return errors.New("assessment triples are required")
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (p *AssessmentReceivedPayload) MarshalJSON() ([]byte, error) {
	type Alias AssessmentReceivedPayload
	return json.Marshal((*Alias)(p))
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *AssessmentReceivedPayload) UnmarshalJSON(data []byte) error {
	type Alias AssessmentReceivedPayload
	return json.Unmarshal(data, (*Alias)(p))
}

// ScoreCalculatedPayload announces persisted score totals for an assessment.
type ScoreCalculatedPayload struct {
	AssessmentID string    `json:"id"`
	DatasetURI   string    `json:"dataset_uri"`
	Score        int       `json:"score"`
	MaxScore     int       `json:"max_score"`
	Dimensions   int       `json:"dimensions"`
	CalculatedAt time.Time `json:"calculated_at"`
}

// Schema returns the message type for the Payload interface.
func (p *ScoreCalculatedPayload) Schema() message.Type { return ScoreCalculatedType }

// Validate validates the payload for the Payload interface.
func (p *ScoreCalculatedPayload) Validate() error {
	if p.AssessmentID == "" {
		return errors.New("assessment ID is required")
	}
	if p.DatasetURI == "" {
		return errors.New("dataset URI is required")
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (p *ScoreCalculatedPayload) MarshalJSON() ([]byte, error) {
	type Alias ScoreCalculatedPayload
	return json.Marshal((*Alias)(p))
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *ScoreCalculatedPayload) UnmarshalJSON(data []byte) error {
	type Alias ScoreCalculatedPayload
	return json.Unmarshal(data, (*Alias)(p))
}
