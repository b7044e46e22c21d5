package assessmentingester

import (
	"fmt"
	"reflect"
	"time"

	"github.com/c360studio/semstreams/component"
)

// assessmentIngesterSchema defines the configuration schema.
var assessmentIngesterSchema = component.GenerateConfigSchema(reflect.TypeOf(Config{}))

// Config holds configuration for the assessment ingester component.
type Config struct {
	// StreamName is the JetStream stream carrying quality subjects.
	StreamName string `json:"stream_name" schema:"type:string,description:JetStream stream for quality assessments,category:basic,default:QUALITY"`

	// ConsumerName is the durable consumer name for assessment consumption.
	ConsumerName string `json:"consumer_name" schema:"type:string,description:Durable consumer name for assessment consumption,category:basic,default:assessment-ingester"`

	// SubjectFilter is the subject pattern for received assessments.
	SubjectFilter string `json:"subject_filter" schema:"type:string,description:Subject pattern for received assessments,category:basic,default:quality.assessment.received"`

	// ScoreSubject is the subject for calculated score events.
	ScoreSubject string `json:"score_subject" schema:"type:string,description:Subject for calculated score events,category:basic,default:quality.score.calculated"`

	// AckWait is how long JetStream waits for an ack before redelivery.
	AckWait string `json:"ack_wait" schema:"type:string,description:Ack wait before redelivery,category:advanced,default:30s"`

	// Ports contains input/output port definitions.
	Ports *component.PortConfig `json:"ports,omitempty" schema:"type:ports,description:Input/output port definitions,category:basic"`
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		StreamName:    "QUALITY",
		ConsumerName:  "assessment-ingester",
		SubjectFilter: "quality.assessment.received",
		ScoreSubject:  "quality.score.calculated",
		AckWait:       "30s",
		Ports: &component.PortConfig{
			Inputs: []component.PortDefinition{
				{
					Name:        "assessments",
					Type:        "jetstream",
					Subject:     "quality.assessment.received",
					StreamName:  "QUALITY",
					Description: "Receive dataset assessment graphs",
					Required:    true,
				},
			},
			Outputs: []component.PortDefinition{
				{
					Name:        "scores",
					Type:        "jetstream",
					Subject:     "quality.score.calculated",
					StreamName:  "QUALITY",
					Description: "Publish calculated score events",
					Required:    false,
				},
			},
		},
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.StreamName == "" {
		return fmt.Errorf("stream_name is required")
	}
	if c.ConsumerName == "" {
		return fmt.Errorf("consumer_name is required")
	}
	if c.SubjectFilter == "" {
		return fmt.Errorf("subject_filter is required")
	}
	if c.ScoreSubject == "" {
		return fmt.Errorf("score_subject is required")
	}
	return nil
}

// GetAckWait parses the ack wait duration.
func (c *Config) GetAckWait() time.Duration {
	if c.AckWait == "" {
		return 30 * time.Second
	}
	d, err := time.ParseDuration(c.AckWait)
	if err != nil {
		return 30 * time.Second
	}
	return d
}
