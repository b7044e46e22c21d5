// Package assessmentingester provides a processor that scores dataset
// quality assessment graphs. It consumes assessment messages from JetStream,
// extracts the DQV score tree, persists the assessment with its dimension
// rows, and publishes a score-calculated event.
package assessmentingester

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/c360studio/semstreams/component"
	"github.com/c360studio/semstreams/message"
	"github.com/c360studio/semstreams/natsclient"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/c360studio/semscore/export"
	"github.com/c360studio/semscore/graph"
	"github.com/c360studio/semscore/score"
	"github.com/c360studio/semscore/storage"
)

// Component implements the assessment-ingester processor.
type Component struct {
	name       string
	config     Config
	natsClient *natsclient.Client
	logger     *slog.Logger

	store storage.AssessmentStore

	// JetStream consumer
	consumer jetstream.Consumer
	stream   jetstream.Stream

	// Lifecycle
	running   bool
	startTime time.Time
	mu        sync.RWMutex
	cancel    context.CancelFunc

	// Metrics
	assessmentsProcessed atomic.Int64
	assessmentsMalformed atomic.Int64
	storageErrors        atomic.Int64
	lastActivityMu       sync.RWMutex
	lastActivity         time.Time
}

// NewComponent creates a new assessment-ingester processor.
func NewComponent(rawConfig json.RawMessage, deps component.Dependencies) (component.Discoverable, error) {
	var config Config
	if err := json.Unmarshal(rawConfig, &config); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// Apply defaults
	defaults := DefaultConfig()
	if config.StreamName == "" {
		config.StreamName = defaults.StreamName
	}
	if config.ConsumerName == "" {
		config.ConsumerName = defaults.ConsumerName
	}
	if config.SubjectFilter == "" {
		config.SubjectFilter = defaults.SubjectFilter
	}
	if config.ScoreSubject == "" {
		config.ScoreSubject = defaults.ScoreSubject
	}
	if config.AckWait == "" {
		config.AckWait = defaults.AckWait
	}
	if config.Ports == nil {
		config.Ports = defaults.Ports
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Component{
		name:       "assessment-ingester",
		config:     config,
		natsClient: deps.NATSClient,
		logger:     deps.GetLogger(),
		store:      storage.Global(),
	}, nil
}

// Initialize prepares the component.
func (c *Component) Initialize() error {
	c.logger.Debug("Initialized assessment-ingester",
		"stream", c.config.StreamName,
		"consumer", c.config.ConsumerName,
		"subject_filter", c.config.SubjectFilter)
	return nil
}

// Start begins consuming assessment messages.
func (c *Component) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return fmt.Errorf("component already running")
	}
	if c.natsClient == nil {
		c.mu.Unlock()
		return fmt.Errorf("NATS client required")
	}

	c.running = true
	c.startTime = time.Now()

	subCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()

	js, err := c.natsClient.JetStream()
	if err != nil {
		c.rollbackStart(cancel)
		return fmt.Errorf("get jetstream: %w", err)
	}

	stream, err := js.Stream(subCtx, c.config.StreamName)
	if err != nil {
		c.rollbackStart(cancel)
		return fmt.Errorf("get stream %s: %w", c.config.StreamName, err)
	}
	c.stream = stream

	consumerConfig := jetstream.ConsumerConfig{
		Durable:       c.config.ConsumerName,
		FilterSubject: c.config.SubjectFilter,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       c.config.GetAckWait(),
		MaxDeliver:    3,
	}

	consumer, err := stream.CreateOrUpdateConsumer(subCtx, consumerConfig)
	if err != nil {
		c.rollbackStart(cancel)
		return fmt.Errorf("create consumer: %w", err)
	}
	c.consumer = consumer

	go c.consumeLoop(subCtx)

	c.logger.Info("assessment-ingester started",
		"stream", c.config.StreamName,
		"consumer", c.config.ConsumerName,
		"subject", c.config.SubjectFilter)

	return nil
}

func (c *Component) rollbackStart(cancel context.CancelFunc) {
	c.mu.Lock()
	c.running = false
	c.cancel = nil
	c.mu.Unlock()
	cancel()
}

// consumeLoop continuously consumes messages from the JetStream consumer.
func (c *Component) consumeLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		msgs, err := c.consumer.Fetch(1, jetstream.FetchMaxWait(5*time.Second))
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Debug("Fetch timeout or error", "error", err)
			continue
		}

		for msg := range msgs.Messages() {
			c.handleMessage(ctx, msg)
		}

		if msgs.Error() != nil && msgs.Error() != context.DeadlineExceeded {
			c.logger.Warn("Message fetch error", "error", msgs.Error())
		}
	}
}

// handleMessage processes a single assessment message and applies the ack
// policy: malformed input is acked (redelivery cannot fix it), storage
// failures are NAKed for retry, publish failures after a successful save are
// logged and acked.
func (c *Component) handleMessage(ctx context.Context, msg jetstream.Msg) {
	if ctx.Err() != nil {
		if err := msg.Nak(); err != nil {
			c.logger.Warn("Failed to NAK message during shutdown", "error", err)
		}
		return
	}

	c.assessmentsProcessed.Add(1)
	c.updateLastActivity()

	payload, err := decodeAssessment(msg.Data())
	if err != nil {
		c.assessmentsMalformed.Add(1)
		c.logger.Warn("Discarding invalid assessment message", "error", err)
		if err := msg.Ack(); err != nil {
			c.logger.Warn("Failed to ACK message", "error", err)
		}
		return
	}

	tree, err := c.processAssessment(ctx, payload)
	if err != nil {
		if score.IsMalformedGraph(err) {
			c.assessmentsMalformed.Add(1)
			c.logger.Warn("Discarding malformed assessment graph",
				"assessment_id", payload.AssessmentID,
				"dataset_uri", payload.DatasetURI,
				"error", err)
			if err := msg.Ack(); err != nil {
				c.logger.Warn("Failed to ACK message", "error", err)
			}
			return
		}

		c.storageErrors.Add(1)
		c.logger.Error("Failed to process assessment",
			"assessment_id", payload.AssessmentID,
			"dataset_uri", payload.DatasetURI,
			"error", err)
		if err := msg.Nak(); err != nil {
			c.logger.Warn("Failed to NAK message", "error", err)
		}
		return
	}

	if err := c.publishScore(ctx, payload.AssessmentID, tree); err != nil {
		// The assessment is already persisted; losing the event is
		// recoverable while a redelivery would double-save.
		c.logger.Warn("Failed to publish score event",
			"assessment_id", payload.AssessmentID,
			"dataset_uri", payload.DatasetURI,
			"error", err)
	}

	if err := msg.Ack(); err != nil {
		c.logger.Warn("Failed to ACK message", "error", err)
	}

	c.logger.Info("Assessment scored",
		"assessment_id", payload.AssessmentID,
		"dataset_uri", payload.DatasetURI,
		"score", tree.Dataset.Score,
		"max_score", tree.Dataset.MaxScore,
		"dimensions", len(tree.Dataset.Dimensions))
}

// decodeAssessment parses the wire message into a validated payload,
// minting an assessment ID when the producer omitted one.
func decodeAssessment(data []byte) (*AssessmentReceivedPayload, error) {
	var baseMsg message.BaseMessage
	if err := json.Unmarshal(data, &baseMsg); err != nil {
		return nil, fmt.Errorf("parse message: %w", err)
	}

	payloadBytes, err := json.Marshal(baseMsg.Payload())
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	var payload AssessmentReceivedPayload
	if err := json.Unmarshal(payloadBytes, &payload); err != nil {
		return nil, fmt.Errorf("unmarshal assessment payload: %w", err)
	}

	if err := payload.Validate(); err != nil {
		return nil, fmt.Errorf("invalid assessment payload: %w", err)
	}

	if payload.AssessmentID == "" {
		payload.AssessmentID = storage.NewAssessmentID()
	}

	return &payload, nil
}

// processAssessment extracts the score tree and persists the assessment with
// its dataset-level dimension rows. Pre-serialized Turtle/JSON-LD blobs are
// stored verbatim; missing ones are rendered from the triples.
func (c *Component) processAssessment(ctx context.Context, payload *AssessmentReceivedPayload) (*score.Tree, error) {
	idx := graph.NewIndex(payload.TripleData)

	tree, err := score.Extract(idx, payload.DatasetURI)
	if err != nil {
		return nil, fmt.Errorf("extract score tree: %w", err)
	}

	scoreJSON, err := json.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("marshal score tree: %w", err)
	}

	turtle := payload.Turtle
	jsonld := payload.JSONLD
	if turtle == "" || jsonld == "" {
		doc := export.FromTriples(payload.DatasetURI, payload.TripleData)
		if turtle == "" {
			if turtle, err = doc.Render(export.FormatTurtle); err != nil {
				return nil, fmt.Errorf("render turtle: %w", err)
			}
		}
		if jsonld == "" {
			if jsonld, err = doc.Render(export.FormatJSONLD); err != nil {
				return nil, fmt.Errorf("render jsonld: %w", err)
			}
		}
	}

	assessment := storage.Assessment{
		ID:               payload.AssessmentID,
		DatasetURI:       payload.DatasetURI,
		TurtleAssessment: turtle,
		JSONLDAssessment: jsonld,
		JSONScore:        string(scoreJSON),
	}

	if err := c.store.SaveAssessment(ctx, assessment, tree.DimensionRows()); err != nil {
		return nil, fmt.Errorf("save assessment: %w", err)
	}

	return tree, nil
}

// publishScore publishes a score-calculated event for the stored assessment.
func (c *Component) publishScore(ctx context.Context, assessmentID string, tree *score.Tree) error {
	event := &ScoreCalculatedPayload{
		AssessmentID: assessmentID,
		DatasetURI:   tree.DatasetID,
		Score:        tree.Dataset.Score,
		MaxScore:     tree.Dataset.MaxScore,
		Dimensions:   len(tree.Dataset.Dimensions),
		CalculatedAt: time.Now().UTC(),
	}

	baseMsg := message.NewBaseMessage(ScoreCalculatedType, event, "assessment-ingester")
	data, err := json.Marshal(baseMsg)
	if err != nil {
		return fmt.Errorf("marshal score event: %w", err)
	}

	if err := c.natsClient.PublishToStream(ctx, c.config.ScoreSubject, data); err != nil {
		return fmt.Errorf("publish to %s: %w", c.config.ScoreSubject, err)
	}

	return nil
}

// Stop gracefully stops the component.
func (c *Component) Stop(_ time.Duration) error {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return nil
	}

	// Copy cancel function and clear state before releasing lock
	cancel := c.cancel
	c.running = false
	c.cancel = nil
	c.mu.Unlock()

	// Cancel context after releasing lock to avoid potential deadlock
	if cancel != nil {
		cancel()
	}

	c.logger.Info("assessment-ingester stopped",
		"assessments_processed", c.assessmentsProcessed.Load(),
		"assessments_malformed", c.assessmentsMalformed.Load(),
		"storage_errors", c.storageErrors.Load())

	return nil
}

// Meta returns component metadata.
func (c *Component) Meta() component.Metadata {
	return component.Metadata{
		Name:        "assessment-ingester",
		Type:        "processor",
		Description: "Scores dataset quality assessment graphs and persists the results",
		Version:     "0.1.0",
	}
}

// InputPorts returns configured input port definitions.
func (c *Component) InputPorts() []component.Port {
	if c.config.Ports == nil {
		return []component.Port{}
	}

	ports := make([]component.Port, len(c.config.Ports.Inputs))
	for i, portDef := range c.config.Ports.Inputs {
		ports[i] = component.Port{
			Name:        portDef.Name,
			Direction:   component.DirectionInput,
			Required:    portDef.Required,
			Description: portDef.Description,
			Config: component.NATSPort{
				Subject: portDef.Subject,
			},
		}
	}
	return ports
}

// OutputPorts returns configured output port definitions.
func (c *Component) OutputPorts() []component.Port {
	if c.config.Ports == nil {
		return []component.Port{}
	}

	ports := make([]component.Port, len(c.config.Ports.Outputs))
	for i, portDef := range c.config.Ports.Outputs {
		ports[i] = component.Port{
			Name:        portDef.Name,
			Direction:   component.DirectionOutput,
			Required:    portDef.Required,
			Description: portDef.Description,
			Config: component.NATSPort{
				Subject: portDef.Subject,
			},
		}
	}
	return ports
}

// ConfigSchema returns the configuration schema.
func (c *Component) ConfigSchema() component.ConfigSchema {
	return assessmentIngesterSchema
}

// Health returns the current health status.
func (c *Component) Health() component.HealthStatus {
	c.mu.RLock()
	running := c.running
	startTime := c.startTime
	c.mu.RUnlock()

	status := "stopped"
	if running {
		status = "running"
	}

	return component.HealthStatus{
		Healthy:    running,
		LastCheck:  time.Now(),
		ErrorCount: int(c.assessmentsMalformed.Load() + c.storageErrors.Load()),
		Uptime:     time.Since(startTime),
		Status:     status,
	}
}

// DataFlow returns current data flow metrics.
func (c *Component) DataFlow() component.FlowMetrics {
	return component.FlowMetrics{
		MessagesPerSecond: 0,
		BytesPerSecond:    0,
		ErrorRate:         0,
		LastActivity:      c.getLastActivity(),
	}
}

func (c *Component) updateLastActivity() {
	c.lastActivityMu.Lock()
	c.lastActivity = time.Now()
	c.lastActivityMu.Unlock()
}

func (c *Component) getLastActivity() time.Time {
	c.lastActivityMu.RLock()
	defer c.lastActivityMu.RUnlock()
	return c.lastActivity
}
