// Package assigner provides a stream processor that turns raw form
// submissions into template assignment decisions. Each submission is resolved
// and evaluated independently; a failure in one never stops the stream.
package assigner

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/c360studio/semstreams/component"
	"github.com/c360studio/semstreams/message"
	"github.com/c360studio/semstreams/natsclient"

	frconfig "github.com/c360studio/formroute/config"
	"github.com/c360studio/formroute/mapper"
	_ "github.com/c360studio/formroute/mapper/providers"
	"github.com/c360studio/formroute/metrics"
	"github.com/c360studio/formroute/resolver"
	"github.com/c360studio/formroute/rules"
)

// Component implements the assigner processor.
type Component struct {
	name       string
	config     Config
	natsClient *natsclient.Client
	logger     *slog.Logger

	resolver *resolver.Resolver
	engine   *rules.Engine

	// Lifecycle
	running   bool
	startTime time.Time
	mu        sync.RWMutex
	cancel    context.CancelFunc

	// Metrics
	processed      atomic.Int64
	assigned       atomic.Int64
	skipped        atomic.Int64
	failed         atomic.Int64
	lastActivityMu sync.RWMutex
	lastActivity   time.Time
}

// NewComponent creates a new assigner processor.
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
	if config.InputSubject == "" {
		config.InputSubject = defaults.InputSubject
	}
	if config.OutputSubject == "" {
		config.OutputSubject = defaults.OutputSubject
	}
	if config.Ports == nil {
		config.Ports = defaults.Ports
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	// Load the engine configuration
	engineCfg := frconfig.DefaultConfig()
	if config.ConfigPath != "" {
		loaded, err := frconfig.LoadFromFile(config.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("load engine config: %w", err)
		}
		engineCfg = loaded
	}
	if err := engineCfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}

	logger := deps.GetLogger()

	resolverOpts := []resolver.Option{resolver.WithLogger(logger)}
	useMapper := config.UseMapper && engineCfg.Mapper.Enabled
	if useMapper {
		client, err := mapper.New(engineCfg.Mapper,
			mapper.WithLogger(logger),
			mapper.WithAPIKey(os.Getenv("OPENAI_API_KEY")))
		if err != nil {
			return nil, fmt.Errorf("create mapping client: %w", err)
		}
		resolverOpts = append(resolverOpts, resolver.WithMapper(client))
	}

	res := resolver.New(engineCfg, resolverOpts...)
	var fr rules.FieldResolver = res
	if useMapper {
		fr = res.WithMapperContext(context.Background())
	}
	engine := rules.New(engineCfg, fr, rules.WithLogger(logger))

	return &Component{
		name:       "assigner",
		config:     config,
		natsClient: deps.NATSClient,
		logger:     logger,
		resolver:   res,
		engine:     engine,
	}, nil
}

// Initialize prepares the component.
func (c *Component) Initialize() error {
	c.logger.Debug("Initialized assigner",
		"stream", c.config.StreamName,
		"input_subject", c.config.InputSubject,
		"output_subject", c.config.OutputSubject)
	return nil
}

// Start begins consuming submission events.
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

	go c.consume(subCtx)

	c.logger.Info("assigner started",
		"stream", c.config.StreamName,
		"input_subject", c.config.InputSubject)

	return nil
}

// consume runs the stream consumer until the context is cancelled.
func (c *Component) consume(ctx context.Context) {
	handler := func(msg jetstream.Msg) {
		c.handleSubmission(ctx, msg.Data())
	}

	if err := c.natsClient.ConsumeStream(ctx, c.config.StreamName, c.config.InputSubject, handler); err != nil {
		if ctx.Err() == nil {
			c.logger.Error("Failed to consume submissions", "error", err)
		}
	}
}

// handleSubmission processes one submission event. The recover boundary
// isolates a panicking record from the rest of the stream.
func (c *Component) handleSubmission(ctx context.Context, data []byte) {
	defer func() {
		if r := recover(); r != nil {
			c.failed.Add(1)
			metrics.RecordProcessed("panic")
			c.logger.Error("panic while processing submission", "panic", r)
		}
	}()

	c.processed.Add(1)
	c.updateLastActivity()

	event, err := c.parseSubmission(data)
	if err != nil {
		c.failed.Add(1)
		metrics.RecordProcessed("invalid")
		c.logger.Warn("Invalid submission message", "error", err)
		return
	}

	decision := c.decide(event)

	if err := c.publishDecision(ctx, decision); err != nil {
		c.failed.Add(1)
		metrics.RecordProcessed("publish_failed")
		c.logger.Error("Failed to publish decision",
			"submission_id", event.SubmissionID,
			"error", err)
		return
	}

	if decision.Skipped {
		c.skipped.Add(1)
		metrics.RecordProcessed("skipped")
	} else {
		c.assigned.Add(1)
		metrics.RecordProcessed("assigned")
	}
}

// parseSubmission accepts either a BaseMessage-wrapped SubmissionEvent or a
// raw SubmissionEvent object.
func (c *Component) parseSubmission(data []byte) (*SubmissionEvent, error) {
	var event SubmissionEvent
	if err := json.Unmarshal(data, &event); err == nil && event.Validate() == nil {
		return &event, nil
	}

	var baseMsg message.BaseMessage
	if err := json.Unmarshal(data, &baseMsg); err != nil {
		return nil, fmt.Errorf("parse message: %w", err)
	}
	payloadBytes, err := json.Marshal(baseMsg.Payload())
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	if err := json.Unmarshal(payloadBytes, &event); err != nil {
		return nil, fmt.Errorf("unmarshal submission: %w", err)
	}
	if err := event.Validate(); err != nil {
		return nil, err
	}
	return &event, nil
}

// decide runs resolution and assignment for one submission.
func (c *Component) decide(event *SubmissionEvent) *AssignmentDecision {
	if !c.engine.ShouldProcess(event.Fields) {
		summary := c.engine.Summarize(event.Fields, nil)
		return &AssignmentDecision{
			DecisionID:   summary.DecisionID,
			SubmissionID: event.SubmissionID,
			Templates:    []string{},
			Skipped:      true,
			SkipReason:   "missing email or name",
			Timestamp:    summary.Timestamp,
		}
	}

	assignments := c.engine.Assign(event.Fields)
	summary := c.engine.Summarize(event.Fields, assignments)

	c.logger.Debug("Assigned templates",
		"submission_id", event.SubmissionID,
		"decision_id", summary.DecisionID,
		"templates", summary.Count)

	return &AssignmentDecision{
		DecisionID:   summary.DecisionID,
		SubmissionID: event.SubmissionID,
		Name:         summary.Name,
		Email:        summary.Email,
		Location:     summary.Location,
		Templates:    summary.Templates,
		Reasons:      summary.Reasons,
		Timestamp:    summary.Timestamp,
	}
}

// publishDecision publishes an assignment decision to the output subject.
func (c *Component) publishDecision(ctx context.Context, decision *AssignmentDecision) error {
	baseMsg := message.NewBaseMessage(AssignmentDecisionType, decision, c.name)
	data, err := json.Marshal(baseMsg)
	if err != nil {
		return fmt.Errorf("marshal decision: %w", err)
	}

	if err := c.natsClient.PublishToStream(ctx, c.config.OutputSubject, data); err != nil {
		return fmt.Errorf("publish to %s: %w", c.config.OutputSubject, err)
	}
	return nil
}

// Stop gracefully stops the component.
func (c *Component) Stop(_ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return nil
	}

	if c.cancel != nil {
		c.cancel()
	}

	c.running = false
	c.logger.Info("assigner stopped",
		"processed", c.processed.Load(),
		"assigned", c.assigned.Load(),
		"skipped", c.skipped.Load(),
		"failed", c.failed.Load())

	return nil
}

// Meta returns component metadata.
func (c *Component) Meta() component.Metadata {
	return component.Metadata{
		Name:        "assigner",
		Type:        "processor",
		Description: "Assigns outreach templates to incoming form submissions",
		Version:     "1.0.0",
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
	return assignerSchema
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
		ErrorCount: int(c.failed.Load()),
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
