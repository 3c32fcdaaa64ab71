// Package assigner tests cover component construction, config validation,
// payload validation, message parsing, decision building, and the metadata
// surface. Tests requiring NATS infrastructure (stream consumption,
// publishing) are integration tests and not included here.
package assigner

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/c360studio/semstreams/component"
	"github.com/c360studio/semstreams/message"

	frconfig "github.com/c360studio/formroute/config"
	"github.com/c360studio/formroute/record"
	"github.com/c360studio/formroute/resolver"
	"github.com/c360studio/formroute/rules"
)

// newTestComponent builds a component with the default engine config and no
// NATS client, enough for everything short of stream I/O.
func newTestComponent(t *testing.T) *Component {
	t.Helper()

	cfg := frconfig.DefaultConfig()
	res := resolver.New(cfg)
	return &Component{
		name:     "assigner",
		config:   DefaultConfig(),
		logger:   slog.Default(),
		resolver: res,
		engine:   rules.New(cfg, res),
	}
}

func TestNewComponent_Unit(t *testing.T) {
	tests := []struct {
		name      string
		rawConfig json.RawMessage
		wantErr   bool
	}{
		{
			name:      "defaults from empty object",
			rawConfig: json.RawMessage(`{}`),
			wantErr:   false,
		},
		{
			name:      "invalid JSON",
			rawConfig: json.RawMessage(`{invalid json}`),
			wantErr:   true,
		},
		{
			name:      "missing engine config file",
			rawConfig: json.RawMessage(`{"config_path":"/nonexistent/formroute.yaml"}`),
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := component.Dependencies{
				Logger: slog.Default(),
			}

			_, err := NewComponent(tt.rawConfig, deps)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewComponent() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestComponent_StartWithoutNATSClient(t *testing.T) {
	c := newTestComponent(t)

	if err := c.Start(context.Background()); err == nil {
		t.Error("Start() should return error when NATS client is nil")
	}

	c.mu.RLock()
	running := c.running
	c.mu.RUnlock()
	if running {
		t.Error("Component should not be running after failed start")
	}
}

func TestComponent_StopWhenStopped(t *testing.T) {
	c := newTestComponent(t)

	if err := c.Initialize(); err != nil {
		t.Errorf("Initialize() error = %v, want nil", err)
	}
	if err := c.Stop(time.Second); err != nil {
		t.Error("Stop() should not error when already stopped")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:    "defaults are valid",
			config:  DefaultConfig(),
			wantErr: false,
		},
		{
			name: "missing stream name",
			config: Config{
				InputSubject:  "submission.received",
				OutputSubject: "submission.assignments",
			},
			wantErr: true,
		},
		{
			name: "missing input subject",
			config: Config{
				StreamName:    "SUBMISSIONS",
				OutputSubject: "submission.assignments",
			},
			wantErr: true,
		},
		{
			name: "missing output subject",
			config: Config{
				StreamName:   "SUBMISSIONS",
				InputSubject: "submission.received",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSubmissionEvent_SchemaValidate(t *testing.T) {
	event := &SubmissionEvent{
		SubmissionID: "sub-1",
		Source:       "forms",
		Fields:       record.Record{"Email": "ana@example.com"},
		SubmittedAt:  time.Now(),
	}

	msgType := event.Schema()
	if msgType.Domain != "submission" {
		t.Errorf("Schema().Domain = %q, want %q", msgType.Domain, "submission")
	}
	if msgType.Category != "received" {
		t.Errorf("Schema().Category = %q, want %q", msgType.Category, "received")
	}
	if msgType.Version != "v1" {
		t.Errorf("Schema().Version = %q, want %q", msgType.Version, "v1")
	}

	if err := event.Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}

	missingID := &SubmissionEvent{Fields: record.Record{"Email": "x"}}
	if err := missingID.Validate(); err == nil {
		t.Error("Validate() should return error when submission_id is empty")
	}

	missingFields := &SubmissionEvent{SubmissionID: "sub-2"}
	if err := missingFields.Validate(); err == nil {
		t.Error("Validate() should return error when fields is empty")
	}
}

func TestAssignmentDecision_SchemaValidate(t *testing.T) {
	decision := &AssignmentDecision{
		DecisionID:   "dec-1",
		SubmissionID: "sub-1",
		Name:         "Ana",
		Email:        "ana@example.com",
		Templates:    []string{"MISSION_SHORT_TERM"},
		Timestamp:    time.Now(),
	}

	msgType := decision.Schema()
	if msgType.Domain != "submission" {
		t.Errorf("Schema().Domain = %q, want %q", msgType.Domain, "submission")
	}
	if msgType.Category != "assignment" {
		t.Errorf("Schema().Category = %q, want %q", msgType.Category, "assignment")
	}

	if err := decision.Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}

	missingID := &AssignmentDecision{SubmissionID: "sub-1"}
	if err := missingID.Validate(); err == nil {
		t.Error("Validate() should return error when decision_id is empty")
	}
}

func TestParseSubmission_RawEvent(t *testing.T) {
	c := newTestComponent(t)

	data, err := json.Marshal(&SubmissionEvent{
		SubmissionID: "sub-raw",
		Fields:       record.Record{"Email": "ana@example.com"},
	})
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}

	event, err := c.parseSubmission(data)
	if err != nil {
		t.Fatalf("parseSubmission() error = %v", err)
	}
	if event.SubmissionID != "sub-raw" {
		t.Errorf("SubmissionID = %q, want %q", event.SubmissionID, "sub-raw")
	}
}

func TestParseSubmission_BaseMessage(t *testing.T) {
	c := newTestComponent(t)

	payload := &SubmissionEvent{
		SubmissionID: "sub-wrapped",
		Fields:       record.Record{"Email": "ana@example.com"},
	}
	baseMsg := message.NewBaseMessage(SubmissionEventType, payload, "test")
	data, err := json.Marshal(baseMsg)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}

	event, err := c.parseSubmission(data)
	if err != nil {
		t.Fatalf("parseSubmission() error = %v", err)
	}
	if event.SubmissionID != "sub-wrapped" {
		t.Errorf("SubmissionID = %q, want %q", event.SubmissionID, "sub-wrapped")
	}
	if event.Fields["Email"] != "ana@example.com" {
		t.Errorf("Fields[Email] = %v, want ana@example.com", event.Fields["Email"])
	}
}

func TestParseSubmission_Invalid(t *testing.T) {
	c := newTestComponent(t)

	if _, err := c.parseSubmission([]byte(`not json`)); err == nil {
		t.Error("parseSubmission() should reject malformed input")
	}
	if _, err := c.parseSubmission([]byte(`{"submission_id":""}`)); err == nil {
		t.Error("parseSubmission() should reject events failing validation")
	}
}

func TestDecide_AssignsTemplates(t *testing.T) {
	c := newTestComponent(t)

	event := &SubmissionEvent{
		SubmissionID: "sub-assign",
		Fields: record.Record{
			"Bună, cum te numești?": "Ana",
			"Email":                 "ana@example.com",
			"Dorești să ajuți financiar lucrările și misionarii APME?": "DA",
		},
	}

	decision := c.decide(event)

	if decision.Skipped {
		t.Fatalf("decision skipped: %s", decision.SkipReason)
	}
	if decision.SubmissionID != "sub-assign" {
		t.Errorf("SubmissionID = %q, want %q", decision.SubmissionID, "sub-assign")
	}
	if decision.DecisionID == "" {
		t.Error("DecisionID should be set")
	}
	if decision.Name != "Ana" {
		t.Errorf("Name = %q, want %q", decision.Name, "Ana")
	}
	if decision.Email != "ana@example.com" {
		t.Errorf("Email = %q, want %q", decision.Email, "ana@example.com")
	}
	want := frconfig.DefaultConfig().Rules.Templates.DonationInfo
	if len(decision.Templates) != 1 || decision.Templates[0] != want {
		t.Errorf("Templates = %v, want the donation template only", decision.Templates)
	}
	if len(decision.Reasons) != len(decision.Templates) {
		t.Errorf("Reasons count = %d, want %d", len(decision.Reasons), len(decision.Templates))
	}
}

func TestDecide_SkipsWithoutContact(t *testing.T) {
	c := newTestComponent(t)

	event := &SubmissionEvent{
		SubmissionID: "sub-skip",
		Fields: record.Record{
			"Dorești să ajuți financiar lucrările și misionarii APME?": "DA",
		},
	}

	decision := c.decide(event)

	if !decision.Skipped {
		t.Fatal("decision should be skipped without email and name")
	}
	if decision.SkipReason == "" {
		t.Error("SkipReason should be set")
	}
	if len(decision.Templates) != 0 {
		t.Errorf("Templates = %v, want empty", decision.Templates)
	}
}

func TestComponent_Meta(t *testing.T) {
	c := &Component{name: "assigner"}

	meta := c.Meta()
	if meta.Name != "assigner" {
		t.Errorf("Meta.Name = %q, want %q", meta.Name, "assigner")
	}
	if meta.Type != "processor" {
		t.Errorf("Meta.Type = %q, want %q", meta.Type, "processor")
	}
	if meta.Description == "" {
		t.Error("Meta.Description should not be empty")
	}
	if meta.Version == "" {
		t.Error("Meta.Version should not be empty")
	}
}

func TestComponent_Health(t *testing.T) {
	c := &Component{name: "assigner", logger: slog.Default()}

	health := c.Health()
	if health.Healthy {
		t.Error("Health.Healthy should be false when stopped")
	}
	if health.Status != "stopped" {
		t.Errorf("Health.Status = %q, want %q", health.Status, "stopped")
	}

	c.mu.Lock()
	c.running = true
	c.startTime = time.Now()
	c.mu.Unlock()

	health = c.Health()
	if !health.Healthy {
		t.Error("Health.Healthy should be true when running")
	}
	if health.Status != "running" {
		t.Errorf("Health.Status = %q, want %q", health.Status, "running")
	}
}

func TestComponent_InputOutputPorts(t *testing.T) {
	c := &Component{config: DefaultConfig()}

	inputPorts := c.InputPorts()
	if len(inputPorts) != 1 {
		t.Fatalf("InputPorts count = %d, want 1", len(inputPorts))
	}
	if inputPorts[0].Name != "submissions" {
		t.Errorf("InputPorts[0].Name = %q, want %q", inputPorts[0].Name, "submissions")
	}

	outputPorts := c.OutputPorts()
	if len(outputPorts) != 1 {
		t.Fatalf("OutputPorts count = %d, want 1", len(outputPorts))
	}
	if outputPorts[0].Name != "decisions" {
		t.Errorf("OutputPorts[0].Name = %q, want %q", outputPorts[0].Name, "decisions")
	}
}

func TestComponent_ConcurrentHealthChecks(t *testing.T) {
	c := &Component{name: "assigner", logger: slog.Default()}

	c.mu.Lock()
	c.running = true
	c.startTime = time.Now()
	c.mu.Unlock()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if !c.Health().Healthy {
				t.Errorf("Health.Healthy = false, want true")
			}
		}()
	}
	wg.Wait()
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.StreamName != "SUBMISSIONS" {
		t.Errorf("DefaultConfig().StreamName = %q, want SUBMISSIONS", config.StreamName)
	}
	if config.InputSubject != "submission.received" {
		t.Errorf("DefaultConfig().InputSubject = %q, want submission.received", config.InputSubject)
	}
	if config.OutputSubject != "submission.assignments" {
		t.Errorf("DefaultConfig().OutputSubject = %q, want submission.assignments", config.OutputSubject)
	}
	if config.Ports == nil {
		t.Error("DefaultConfig().Ports should not be nil")
	}
}
