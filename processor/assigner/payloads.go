package assigner

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/c360studio/semstreams/message"

	"github.com/c360studio/formroute/record"
)

// SubmissionEvent is an incoming form submission. Fields carries the raw
// field-name to value map exactly as exported; no schema is assumed.
type SubmissionEvent struct {
	SubmissionID string        `json:"submission_id"`
	Source       string        `json:"source,omitempty"`
	Fields       record.Record `json:"fields"`
	SubmittedAt  time.Time     `json:"submitted_at,omitempty"`
}

// Schema returns the message type for this payload.
func (e *SubmissionEvent) Schema() message.Type {
	return SubmissionEventType
}

// Validate validates the event.
func (e *SubmissionEvent) Validate() error {
	if e.SubmissionID == "" {
		return fmt.Errorf("submission_id is required")
	}
	if len(e.Fields) == 0 {
		return fmt.Errorf("fields is required")
	}
	return nil
}

// MarshalJSON marshals the event to JSON.
func (e *SubmissionEvent) MarshalJSON() ([]byte, error) {
	type Alias SubmissionEvent
	return json.Marshal((*Alias)(e))
}

// UnmarshalJSON unmarshals the event from JSON.
func (e *SubmissionEvent) UnmarshalJSON(data []byte) error {
	type Alias SubmissionEvent
	return json.Unmarshal(data, (*Alias)(e))
}

// SubmissionEventType is the message type for submission events.
var SubmissionEventType = message.Type{
	Domain:   "submission",
	Category: "received",
	Version:  "v1",
}

// AssignmentDecision is the published outcome of one submission: which
// templates it was assigned and why, or why it was skipped.
type AssignmentDecision struct {
	DecisionID   string    `json:"decision_id"`
	SubmissionID string    `json:"submission_id"`
	Name         string    `json:"name,omitempty"`
	Email        string    `json:"email,omitempty"`
	Location     string    `json:"location,omitempty"`
	Templates    []string  `json:"templates"`
	Reasons      []string  `json:"reasons,omitempty"`
	Skipped      bool      `json:"skipped,omitempty"`
	SkipReason   string    `json:"skip_reason,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// Schema returns the message type for this payload.
func (d *AssignmentDecision) Schema() message.Type {
	return AssignmentDecisionType
}

// Validate validates the decision.
func (d *AssignmentDecision) Validate() error {
	if d.DecisionID == "" {
		return fmt.Errorf("decision_id is required")
	}
	if d.SubmissionID == "" {
		return fmt.Errorf("submission_id is required")
	}
	return nil
}

// MarshalJSON marshals the decision to JSON.
func (d *AssignmentDecision) MarshalJSON() ([]byte, error) {
	type Alias AssignmentDecision
	return json.Marshal((*Alias)(d))
}

// UnmarshalJSON unmarshals the decision from JSON.
func (d *AssignmentDecision) UnmarshalJSON(data []byte) error {
	type Alias AssignmentDecision
	return json.Unmarshal(data, (*Alias)(d))
}

// AssignmentDecisionType is the message type for assignment decisions.
var AssignmentDecisionType = message.Type{
	Domain:   "submission",
	Category: "assignment",
	Version:  "v1",
}
