package assigner

import (
	"fmt"
	"reflect"

	"github.com/c360studio/semstreams/component"
)

// assignerSchema defines the configuration schema.
var assignerSchema = component.GenerateConfigSchema(reflect.TypeOf(Config{}))

// Config holds configuration for the assigner component.
type Config struct {
	// StreamName is the JetStream stream carrying submission traffic.
	StreamName string `json:"stream_name"`

	// InputSubject carries incoming submission events.
	InputSubject string `json:"input_subject"`

	// OutputSubject carries assignment decisions.
	OutputSubject string `json:"output_subject"`

	// ConfigPath points at a formroute YAML file. Empty uses built-in
	// defaults.
	ConfigPath string `json:"config_path,omitempty"`

	// UseMapper enables the external mapping fallback during resolution.
	// Requires the engine config to have the mapper enabled too.
	UseMapper bool `json:"use_mapper,omitempty"`

	// Ports contains input/output port definitions.
	Ports *component.PortConfig `json:"ports,omitempty"`
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		StreamName:    "SUBMISSIONS",
		InputSubject:  "submission.received",
		OutputSubject: "submission.assignments",
		Ports: &component.PortConfig{
			Inputs: []component.PortDefinition{
				{
					Name:        "submissions",
					Type:        "jetstream",
					Subject:     "submission.received",
					StreamName:  "SUBMISSIONS",
					Description: "Incoming form submission events",
					Required:    true,
				},
			},
			Outputs: []component.PortDefinition{
				{
					Name:        "decisions",
					Type:        "jetstream",
					Subject:     "submission.assignments",
					StreamName:  "SUBMISSIONS",
					Description: "Template assignment decisions",
					Required:    true,
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
	if c.InputSubject == "" {
		return fmt.Errorf("input_subject is required")
	}
	if c.OutputSubject == "" {
		return fmt.Errorf("output_subject is required")
	}
	return nil
}
