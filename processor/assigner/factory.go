package assigner

import (
	"fmt"

	"github.com/c360studio/semstreams/component"
)

// RegistryInterface defines the minimal interface needed for registration.
type RegistryInterface interface {
	RegisterWithConfig(component.RegistrationConfig) error
}

// Register registers the assigner component with the given registry.
func Register(registry RegistryInterface) error {
	if registry == nil {
		return fmt.Errorf("registry cannot be nil")
	}
	return registry.RegisterWithConfig(component.RegistrationConfig{
		Name:        "assigner",
		Factory:     NewComponent,
		Schema:      assignerSchema,
		Type:        "processor",
		Protocol:    "submission",
		Domain:      "outreach",
		Description: "Assigns outreach templates to incoming form submissions",
		Version:     "1.0.0",
	})
}
