package scoreapi

import (
	"fmt"

	"github.com/c360studio/semstreams/component"
)

// RegistryInterface defines the minimal interface required for registration.
type RegistryInterface interface {
	RegisterWithConfig(component.RegistrationConfig) error
}

// Register registers the score-api component with the given registry.
func Register(registry RegistryInterface) error {
	if registry == nil {
		return fmt.Errorf("registry cannot be nil")
	}
	return registry.RegisterWithConfig(component.RegistrationConfig{
		Name:        "score-api",
		Factory:     NewComponent,
		Schema:      scoreAPISchema,
		Type:        "processor",
		Protocol:    "http",
		Domain:      "semscore",
		Description: "HTTP endpoints for dataset quality scores and assessment graphs",
		Version:     "0.1.0",
	})
}
