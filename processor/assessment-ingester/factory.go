package assessmentingester

import (
	"fmt"

	"github.com/c360studio/semstreams/component"
)

// RegistryInterface defines the minimal interface needed for registration.
type RegistryInterface interface {
	RegisterWithConfig(component.RegistrationConfig) error
}

// Register registers the assessment ingester component with the given registry.
func Register(registry RegistryInterface) error {
	if registry == nil {
		return fmt.Errorf("registry cannot be nil")
	}
	return registry.RegisterWithConfig(component.RegistrationConfig{
		Name:        "assessment-ingester",
		Factory:     NewComponent,
		Schema:      assessmentIngesterSchema,
		Type:        "processor",
		Protocol:    "quality",
		Domain:      "semscore",
		Description: "Scores dataset quality assessment graphs and persists the results",
		Version:     "0.1.0",
	})
}
