package filesource

import (
	"fmt"

	"github.com/c360studio/semstreams/component"
)

// RegistryInterface defines the minimal interface needed for registration.
type RegistryInterface interface {
	RegisterWithConfig(component.RegistrationConfig) error
}

// Register registers the file-source component with the given registry.
func Register(registry RegistryInterface) error {
	if registry == nil {
		return fmt.Errorf("registry cannot be nil")
	}
	return registry.RegisterWithConfig(component.RegistrationConfig{
		Name:        "file-source",
		Factory:     NewComponent,
		Schema:      fileSourceSchema,
		Type:        "processor",
		Protocol:    "quality",
		Domain:      "semscore",
		Description: "Publishes assessment documents dropped into a watched directory",
		Version:     "0.1.0",
	})
}
