package filesource

import (
	"fmt"
	"reflect"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/c360studio/semstreams/component"
)

// fileSourceSchema holds the configuration schema generated from Config.
var fileSourceSchema = component.GenerateConfigSchema(reflect.TypeOf(Config{}))

// Config holds configuration for the file-source component.
type Config struct {
	// DropDir is the directory watched for assessment documents.
	DropDir string `json:"drop_dir" schema:"type:string,description:Directory watched for assessment document files,category:basic,default:"`

	// Patterns lists doublestar glob patterns (relative to DropDir) a file
	// must match to be picked up.
	Patterns []string `json:"patterns" schema:"type:array,description:Glob patterns for assessment document files,category:basic,default:[**/*.json]"`

	// DebounceDelay is how long to wait for more changes before processing.
	DebounceDelay string `json:"debounce_delay" schema:"type:string,description:Debounce delay before processing file changes,category:advanced,default:500ms"`

	// Subject is the stream subject assessment documents are published to.
	Subject string `json:"subject" schema:"type:string,description:Subject for published assessment messages,category:basic,default:quality.assessment.received"`

	// Ports declares the component's port configuration.
	Ports *component.PortConfig `json:"ports,omitempty" schema:"type:ports,description:Port configuration,category:basic"`
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		Patterns:      []string{"**/*.json"},
		DebounceDelay: "500ms",
		Subject:       "quality.assessment.received",
		Ports: &component.PortConfig{
			Outputs: []component.PortDefinition{
				{
					Name:        "assessments",
					Type:        "jetstream",
					Subject:     "quality.assessment.received",
					StreamName:  "QUALITY",
					Description: "Assessment documents read from the drop directory",
					Required:    true,
				},
			},
		},
	}
}

// Validate verifies the configuration is consistent.
func (c *Config) Validate() error {
	if c.DropDir == "" {
		return fmt.Errorf("drop_dir is required")
	}
	if c.Subject == "" {
		return fmt.Errorf("subject is required")
	}
	if len(c.Patterns) == 0 {
		return fmt.Errorf("at least one pattern is required")
	}
	for _, pattern := range c.Patterns {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid pattern %q", pattern)
		}
	}
	if c.DebounceDelay != "" {
		if _, err := time.ParseDuration(c.DebounceDelay); err != nil {
			return fmt.Errorf("invalid debounce_delay %q: %w", c.DebounceDelay, err)
		}
	}
	return nil
}

// GetDebounceDelay returns the debounce delay as a duration.
func (c *Config) GetDebounceDelay() time.Duration {
	if c.DebounceDelay == "" {
		return 500 * time.Millisecond
	}
	d, err := time.ParseDuration(c.DebounceDelay)
	if err != nil {
		return 500 * time.Millisecond
	}
	return d
}
