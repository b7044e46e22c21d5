package scoreapi

import (
	"fmt"
	"reflect"
	"time"

	"github.com/c360studio/semstreams/component"
)

// scoreAPISchema holds the configuration schema generated from Config.
var scoreAPISchema = component.GenerateConfigSchema(reflect.TypeOf(Config{}))

// defaultCacheTTL is the read-cache lifetime applied when none is configured.
const defaultCacheTTL = 30 * time.Second

// Config holds configuration for the score-api component.
type Config struct {
	// Prefix is the URL path segment the API is served under.
	Prefix string `json:"prefix" schema:"type:string,description:URL path prefix for the score API,category:basic,default:api/v1"`

	// APIKey guards the save endpoint. When empty the save route answers
	// 401 for every request.
	APIKey string `json:"api_key" schema:"type:string,description:API key required by the save endpoint,category:basic,default:"`

	// CacheTTL is the read-cache lifetime for graph and score responses.
	// "0" disables caching.
	CacheTTL string `json:"cache_ttl" schema:"type:string,description:Read cache TTL for graph and score responses (0 disables),category:advanced,default:30s"`

	// Ports declares optional HTTP port configuration.
	Ports *component.PortConfig `json:"ports,omitempty" schema:"type:ports,description:Port configuration,category:basic"`
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		Prefix:   "api/v1",
		CacheTTL: "30s",
	}
}

// Validate verifies the configuration is consistent.
func (c *Config) Validate() error {
	if c.Prefix == "" {
		return fmt.Errorf("prefix is required")
	}
	if c.CacheTTL != "" {
		if _, err := time.ParseDuration(c.CacheTTL); err != nil {
			return fmt.Errorf("invalid cache_ttl %q: %w", c.CacheTTL, err)
		}
	}
	return nil
}

// GetCacheTTL returns the parsed cache TTL, falling back to the default
// when unset or unparsable. Zero means caching is disabled.
func (c *Config) GetCacheTTL() time.Duration {
	if c.CacheTTL == "" {
		return defaultCacheTTL
	}
	ttl, err := time.ParseDuration(c.CacheTTL)
	if err != nil {
		return defaultCacheTTL
	}
	return ttl
}
