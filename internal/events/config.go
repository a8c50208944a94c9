package events

import (
	"fmt"
	"os"
	"strings"
)

// Config holds Event Grid topic parameters.
// TopicEndpoint takes precedence over TopicHost.
type Config struct {
	TopicHost     string `toml:"topic_host"`
	TopicEndpoint string `toml:"topic_endpoint"`
	TopicKey      string `toml:"topic_key"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	TopicHost     string
	TopicEndpoint string
	TopicKey      string
}

// Configured reports whether a topic and key are set.
func (c *Config) Configured() bool {
	return (c.TopicHost != "" || c.TopicEndpoint != "") && c.TopicKey != ""
}

// EndpointURL returns the topic's publish URL.
func (c *Config) EndpointURL() string {
	if c.TopicEndpoint != "" {
		return c.TopicEndpoint
	}
	return fmt.Sprintf("https://%s/api/events", strings.TrimSuffix(c.TopicHost, "/"))
}

// Finalize applies environment variable overrides and validation.
func (c *Config) Finalize(env *Env) error {
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.TopicHost != "" {
		c.TopicHost = overlay.TopicHost
	}
	if overlay.TopicEndpoint != "" {
		c.TopicEndpoint = overlay.TopicEndpoint
	}
	if overlay.TopicKey != "" {
		c.TopicKey = overlay.TopicKey
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.TopicHost != "" {
		if v := os.Getenv(env.TopicHost); v != "" {
			c.TopicHost = v
		}
	}
	if env.TopicEndpoint != "" {
		if v := os.Getenv(env.TopicEndpoint); v != "" {
			c.TopicEndpoint = v
		}
	}
	if env.TopicKey != "" {
		if v := os.Getenv(env.TopicKey); v != "" {
			c.TopicKey = v
		}
	}
}

func (c *Config) validate() error {
	if c.TopicEndpoint != "" && !strings.HasPrefix(c.TopicEndpoint, "https://") {
		return fmt.Errorf("topic_endpoint must use https: %s", c.TopicEndpoint)
	}
	return nil
}
