package results

import (
	"fmt"
	"os"
	"strings"
)

// Supported store backends.
const (
	BackendMemory   = "memory"
	BackendCosmos   = "cosmos"
	BackendPostgres = "postgres"
)

// Config selects and parameterizes the result store backend.
type Config struct {
	Backend string       `toml:"backend"`
	Cosmos  CosmosConfig `toml:"cosmos"`
}

// CosmosConfig holds Azure Cosmos DB connection parameters.
// When Key is empty the client authenticates with the default Azure credential chain.
type CosmosConfig struct {
	Account   string `toml:"account"`
	Endpoint  string `toml:"endpoint"`
	Key       string `toml:"key"`
	Database  string `toml:"database"`
	Container string `toml:"container"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Backend         string
	CosmosAccount   string
	CosmosEndpoint  string
	CosmosKey       string
	CosmosDatabase  string
	CosmosContainer string
}

// EndpointURL returns Endpoint, or the public endpoint derived from Account.
func (c *CosmosConfig) EndpointURL() string {
	if c.Endpoint != "" {
		return c.Endpoint
	}
	return fmt.Sprintf("https://%s.documents.azure.com:443/", c.Account)
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Backend != "" {
		c.Backend = overlay.Backend
	}
	if overlay.Cosmos.Account != "" {
		c.Cosmos.Account = overlay.Cosmos.Account
	}
	if overlay.Cosmos.Endpoint != "" {
		c.Cosmos.Endpoint = overlay.Cosmos.Endpoint
	}
	if overlay.Cosmos.Key != "" {
		c.Cosmos.Key = overlay.Cosmos.Key
	}
	if overlay.Cosmos.Database != "" {
		c.Cosmos.Database = overlay.Cosmos.Database
	}
	if overlay.Cosmos.Container != "" {
		c.Cosmos.Container = overlay.Cosmos.Container
	}
}

func (c *Config) loadDefaults() {
	if c.Backend == "" {
		c.Backend = BackendMemory
	}
	if c.Cosmos.Database == "" {
		c.Cosmos.Database = "glimpse"
	}
	if c.Cosmos.Container == "" {
		c.Cosmos.Container = "results"
	}
}

func (c *Config) loadEnv(env *Env) {
	fields := []struct {
		name string
		dst  *string
	}{
		{env.Backend, &c.Backend},
		{env.CosmosAccount, &c.Cosmos.Account},
		{env.CosmosEndpoint, &c.Cosmos.Endpoint},
		{env.CosmosKey, &c.Cosmos.Key},
		{env.CosmosDatabase, &c.Cosmos.Database},
		{env.CosmosContainer, &c.Cosmos.Container},
	}
	for _, f := range fields {
		if f.name == "" {
			continue
		}
		if v := os.Getenv(f.name); v != "" {
			*f.dst = v
		}
	}
	c.Backend = strings.ToLower(c.Backend)
}

func (c *Config) validate() error {
	switch c.Backend {
	case BackendMemory, BackendPostgres:
		return nil
	case BackendCosmos:
		if c.Cosmos.Account == "" && c.Cosmos.Endpoint == "" {
			return fmt.Errorf("cosmos account or endpoint required")
		}
		return nil
	default:
		return fmt.Errorf("unknown backend: %s", c.Backend)
	}
}
